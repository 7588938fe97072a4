package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/xclbin/internal/xclbinstore"
	"github.com/samcharles93/xclbin/pkg/axlf"
)

func dumpSectionCmd() *cli.Command {
	var (
		kind   string
		format string
		out    string
	)

	return &cli.Command{
		Name:      "dump-section",
		Usage:     "Write one section as JSON or raw bytes",
		ArgsUsage: "<file>",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "kind", Usage: "section kind name or number", Required: true, Destination: &kind},
			&cli.StringFlag{Name: "format", Usage: "output format (json, raw)", Value: "json", Destination: &format},
			&cli.StringFlag{Name: "out", Aliases: []string{"o"}, Usage: "output path (default stdout)", Destination: &out},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := fileArg(cmd)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			k, err := axlf.ParseSectionKind(kind)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			opts, err := codecOptions()
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}

			xf, err := xclbinstore.OpenContext(ctx, path, opts...)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: open xclbin: %v", err), 1)
			}
			defer func() { _ = xf.Close() }()

			data, err := sectionBytes(xf, k, format)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: dump %s: %v", k, err), 1)
			}
			if err := writeOutput(out, data); err != nil {
				return cli.Exit(fmt.Sprintf("error: write %s: %v", out, err), 1)
			}
			return nil
		},
	}
}

// sectionBytes renders the first section of kind in the requested format.
func sectionBytes(xf *xclbinstore.File, kind axlf.SectionKind, format string) ([]byte, error) {
	switch strings.ToLower(format) {
	case "raw":
		return xf.SectionData(kind)
	case "json", "":
		p, err := xf.Section(kind)
		if err != nil {
			return nil, err
		}
		data, err := axlf.MarshalPayload(p)
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	default:
		return nil, fmt.Errorf("unknown format %q (want json or raw)", format)
	}
}

func writeOutput(path string, data []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}
