package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/xclbin/internal/logger"
	"github.com/samcharles93/xclbin/pkg/axlf"
)

// sectionSpec is one --section KIND[:NAME]=file argument.
type sectionSpec struct {
	Kind axlf.SectionKind
	Name string
	Path string
}

func parseSectionSpec(s string) (sectionSpec, error) {
	left, path, ok := strings.Cut(s, "=")
	if !ok || strings.TrimSpace(path) == "" {
		return sectionSpec{}, fmt.Errorf("section %q: want KIND[:NAME]=file", s)
	}
	kindStr, name, _ := strings.Cut(left, ":")
	kind, err := axlf.ParseSectionKind(kindStr)
	if err != nil {
		return sectionSpec{}, fmt.Errorf("section %q: %w", s, err)
	}
	if len(name) >= axlf.SectionNameWidth {
		return sectionSpec{}, fmt.Errorf("section %q: %w", s, axlf.ErrNameTooLong)
	}
	return sectionSpec{Kind: kind, Name: name, Path: filepath.Clean(path)}, nil
}

type packOptions struct {
	Out      string
	Sections []sectionSpec
	Platform string
	Mode     axlf.Mode
	UUID     uuid.UUID
	Codec    []axlf.Option
}

// packContainer writes a new container holding each section file verbatim.
func packContainer(log logger.Logger, o packOptions) error {
	h := axlf.Header{
		TimeStamp:    uint64(time.Now().Unix()),
		VersionMajor: 2,
		Mode:         o.Mode,
		PlatformVBNV: o.Platform,
	}
	h.SetXclbinUUID(o.UUID)

	b := axlf.NewBuilder(h, o.Codec...)
	b.SetUniqueID(binary.LittleEndian.Uint64(o.UUID[:8]))
	for _, s := range o.Sections {
		f, err := os.Open(s.Path)
		if err != nil {
			return err
		}
		err = b.AddSectionFromReader(s.Kind, s.Name, f)
		_ = f.Close()
		if err != nil {
			return fmt.Errorf("add %s from %s: %w", s.Kind, s.Path, err)
		}
		log.Debug("added section", "kind", s.Kind.String(), "name", s.Name, "path", s.Path)
	}

	if err := os.MkdirAll(filepath.Dir(o.Out), 0o755); err != nil {
		return err
	}
	return b.WriteFile(o.Out)
}

func packCmd() *cli.Command {
	var (
		out      string
		sections []string
		platform string
		mode     string
		id       string
	)

	return &cli.Command{
		Name:  "pack",
		Usage: "Build an xclbin container from raw section files",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "out",
				Aliases:     []string{"o"},
				Usage:       "output .xclbin path",
				Required:    true,
				Destination: &out,
			},
			&cli.StringSliceFlag{
				Name:        "section",
				Usage:       "section to add as KIND[:NAME]=file (repeatable)",
				Destination: &sections,
			},
			&cli.StringFlag{
				Name:        "platform",
				Usage:       "platform VBNV string",
				Destination: &platform,
			},
			&cli.StringFlag{
				Name:        "mode",
				Usage:       "header mode (FLAT, PR, TANDEM_STAGE2, HW_EMU, SW_EMU, ...)",
				Value:       "FLAT",
				Destination: &mode,
			},
			&cli.StringFlag{
				Name:        "uuid",
				Usage:       "xclbin uuid (random when empty)",
				Destination: &id,
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			log := logger.FromContext(ctx)

			o := packOptions{Out: filepath.Clean(out), Platform: platform}
			var err error
			if o.Codec, err = codecOptions(); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if o.Mode, err = axlf.ParseMode(strings.ToUpper(mode)); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			o.UUID = uuid.New()
			if id != "" {
				if o.UUID, err = uuid.Parse(id); err != nil {
					return cli.Exit(fmt.Sprintf("error: parse uuid: %v", err), 1)
				}
			}
			for _, s := range sections {
				spec, err := parseSectionSpec(s)
				if err != nil {
					return cli.Exit(fmt.Sprintf("error: %v", err), 1)
				}
				o.Sections = append(o.Sections, spec)
			}

			if err := packContainer(log, o); err != nil {
				return cli.Exit(fmt.Sprintf("error: pack: %v", err), 1)
			}
			log.Info("wrote xclbin", "path", o.Out, "sections", len(o.Sections), "uuid", o.UUID.String())
			return nil
		},
	}
}
