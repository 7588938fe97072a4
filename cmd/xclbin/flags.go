package main

import (
	"encoding/binary"
	"fmt"
	"strings"

	"github.com/samcharles93/xclbin/pkg/axlf"
	"github.com/urfave/cli/v3"
)

var (
	configFile string
	logLevel   string
	logFormat  string
	byteOrder  string
	strict     bool
	debug      bool
)

func globalFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Usage:       "path to a YAML or TOML config file",
			Destination: &configFile,
		},
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "info",
			Destination: &logLevel,
		},
		&cli.StringFlag{
			Name:        "log-format",
			Usage:       "log format (pretty, json, text)",
			Value:       "pretty",
			Destination: &logFormat,
		},
		&cli.BoolFlag{
			Name:        "debug",
			Usage:       "enable debug logging (shorthand for --log-level=debug)",
			Destination: &debug,
		},
		&cli.StringFlag{
			Name:        "byte-order",
			Usage:       "container byte order (little, big)",
			Value:       "little",
			Destination: &byteOrder,
		},
		&cli.BoolFlag{
			Name:        "strict",
			Usage:       "reject section payloads whose size disagrees with their element count",
			Destination: &strict,
		},
	}
}

// codecOptions turns the global flags into axlf decode options.
func codecOptions() ([]axlf.Option, error) {
	var opts []axlf.Option
	switch strings.ToLower(strings.TrimSpace(byteOrder)) {
	case "", "little", "le":
	case "big", "be":
		opts = append(opts, axlf.WithByteOrder(binary.BigEndian))
	default:
		return nil, fmt.Errorf("unknown byte order %q (want little or big)", byteOrder)
	}
	if strict {
		opts = append(opts, axlf.WithStrictSizes())
	}
	return opts, nil
}

// fileArg returns the single positional container path.
func fileArg(cmd *cli.Command) (string, error) {
	if cmd.NArg() != 1 {
		return "", fmt.Errorf("expected exactly one xclbin file, got %d", cmd.NArg())
	}
	return cmd.Args().First(), nil
}
