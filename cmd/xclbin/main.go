package main

import (
	"context"
	"fmt"
	"os"

	"github.com/samcharles93/xclbin/internal/logger"
	"github.com/urfave/cli/v3"
)

// loadedConfig is the config resolved in the root Before hook.
var loadedConfig Config

func main() {
	app := &cli.Command{
		Name:   "xclbin",
		Usage:  "Inspect, validate and build AXLF (xclbin) FPGA containers",
		Flags:  globalFlags(),
		Before: setup,
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			inspectCmd(),
			dumpSectionCmd(),
			validateCmd(),
			packCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup merges the config file into the global flags and installs the
// logger in the command context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	cfg, err := LoadConfig(configFile)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	loadedConfig = cfg
	applyGlobalConfig(cmd, cfg)

	format, err := logger.ParseFormat(logFormat)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	level := logger.ParseLevel(logLevel)
	if debug {
		level = logger.ParseLevel("debug")
	}
	log := logger.NewFormat(os.Stderr, format, level)
	return logger.WithContext(ctx, log), nil
}
