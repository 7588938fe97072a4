package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/xclbin/internal/xclbinstore"
)

func validateCmd() *cli.Command {
	return &cli.Command{
		Name:      "validate",
		Usage:     "Decode every section and check cross-references",
		ArgsUsage: "<file>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			path, err := fileArg(cmd)
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

			if n := reportProblems(os.Stdout, path, xf.Validate()); n > 0 {
				return cli.Exit(fmt.Sprintf("%s: %d problem(s)", path, n), 1)
			}
			return nil
		},
	}
}

// reportProblems prints one line per problem and returns how many there were.
func reportProblems(w io.Writer, path string, err error) int {
	problems := xclbinstore.Problems(err)
	if len(problems) == 0 {
		_, _ = fmt.Fprintf(w, "%s: ok\n", path)
		return 0
	}
	for _, p := range problems {
		_, _ = fmt.Fprintf(w, "%s: %v\n", path, p)
	}
	return len(problems)
}
