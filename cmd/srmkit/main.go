package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/srmkit/internal/version"
)

func main() {
	app := &cli.Command{
		Name:    "srmkit",
		Usage:   "Merge per-device N64 saves into .srm containers and split them back",
		Version: version.Resolve().Short(),
		Flags:   loggingFlags(),
		Before: func(ctx context.Context, cmd *cli.Command) (context.Context, error) {
			return setupLogging(ctx, cmd, LoadConfig())
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return cli.ShowAppHelp(cmd)
		},
		Commands: []*cli.Command{
			mergeCmd(),
			splitCmd(),
			inspectCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
