package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/srmkit/internal/convert"
	"github.com/samcharles93/srmkit/internal/logger"
)

func splitCmd() *cli.Command {
	var (
		input    string
		mupenOut bool
	)

	return &cli.Command{
		Name:      "split",
		Usage:     "Extract battery and controller pack saves from an .srm container",
		ArgsUsage: "[file.srm]",
		Flags: append([]cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "path to the .srm container",
				Destination: &input,
			},
			&cli.BoolFlag{
				Name:        "mupen-out",
				Usage:       "write all controller packs as one combined .mpk (mupen64plus layout)",
				Destination: &mupenOut,
			},
		}, outputFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyConvertConfig(cmd, LoadConfig(), &mupenOut)
			log := logger.FromContext(ctx)

			if input == "" {
				input = cmd.Args().First()
			}
			if input == "" {
				return errors.New("split: an input .srm is required (--input or first argument)")
			}

			sink := &convert.DirSink{Dir: resolveOutDir(outDir, input), Force: force}
			cv := &convert.Converter{
				Files: convert.PathSource{convert.KeySrmFile: input},
				Toggles: convert.Toggles{
					convert.ToggleSwapBytes: swapBytes,
					convert.ToggleMupenOut:  mupenOut,
				},
				Sink: sink,
			}
			res, err := cv.Split(ctx)
			if err != nil {
				return fmt.Errorf("split: %w", err)
			}
			return report(log, res, sink)
		},
	}
}
