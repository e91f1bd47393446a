package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/srmkit/internal/convert"
	"github.com/samcharles93/srmkit/internal/logger"
)

func mergeCmd() *cli.Command {
	var (
		battery   string
		packs     [4]string
		mupenPack string
	)

	flags := []cli.Flag{
		&cli.StringFlag{
			Name:        "battery",
			Aliases:     []string{"b"},
			Usage:       "eeprom (.eep), sram (.sra) or flashram (.fla) save; routed by size",
			Destination: &battery,
		},
		&cli.StringFlag{
			Name:        "mupen-pack",
			Aliases:     []string{"mpk"},
			Usage:       "combined 128 KiB mupen64plus controller pack file; overrides --cp1..--cp4",
			Destination: &mupenPack,
		},
	}
	for i := range packs {
		flags = append(flags, &cli.StringFlag{
			Name:        fmt.Sprintf("controller-pack-%d", i+1),
			Aliases:     []string{fmt.Sprintf("cp%d", i+1)},
			Usage:       fmt.Sprintf("controller pack image for port %d", i+1),
			Destination: &packs[i],
		})
	}

	return &cli.Command{
		Name:  "merge",
		Usage: "Combine battery and controller pack saves into one .srm container",
		Flags: append(flags, outputFlags()...),
		Action: func(ctx context.Context, cmd *cli.Command) error {
			applyConvertConfig(cmd, LoadConfig(), nil)
			log := logger.FromContext(ctx)

			src := convert.PathSource{
				convert.KeyBatteryFile:        battery,
				convert.KeyCombinedController: mupenPack,
			}
			for i, key := range convert.ControllerPackKeys {
				src[key] = packs[i]
			}
			first := firstPath(battery, packs[0], packs[1], packs[2], packs[3], mupenPack)
			sink := &convert.DirSink{Dir: resolveOutDir(outDir, first), Force: force}

			cv := &convert.Converter{
				Files: src,
				Toggles: convert.Toggles{
					convert.ToggleSwapBytes: swapBytes,
					convert.ToggleMupen:     mupenPack != "",
				},
				Sink: sink,
			}
			res, err := cv.Merge(ctx)
			if err != nil {
				return fmt.Errorf("merge: %w", err)
			}
			return report(log, res, sink)
		},
	}
}

// report prints written paths on stdout and a non-fatal outcome on stderr.
func report(log logger.Logger, res convert.Result, sink *convert.DirSink) error {
	if !res.OK() {
		log.Warn(res.Message)
		return nil
	}
	for _, p := range sink.Written() {
		_, _ = fmt.Fprintln(os.Stdout, p)
	}
	return nil
}
