package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	json "github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/srmkit/internal/logger"
	"github.com/samcharles93/srmkit/pkg/srm"
)

func inspectCmd() *cli.Command {
	var (
		input   string
		asJSON  bool
		showAll bool
	)

	return &cli.Command{
		Name:      "inspect",
		Usage:     "Show which segments of an .srm container hold save data",
		ArgsUsage: "[file.srm]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:        "input",
				Aliases:     []string{"i"},
				Usage:       "path to the .srm container",
				Destination: &input,
			},
			&cli.BoolFlag{Name: "json", Usage: "print JSON instead of a table", Destination: &asJSON},
			&cli.BoolFlag{Name: "all", Usage: "list empty segments too", Destination: &showAll},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if input == "" {
				input = cmd.Args().First()
			}
			if input == "" {
				return errors.New("inspect: an input .srm is required (--input or first argument)")
			}

			f, err := srm.Open(input)
			if errors.Is(err, srm.ErrShortContainer) {
				logger.FromContext(ctx).Warn("container is truncated", "file", input, "size", f.Size, "want", srm.ContainerSize)
			} else if err != nil {
				return fmt.Errorf("inspect: %w", err)
			}
			defer func() { _ = f.Close() }()

			info := srm.Describe(f.Container)
			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Path     string `json:"path"`
					DiskSize int64  `json:"disk_size"`
					srm.Info
				}{input, f.Size, info})
			}
			printInfo(os.Stdout, input, f.Size, info, showAll)
			return nil
		},
	}
}

func printInfo(w io.Writer, path string, diskSize int64, info srm.Info, showAll bool) {
	_, _ = fmt.Fprintf(w, "%s (%d bytes)\n", path, diskSize)
	if info.Empty {
		_, _ = fmt.Fprintln(w, "  empty container")
		if !showAll {
			return
		}
	}
	_, _ = fmt.Fprintf(w, "  %-18s %-9s %-8s %s\n", "SEGMENT", "OFFSET", "SIZE", "STATE")
	for _, s := range info.Segments {
		badHeader := s.ChecksumsValid != nil && !*s.ChecksumsValid
		if s.Empty && !badHeader && !showAll {
			continue
		}
		state := "data"
		if s.Empty {
			state = "empty"
		}
		if s.Is4K != nil && !s.Empty {
			if *s.Is4K {
				state += ", 4K"
			} else {
				state += ", 16K"
			}
		}
		if badHeader {
			state += ", bad header checksum"
		}
		_, _ = fmt.Fprintf(w, "  %-18s %#-9x %-8d %s\n", s.Name, s.Offset, s.Size, state)
	}
}
