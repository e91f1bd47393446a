package main

import (
	"context"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/srmkit/internal/logger"
)

var (
	logLevel  string
	logFormat string
	debug     bool

	outDir    string
	force     bool
	swapBytes bool
)

func loggingFlags() []cli.Flag {
	return []cli.Flag{
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
	}
}

func outputFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "out-dir",
			Aliases:     []string{"o"},
			Usage:       "directory to write results to (default: next to the first input)",
			Destination: &outDir,
		},
		&cli.BoolFlag{
			Name:        "force",
			Aliases:     []string{"f"},
			Usage:       "overwrite existing output files",
			Destination: &force,
		},
		&cli.BoolFlag{
			Name:        "swap",
			Aliases:     []string{"swap-bytes"},
			Usage:       "word-swap eeprom and flashram data (32-bit byte order flip)",
			Destination: &swapBytes,
		},
	}
}

func setupLogging(ctx context.Context, cmd *cli.Command, cfg Config) (context.Context, error) {
	if cfg.LogLevel != "" && !cmd.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !cmd.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
	level := logLevel
	if debug {
		level = "debug"
	}
	log, err := logger.Build(os.Stderr, level, logFormat)
	if err != nil {
		return ctx, err
	}
	return logger.WithContext(ctx, log), nil
}
