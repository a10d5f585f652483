package main

import (
	"context"
	"fmt"
	"os"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/klipverify/internal/logger"
)

func main() {
	app := &cli.Command{
		Name:      "klipverify",
		Usage:     "Check the build configuration embedded in a Klipper firmware image",
		ArgsUsage: "<mcu> <firmware.bin>",
		Flags:     globalFlags(),
		Before:    setup,
		Action:    verifyAction,
		Commands: []*cli.Command{
			verifyCmd(),
			inspectCmd(),
			profilesCmd(),
			serveCmd(),
			versionCmd(),
		},
	}

	if err := app.Run(context.Background(), os.Args); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// setup applies the config file and installs the logger in the context.
func setup(ctx context.Context, cmd *cli.Command) (context.Context, error) {
	applyConfig(cmd, LoadConfig())

	level := logLevel
	if debug {
		level = "debug"
	}
	log, err := logger.Setup(os.Stderr, logger.ParseLevel(level), logFormat)
	if err != nil {
		return ctx, cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return logger.WithContext(ctx, log), nil
}
