package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/klipverify/internal/report"
	"github.com/samcharles93/klipverify/internal/scan"
	"github.com/samcharles93/klipverify/internal/verify"
)

type inspectJSON struct {
	Path        string         `json:"path"`
	Offset      int            `json:"offset"`
	Application string         `json:"application"`
	Version     string         `json:"version"`
	Config      map[string]any `json:"config"`
}

func inspectCmd() *cli.Command {
	return &cli.Command{
		Name:      "inspect",
		Usage:     "Print the configuration record embedded in a firmware image",
		ArgsUsage: "<firmware.bin>",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Len() != 1 {
				return cli.Exit(fmt.Sprintf("error: got %d args, want the firmware path", cmd.Args().Len()), 1)
			}
			v := verify.New(nil)
			v.Locator = scan.Locator{Workers: int(scanWorkers)}
			return runInspect(ctx, os.Stdout, v, cmd.Args().First(), verifyOptions{
				JSON:    jsonOutput,
				Timeout: scanTimeout,
			})
		},
	}
}

func runInspect(ctx context.Context, stdout io.Writer, v *verify.Verifier, path string, opts verifyOptions) error {
	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	m, ok, err := v.Inspect(ctx, path)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	if !ok {
		_, _ = fmt.Fprintln(stdout, report.InvalidFirmware)
		return cli.Exit("", 1)
	}

	if opts.JSON {
		b, err := json.MarshalIndent(inspectJSON{
			Path:        path,
			Offset:      m.Offset,
			Application: m.Record.Application,
			Version:     m.Record.Version,
			Config:      m.Record.Config,
		}, "", "  ")
		if err != nil {
			return cli.Exit(fmt.Sprintf("error: encode record: %v", err), 1)
		}
		_, err = fmt.Fprintln(stdout, string(b))
		return err
	}
	return report.WriteRecord(stdout, m.Offset, m.Record)
}
