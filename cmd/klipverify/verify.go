package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/urfave/cli/v3"

	"github.com/samcharles93/klipverify/internal/logger"
	"github.com/samcharles93/klipverify/internal/profile"
	"github.com/samcharles93/klipverify/internal/report"
	"github.com/samcharles93/klipverify/internal/verify"
)

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:      "verify",
		Usage:     "Verify a firmware image against an MCU profile (same as the root command)",
		ArgsUsage: "<mcu> <firmware.bin>",
		Action:    verifyAction,
	}
}

func verifyAction(ctx context.Context, cmd *cli.Command) error {
	v, err := newVerifier()
	if err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}
	return runVerify(ctx, os.Stdout, v, cmd.Args().Slice(), verifyOptions{
		JSON:    jsonOutput,
		Timeout: scanTimeout,
	})
}

type verifyOptions struct {
	JSON    bool
	Timeout time.Duration
}

// runVerify returns nil only when the record was found and every key matched.
// Every other outcome is a cli.ExitCoder with code 1.
func runVerify(ctx context.Context, stdout io.Writer, v *verify.Verifier, args []string, opts verifyOptions) error {
	if len(args) != 2 {
		return cli.Exit(fmt.Sprintf(
			"error: got %d args, want 2: the first is the mcu (%s), the second is the firmware path",
			len(args), strings.Join(v.Registry.Names(), " or ")), 1)
	}
	mcu, path := args[0], args[1]

	// Reject unknown MCUs before touching the file.
	if _, err := v.Profile(mcu); err != nil {
		return cli.Exit(fmt.Sprintf("error: %v", err), 1)
	}

	if opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.Timeout)
		defer cancel()
	}

	res, err := v.VerifyFile(ctx, mcu, path)
	if err != nil {
		switch {
		case errors.Is(err, context.DeadlineExceeded):
			return cli.Exit(fmt.Sprintf("error: %s: scan timed out after %s", path, opts.Timeout), 1)
		case errors.Is(err, profile.ErrUnknownProfile):
			return cli.Exit(fmt.Sprintf("error: %v", err), 1)
		default:
			return cli.Exit(err.Error(), 1)
		}
	}

	write := report.WriteText
	if opts.JSON {
		write = report.WriteJSON
	}
	if err := write(stdout, res); err != nil {
		return cli.Exit(fmt.Sprintf("error: write report: %v", err), 1)
	}

	logger.FromContext(ctx).Info("verification finished", "mcu", mcu, "path", path, "status", report.Status(res))
	if !res.Passed() {
		return cli.Exit("", 1)
	}
	return nil
}
