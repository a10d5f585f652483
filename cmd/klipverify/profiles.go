package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/goccy/go-json"
	"github.com/urfave/cli/v3"

	"github.com/samcharles93/klipverify/internal/profile"
)

func profilesCmd() *cli.Command {
	return &cli.Command{
		Name:    "profiles",
		Aliases: []string{"ls"},
		Usage:   "List the registered MCU profiles",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			reg, err := buildRegistry(profilesPath, !noBuiltin)
			if err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			if err := writeProfiles(os.Stdout, reg, jsonOutput); err != nil {
				return cli.Exit(fmt.Sprintf("error: %v", err), 1)
			}
			return nil
		},
	}
}

func writeProfiles(w io.Writer, reg *profile.Registry, asJSON bool) error {
	if asJSON {
		b, err := json.MarshalIndent(reg.Profiles(), "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(b))
		return err
	}
	for _, p := range reg.Profiles() {
		if _, err := fmt.Fprintf(w, "%s\n", p.Name); err != nil {
			return err
		}
		for _, f := range p.Fields {
			if _, err := fmt.Fprintf(w, "  %s = %s\n", f.Key, f.Value); err != nil {
				return err
			}
		}
	}
	return nil
}
