package main

import (
	"time"

	"github.com/urfave/cli/v3"
)

var (
	profilesPath string
	noBuiltin    bool
	scanWorkers  int64
	scanTimeout  time.Duration
	jsonOutput   bool
	logLevel     string
	logFormat    string
	debug        bool
)

func profileFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "profiles",
			Aliases:     []string{"p"},
			Usage:       "path to a YAML file with additional MCU profiles",
			Sources:     cli.EnvVars(envProfiles),
			Destination: &profilesPath,
		},
		&cli.BoolFlag{
			Name:        "no-builtin",
			Usage:       "only use profiles from --profiles",
			Destination: &noBuiltin,
		},
	}
}

func scanFlags() []cli.Flag {
	return []cli.Flag{
		&cli.Int64Flag{
			Name:        "workers",
			Usage:       "number of goroutines scanning the image (1 = sequential)",
			Value:       1,
			Destination: &scanWorkers,
		},
		&cli.DurationFlag{
			Name:        "timeout",
			Usage:       "abort the scan after this long (0 = no limit)",
			Destination: &scanTimeout,
		},
		&cli.BoolFlag{
			Name:        "json",
			Usage:       "print a JSON document instead of text",
			Destination: &jsonOutput,
		},
	}
}

func loggingFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "log-level",
			Usage:       "log level (debug, info, warn, error)",
			Value:       "warn",
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

func globalFlags() []cli.Flag {
	flags := profileFlags()
	flags = append(flags, scanFlags()...)
	return append(flags, loggingFlags()...)
}
