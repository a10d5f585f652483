package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

const envProfiles = "KLIPVERIFY_PROFILES"

// Config represents the klipverify configuration file (~/.config/klipverify/config.yaml).
type Config struct {
	ProfilesFile string `yaml:"profiles_file"`
	NoBuiltin    *bool  `yaml:"no_builtin"`

	ScanWorkers *int64         `yaml:"scan_workers"`
	ScanTimeout *time.Duration `yaml:"scan_timeout"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
	MaxUpload     *int64 `yaml:"max_upload"`
}

// configPathFunc is a seam for tests.
var configPathFunc = configPath

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "klipverify", "config.yaml")
}

// LoadConfig reads the config file. Returns a zero Config if the file is
// missing or unreadable.
func LoadConfig() Config {
	path := configPathFunc()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}

// applyConfig fills global flag variables from cfg when the flag was not set
// explicitly on the command line.
func applyConfig(c *cli.Command, cfg Config) {
	if cfg.ProfilesFile != "" && !c.IsSet("profiles") {
		profilesPath = cfg.ProfilesFile
	}
	if cfg.NoBuiltin != nil && !c.IsSet("no-builtin") {
		noBuiltin = *cfg.NoBuiltin
	}
	if cfg.ScanWorkers != nil && !c.IsSet("workers") {
		scanWorkers = *cfg.ScanWorkers
	}
	if cfg.ScanTimeout != nil && !c.IsSet("timeout") {
		scanTimeout = *cfg.ScanTimeout
	}
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, maxUpload *int64) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.MaxUpload != nil && !c.IsSet("max-upload") {
		*maxUpload = *cfg.MaxUpload
	}
}
