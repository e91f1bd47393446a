package main

import (
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the srmkit configuration file (~/.config/srmkit/config.yaml).
// Pointer fields distinguish "not set" from false.
type Config struct {
	OutputDir string `yaml:"output_dir"`
	SwapBytes *bool  `yaml:"swap_bytes"`
	MupenOut  *bool  `yaml:"mupen_out"`

	// Output
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	// Server
	ServerAddress string         `yaml:"server_address"`
	DownloadTTL   *time.Duration `yaml:"download_ttl"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "srmkit", "config.yaml")
}

// applyConvertConfig applies config file defaults to merge/split variables
// when the corresponding CLI flag was not explicitly set.
func applyConvertConfig(c *cli.Command, cfg Config, mupenOut *bool) {
	if cfg.OutputDir != "" && !c.IsSet("out-dir") {
		outDir = cfg.OutputDir
	}
	if cfg.SwapBytes != nil && !c.IsSet("swap") {
		swapBytes = *cfg.SwapBytes
	}
	if mupenOut != nil && cfg.MupenOut != nil && !c.IsSet("mupen-out") {
		*mupenOut = *cfg.MupenOut
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string, ttl *time.Duration) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.DownloadTTL != nil && !c.IsSet("download-ttl") {
		*ttl = *cfg.DownloadTTL
	}
}

// LoadConfig reads the config file. Returns a zero Config if the file doesn't exist.
func LoadConfig() Config {
	return loadConfigFile(configPath())
}

func loadConfigFile(path string) Config {
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
