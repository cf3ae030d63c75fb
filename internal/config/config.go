// Package config loads vtb settings from .vtb/config.yaml, found by
// walking up from the working directory, with VTB_* environment overrides.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// ConfigDirName is the per-project directory holding config and database.
const ConfigDirName = ".vtb"

// Config carries the settings every command needs.
type Config struct {
	// DBPath is the SQLite database location.
	DBPath string `yaml:"db"`
	// Actor names who is operating the tool; recorded nowhere yet but
	// threaded through for reject reasons and future audit fields.
	Actor string `yaml:"actor"`
	// Color is "auto", "always" or "never".
	Color string `yaml:"color"`
	// IDPrefix seeds generated task identifiers.
	IDPrefix string `yaml:"prefix"`
}

// Load reads configuration for the project containing dir (usually the
// working directory). Missing config files are fine: defaults apply, with
// the database placed in the nearest .vtb directory or a fresh one here.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix("VTB")
	v.AutomaticEnv()

	v.SetDefault("actor", "")
	v.SetDefault("color", "auto")
	v.SetDefault("prefix", "task")

	root, found := findConfigDir(dir)
	if found {
		configPath := filepath.Join(root, "config.yaml")
		if _, err := os.Stat(configPath); err == nil {
			v.SetConfigFile(configPath)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("failed to read %s: %w", configPath, err)
			}
		}
	} else {
		root = filepath.Join(dir, ConfigDirName)
	}
	v.SetDefault("db", filepath.Join(root, "tasks.db"))

	cfg := &Config{
		DBPath:   v.GetString("db"),
		Actor:    v.GetString("actor"),
		Color:    v.GetString("color"),
		IDPrefix: v.GetString("prefix"),
	}
	if cfg.Color != "auto" && cfg.Color != "always" && cfg.Color != "never" {
		return nil, fmt.Errorf("invalid color setting %q (valid values: auto, always, never)", cfg.Color)
	}
	return cfg, nil
}

// Init writes a default config.yaml under dir/.vtb, creating the
// directory. Fails if a config file already exists.
func Init(dir string) (string, error) {
	root := filepath.Join(dir, ConfigDirName)
	if err := os.MkdirAll(root, 0o750); err != nil {
		return "", fmt.Errorf("failed to create %s: %w", root, err)
	}

	configPath := filepath.Join(root, "config.yaml")
	if _, err := os.Stat(configPath); err == nil {
		return "", fmt.Errorf("%s already exists", configPath)
	}

	cfg := Config{
		DBPath:   filepath.Join(root, "tasks.db"),
		Color:    "auto",
		IDPrefix: "task",
	}
	out, err := yaml.Marshal(&cfg)
	if err != nil {
		return "", err
	}
	if err := os.WriteFile(configPath, out, 0o600); err != nil {
		return "", fmt.Errorf("failed to write %s: %w", configPath, err)
	}
	return configPath, nil
}

// findConfigDir walks up from dir looking for a .vtb directory.
func findConfigDir(dir string) (string, bool) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", false
	}
	for d := abs; ; d = filepath.Dir(d) {
		candidate := filepath.Join(d, ConfigDirName)
		if info, err := os.Stat(candidate); err == nil && info.IsDir() {
			return candidate, true
		}
		if d == filepath.Dir(d) {
			return "", false
		}
	}
}
