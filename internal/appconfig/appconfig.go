// Package appconfig manages loading and interpreting application configuration.
package appconfig

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/mwiater/ellipse/internal/ellipse"
	"github.com/mwiater/ellipse/internal/experiment"
)

const (
	// DefaultConfigPath is the default path to the application's configuration file.
	DefaultConfigPath = "config/config.json"
	// legacyConfigPath is where configs lived before the config/ directory existed.
	legacyConfigPath = "ellipse.json"
	// defaultLogFile is used when the config does not name a log file.
	defaultLogFile = "ellipse.log"
)

// ErrNoConfig is returned by Load when no configuration file exists.
var ErrNoConfig = errors.New("no configuration file found")

// Config represents the top-level application configuration.
type Config struct {
	Debug              bool   `json:"debug"`
	LogFile            string `json:"logFile,omitempty"`
	OutputRoot         string `json:"outputRoot,omitempty"`
	BucketsPerSecond   int    `json:"bucketsPerSecond,omitempty"`
	DropBoundarySample bool   `json:"dropBoundarySample"`
	ConfigPath         string `json:"-"`
}

// LogFilePath returns the path to the application log file, applying a default if not set.
func (c Config) LogFilePath() string {
	if path := c.LogFile; strings.TrimSpace(path) != "" {
		return path
	}
	return defaultLogFile
}

// OutputRootPath returns the directory holding the scenario outputs.
func (c Config) OutputRootPath() string {
	if root := strings.TrimSpace(c.OutputRoot); root != "" {
		return root
	}
	return experiment.DefaultRoot
}

// Resolution returns the number of buckets per time unit.
func (c Config) Resolution() int {
	if c.BucketsPerSecond <= 0 {
		return ellipse.DefaultResolution
	}
	return c.BucketsPerSecond
}

// AveragerOptions translates the config into averager options.
func (c Config) AveragerOptions() ellipse.Options {
	return ellipse.Options{
		Resolution:         c.Resolution(),
		DropBoundarySample: c.DropBoundarySample,
	}
}

// Load reads the application configuration from the specified path, with fallback to a legacy path.
func Load(path string) (Config, error) {
	if path == "" {
		path = DefaultConfigPath
	}

	config, err := loadFromPath(path)
	if err == nil {
		config.ConfigPath = path
		return config, nil
	}

	if errors.Is(err, os.ErrNotExist) {
		if path == DefaultConfigPath {
			config, legacyErr := loadFromPath(legacyConfigPath)
			if legacyErr == nil {
				config.ConfigPath = legacyConfigPath
				return config, nil
			}
			if errors.Is(legacyErr, os.ErrNotExist) {
				return Config{}, fmt.Errorf("%w (searched %q and %q)", ErrNoConfig, DefaultConfigPath, legacyConfigPath)
			}
			return Config{}, fmt.Errorf("could not read config file %q: %w", legacyConfigPath, legacyErr)
		}
		return Config{}, fmt.Errorf("%w at %q", ErrNoConfig, path)
	}

	return Config{}, fmt.Errorf("could not read config file %q: %w", path, err)
}

// loadFromPath validates and decodes the configuration at path.
func loadFromPath(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	if err := Validate(data); err != nil {
		return Config{}, err
	}

	var config Config
	if err := json.NewDecoder(bytes.NewReader(data)).Decode(&config); err != nil {
		return Config{}, err
	}
	return config, nil
}
