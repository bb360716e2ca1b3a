// Package config loads and merges the sendora configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"

	"github.com/sendora-labs/sendora/internal/output"
)

// Loader is responsible for loading and merging configuration.
type Loader struct {
	homeDir    string
	configPath string // explicit --config path
	logger     *output.Logger
}

// NewLoader creates a new Loader.
func NewLoader(homeDir, configPath string, logger *output.Logger) *Loader {
	return &Loader{
		homeDir:    homeDir,
		configPath: configPath,
		logger:     logger,
	}
}

// LoadFileConfig loads and parses config files, merging them in priority
// order: ~/.sendora/config.toml < ./config.toml < explicit --config path.
// Returns the merged FileConfig and the highest-priority file path. A missing
// config file is not an error; only an explicit path must exist.
func (l *Loader) LoadFileConfig() (*FileConfig, string, error) {
	var configFiles []string

	homePath := filepath.Join(l.homeDir, "config.toml")
	if _, err := os.Stat(homePath); err == nil {
		configFiles = append(configFiles, homePath)
	}

	if _, err := os.Stat("./config.toml"); err == nil {
		if absPath, _ := filepath.Abs("./config.toml"); absPath != homePath {
			configFiles = append(configFiles, "./config.toml")
		}
	}

	if l.configPath != "" {
		if _, err := os.Stat(l.configPath); err != nil {
			return nil, "", fmt.Errorf("config file not found: %s", l.configPath)
		}
		absPath, _ := filepath.Abs(l.configPath)
		duplicate := false
		for _, cf := range configFiles {
			if abs, _ := filepath.Abs(cf); abs == absPath {
				duplicate = true
				break
			}
		}
		if !duplicate {
			configFiles = append(configFiles, l.configPath)
		}
	}

	if len(configFiles) == 0 {
		return nil, "", nil
	}

	merged := &FileConfig{}
	for _, path := range configFiles {
		cfg, err := l.parseFile(path)
		if err != nil {
			return nil, "", err
		}
		merge(merged, cfg)
		l.logger.Debug("Loaded config file: %s", path)
	}

	return merged, configFiles[len(configFiles)-1], nil
}

func (l *Loader) parseFile(path string) (*FileConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}
	var cfg FileConfig
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config file %s: %w", path, err)
	}
	return &cfg, nil
}

// merge overlays src onto dst: set fields in src win.
func merge(dst, src *FileConfig) {
	if src.Home != nil {
		dst.Home = src.Home
	}
	if src.NoColor != nil {
		dst.NoColor = src.NoColor
	}
	if src.Verbose != nil {
		dst.Verbose = src.Verbose
	}
	if src.JSON != nil {
		dst.JSON = src.JSON
	}
	if src.Network != nil {
		dst.Network = src.Network
	}
	if src.Approval != nil {
		dst.Approval = src.Approval
	}
	if src.KeyFile != nil {
		dst.KeyFile = src.KeyFile
	}
	if src.EnvFile != nil {
		dst.EnvFile = src.EnvFile
	}
	if src.ConfirmTimeout != nil {
		dst.ConfirmTimeout = src.ConfirmTimeout
	}
	if len(src.Networks) > 0 {
		if dst.Networks == nil {
			dst.Networks = make(map[string]NetworkOverride, len(src.Networks))
		}
		for name, override := range src.Networks {
			dst.Networks[name] = override
		}
	}
}
