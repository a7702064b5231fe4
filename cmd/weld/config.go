// Copyright 2025 KrakLabs
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program. If not, see <https://www.gnu.org/licenses/>.
//
// For commercial licensing, contact: licensing@kraklabs.com
//
// SPDX-License-Identifier: AGPL-3.0-or-later

package main

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	wErrors "github.com/kraklabs/weld/internal/errors"
)

const (
	defaultConfigDir  = ".weld"
	defaultConfigFile = "project.yaml"
	configVersion     = "1"
)

// Config is weld's per-project configuration (.weld/project.yaml),
// grounded on cmd/cie/config.go's project config: a version guard plus
// the defaults a bare CLI invocation falls back to when the matching
// flag is omitted.
type Config struct {
	Version     string   `yaml:"version"`
	Excludes    []string `yaml:"excludes,omitempty"`
	LocalState  bool     `yaml:"local_state,omitempty"`
	MetricsAddr string   `yaml:"metrics_addr,omitempty"`
}

// DefaultConfig returns the configuration a fresh project starts with.
func DefaultConfig() Config {
	return Config{
		Version:  configVersion,
		Excludes: []string{".git/**", "target/**"},
	}
}

// ConfigDir returns the directory a project config lives in, given a
// project root (the directory containing it, not the file itself).
func ConfigDir(root string) string {
	return filepath.Join(root, defaultConfigDir)
}

// ConfigPath returns the full path to a project's config file.
func ConfigPath(root string) string {
	return filepath.Join(ConfigDir(root), defaultConfigFile)
}

// LoadConfig loads the project config: explicitPath if given, else the
// nearest .weld/project.yaml found by walking up from the current
// directory, else DefaultConfig(). A version mismatch is a config error.
func LoadConfig(explicitPath string) (Config, error) {
	path := explicitPath
	if path == "" {
		found, err := findConfigFile()
		if err != nil {
			return Config{}, err
		}
		if found == "" {
			return DefaultConfig(), nil
		}
		path = found
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return Config{}, wErrors.NewConfigError(
			"Cannot read project config",
			fmt.Sprintf("Failed to read %s", path),
			"Check the path passed to --config, or remove it to use defaults",
			err,
		)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, wErrors.NewConfigError(
			"Invalid project config",
			fmt.Sprintf("%s is not valid YAML: %v", path, err),
			"Check the file for syntax errors",
			err,
		)
	}
	if cfg.Version == "" {
		cfg.Version = configVersion
	}
	if cfg.Version != configVersion {
		return Config{}, wErrors.NewConfigError(
			"Incompatible project config version",
			fmt.Sprintf("%s declares version %q, this build expects %q", path, cfg.Version, configVersion),
			"Delete or regenerate .weld/project.yaml",
			nil,
		)
	}
	return cfg, nil
}

// SaveConfig writes cfg to path (creating its directory if needed).
func SaveConfig(cfg Config, path string) error {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return wErrors.NewInternalError("Failed to marshal project config", err.Error(), "", err)
	}
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0750); err != nil {
		return wErrors.NewPermissionError(
			"Cannot create config directory",
			fmt.Sprintf("Failed to create %s", dir),
			"Check directory permissions",
			err,
		)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return wErrors.NewPermissionError(
			"Cannot write project config",
			fmt.Sprintf("Failed to write %s", path),
			"Check file permissions",
			err,
		)
	}
	return nil
}

// findConfigFile walks up from the current directory to the filesystem
// root looking for "<dir>/.weld/project.yaml", returning "" if none is
// found anywhere above cwd.
func findConfigFile() (string, error) {
	dir, err := os.Getwd()
	if err != nil {
		return "", wErrors.NewInternalError("Could not determine the working directory", err.Error(), "", err)
	}
	for {
		candidate := ConfigPath(dir)
		if _, err := os.Stat(candidate); err == nil {
			return candidate, nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return "", nil
		}
		dir = parent
	}
}
