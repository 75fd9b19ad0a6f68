/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// AppConfig is the user-editable configuration persisted as YAML in the user
// scope. Environment variables are read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int               `yaml:"config_version"`
	Logging       LoggingConfig     `yaml:"logging"`
	Annotations   AnnotationsConfig `yaml:"annotations"`
	Toolbar       ToolbarConfig     `yaml:"toolbar"`
	Export        ExportConfig      `yaml:"export"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

type AnnotationsConfig struct {
	// Animation animates group translation while the chart animates.
	Animation bool            `yaml:"animation"`
	Selection SelectionConfig `yaml:"selection"`
	History   HistoryConfig   `yaml:"history"`
}

// SelectionConfig styles the outline drawn around the selected annotation.
type SelectionConfig struct {
	Padding     float64 `yaml:"padding"`
	Stroke      string  `yaml:"stroke"`
	StrokeWidth float64 `yaml:"stroke_width"`
	Fill        string  `yaml:"fill"`
}

type HistoryConfig struct {
	MaxDepth      int `yaml:"max_depth"`
	MinIntervalMs int `yaml:"min_interval_ms"`
}

type ToolbarConfig struct {
	Enabled bool    `yaml:"enabled"`
	OffsetX float64 `yaml:"offset_x"`
	OffsetY float64 `yaml:"offset_y"`
}

type ExportConfig struct {
	PNGScale   float64 `yaml:"png_scale"`
	Background string  `yaml:"background"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	return AppConfig{
		ConfigVersion: 1,
		Logging:       LoggingConfig{Level: "info", Format: "console"},
		Annotations: AnnotationsConfig{
			Animation: true,
			Selection: SelectionConfig{Padding: 5, Stroke: "#3399ff", StrokeWidth: 1, Fill: "none"},
			History:   HistoryConfig{MaxDepth: 64},
		},
		Toolbar: ToolbarConfig{Enabled: true},
		Export:  ExportConfig{PNGScale: 1, Background: "#ffffff"},
	}
}

// Env var names used as overrides.
const (
	EnvAnimation        = "CHN_ANIMATION"
	EnvToolbar          = "CHN_TOOLBAR"
	EnvSelectionPadding = "CHN_SELECTION_PADDING"
	EnvLogLevel         = "CHN_LOG_LEVEL"
	EnvLogFormat        = "CHN_LOG_FORMAT"
	EnvLogSource        = "CHN_LOG_SOURCE"
	EnvLogFile          = "CHN_LOG_FILE"
)

// envKeys maps dotted config keys to their override variable.
var envKeys = map[string]string{
	"annotations.animation":         EnvAnimation,
	"toolbar.enabled":               EnvToolbar,
	"annotations.selection.padding": EnvSelectionPadding,
	"logging.level":                 EnvLogLevel,
	"logging.format":                EnvLogFormat,
	"logging.source":                EnvLogSource,
	"logging.file":                  EnvLogFile,
}

// ErrNoConfigDir is returned when no per-user config directory can be derived.
var ErrNoConfigDir = errors.New("cannot resolve config directory")

// ConfigPath returns the per-user config file path.
func ConfigPath() (string, error) {
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			if up := os.Getenv("USERPROFILE"); up != "" {
				base = filepath.Join(up, "AppData", "Roaming")
			}
		}
		if base != "" {
			base = filepath.Join(base, "chartnote")
		}
	case "darwin":
		if h := os.Getenv("HOME"); h != "" {
			base = filepath.Join(h, "Library", "Application Support", "chartnote")
		}
	default:
		if x := os.Getenv("XDG_CONFIG_HOME"); x != "" {
			base = filepath.Join(x, "chartnote")
		} else if h := os.Getenv("HOME"); h != "" {
			base = filepath.Join(h, ".config", "chartnote")
		}
	}
	if base == "" {
		return "", ErrNoConfigDir
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present), applies defaults and merges
// environment overrides. A missing file is not an error; a malformed one is.
func Load() (AppConfig, error) {
	path, err := ConfigPath()
	if err != nil {
		cfg := Defaults()
		applyEnvOverrides(&cfg)
		return cfg, nil
	}
	return LoadFile(path)
}

// LoadFile is Load for an explicit path.
func LoadFile(path string) (AppConfig, error) {
	cfg := Defaults()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		fileCfg, perr := parse(data)
		if perr != nil {
			return cfg, fmt.Errorf("config %s: %w", path, perr)
		}
		mergeInto(&cfg, &fileCfg, data)
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read config: %w", err)
	}
	applyEnvOverrides(&cfg)
	return cfg, nil
}

func parse(data []byte) (AppConfig, error) {
	var c AppConfig
	if err := yaml.Unmarshal(data, &c); err != nil {
		return c, err
	}
	return c, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	return SaveFile(path, cfg)
}

// SaveFile writes cfg to path, creating parent directories.
func SaveFile(path string, cfg AppConfig) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	return nil
}

// mergeInto overlays the file config. Booleans are only taken from the file
// when their key is actually present, so a partial file keeps the defaults.
func mergeInto(dst, src *AppConfig, raw []byte) {
	var present map[string]any
	_ = yaml.Unmarshal(raw, &present)
	has := func(path ...string) bool {
		var cur any = present
		for _, p := range path {
			m, ok := cur.(map[string]any)
			if !ok {
				return false
			}
			if cur, ok = m[p]; !ok {
				return false
			}
		}
		return true
	}

	if src.ConfigVersion != 0 {
		dst.ConfigVersion = src.ConfigVersion
	}
	if v := strings.TrimSpace(src.Logging.Level); v != "" {
		dst.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(src.Logging.Format); v != "" {
		dst.Logging.Format = strings.ToLower(v)
	}
	if has("logging", "source") {
		dst.Logging.Source = src.Logging.Source
	}
	if v := strings.TrimSpace(src.Logging.File); v != "" {
		dst.Logging.File = v
	}

	a, sa := &dst.Annotations, &src.Annotations
	if has("annotations", "animation") {
		a.Animation = sa.Animation
	}
	if has("annotations", "selection", "padding") {
		a.Selection.Padding = sa.Selection.Padding
	}
	if sa.Selection.Stroke != "" {
		a.Selection.Stroke = sa.Selection.Stroke
	}
	if sa.Selection.StrokeWidth > 0 {
		a.Selection.StrokeWidth = sa.Selection.StrokeWidth
	}
	if sa.Selection.Fill != "" {
		a.Selection.Fill = sa.Selection.Fill
	}
	if sa.History.MaxDepth > 0 {
		a.History.MaxDepth = sa.History.MaxDepth
	}
	if sa.History.MinIntervalMs > 0 {
		a.History.MinIntervalMs = sa.History.MinIntervalMs
	}

	if has("toolbar", "enabled") {
		dst.Toolbar.Enabled = src.Toolbar.Enabled
	}
	if src.Toolbar.OffsetX != 0 {
		dst.Toolbar.OffsetX = src.Toolbar.OffsetX
	}
	if src.Toolbar.OffsetY != 0 {
		dst.Toolbar.OffsetY = src.Toolbar.OffsetY
	}
	if src.Export.PNGScale > 0 {
		dst.Export.PNGScale = src.Export.PNGScale
	}
	if src.Export.Background != "" {
		dst.Export.Background = src.Export.Background
	}
}

func truthy(v string) bool {
	switch strings.ToLower(v) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

func applyEnvOverrides(cfg *AppConfig) {
	if v := strings.TrimSpace(os.Getenv(EnvAnimation)); v != "" {
		cfg.Annotations.Animation = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvToolbar)); v != "" {
		cfg.Toolbar.Enabled = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvSelectionPadding)); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil && n >= 0 {
			cfg.Annotations.Selection.Padding = n
		}
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = truthy(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by
// environment variables.
func EnvOverrideFor(key string) (string, bool) {
	name, ok := envKeys[key]
	if !ok || os.Getenv(name) == "" {
		return "", false
	}
	return name, true
}
