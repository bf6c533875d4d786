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

	"segmenter/internal/editor"
	applog "segmenter/internal/log"
	"segmenter/internal/storage"
)

// AppConfig is the user-editable configuration persisted to a YAML file in
// the user scope. Environment variables are read-only overrides at runtime.
//
// config_version: bump when the structure changes in a backward-incompatible way.
type AppConfig struct {
	ConfigVersion int           `yaml:"config_version"`
	Editor        EditorConfig  `yaml:"editor"`
	Storage       StorageConfig `yaml:"storage"`
	Logging       LoggingConfig `yaml:"logging"`
}

type EditorConfig struct {
	LengthThreshold      float64 `yaml:"length_threshold"`
	Scale                float64 `yaml:"scale"`
	DefaultTextDirection string  `yaml:"default_text_direction"` // lr | rl
	UpperLineHeight      float64 `yaml:"upper_line_height"`
	LowerLineHeight      float64 `yaml:"lower_line_height"`
	// IDField names the correlation id key; "-" disables id tracking.
	IDField           string  `yaml:"id_field"`
	DisableBindings   bool    `yaml:"disable_bindings"`
	HitTolerance      float64 `yaml:"hit_tolerance"`
	SimplifyTolerance float64 `yaml:"simplify_tolerance"`
	AutoMask          bool    `yaml:"auto_mask"`
}

type StorageConfig struct {
	// Path of the SQLite file; empty means next to the config file.
	Path string `yaml:"path"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Source bool   `yaml:"source"`
	File   string `yaml:"file"`
}

// Defaults returns the application defaults.
func Defaults() AppConfig {
	d := editor.DefaultOptions()
	return AppConfig{
		ConfigVersion: 1,
		Editor: EditorConfig{
			LengthThreshold:      d.LengthThreshold,
			Scale:                d.Scale,
			DefaultTextDirection: string(d.DefaultTextDirection),
			UpperLineHeight:      d.UpperLineHeight,
			LowerLineHeight:      d.LowerLineHeight,
			IDField:              d.IDField,
			HitTolerance:         d.HitTolerance,
			SimplifyTolerance:    d.SimplifyTolerance,
			AutoMask:             true,
		},
		Logging: LoggingConfig{Level: "info", Format: "console"},
	}
}

// Env var names used as overrides.
const (
	EnvConfigPath      = "SEG_CONFIG"
	EnvLengthThreshold = "SEG_LENGTH_THRESHOLD"
	EnvScale           = "SEG_SCALE"
	EnvTextDirection   = "SEG_TEXT_DIRECTION"
	EnvIDField         = "SEG_ID_FIELD"
	EnvDisableBindings = "SEG_DISABLE_BINDINGS"
	EnvAutoMask        = "SEG_AUTO_MASK"
	EnvStorePath       = "SEG_STORE_PATH"
	// EnvLogLevel Logging envs
	EnvLogLevel  = "SEG_LOG_LEVEL"
	EnvLogFormat = "SEG_LOG_FORMAT"
	EnvLogSource = "SEG_LOG_SOURCE"
	EnvLogFile   = "SEG_LOG_FILE"
)

// envKeys maps config keys to the env var overriding them.
var envKeys = map[string]string{
	"editor.length_threshold":       EnvLengthThreshold,
	"editor.scale":                  EnvScale,
	"editor.default_text_direction": EnvTextDirection,
	"editor.id_field":               EnvIDField,
	"editor.disable_bindings":       EnvDisableBindings,
	"editor.auto_mask":              EnvAutoMask,
	"storage.path":                  EnvStorePath,
	"logging.level":                 EnvLogLevel,
	"logging.format":                EnvLogFormat,
	"logging.source":                EnvLogSource,
	"logging.file":                  EnvLogFile,
}

// ConfigPath returns the per-user config file path. SEG_CONFIG overrides it.
func ConfigPath() (string, error) {
	if p := strings.TrimSpace(os.Getenv(EnvConfigPath)); p != "" {
		return p, nil
	}
	var base string
	switch runtime.GOOS {
	case "windows":
		base = os.Getenv("AppData")
		if base == "" {
			base = filepath.Join(os.Getenv("USERPROFILE"), "AppData", "Roaming")
		}
		base = filepath.Join(base, "Segmenter")
	case "darwin":
		base = filepath.Join(os.Getenv("HOME"), "Library", "Application Support", "Segmenter")
	default:
		if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
			base = filepath.Join(xdg, "segmenter")
		} else {
			base = filepath.Join(os.Getenv("HOME"), ".config", "segmenter")
		}
	}
	if base == "" {
		return "", errors.New("cannot resolve config directory")
	}
	return filepath.Join(base, "config.yaml"), nil
}

// Load reads the user config file (if present) over the defaults and merges
// environment overrides. A malformed file is reported; a missing one is not.
func Load() (AppConfig, error) {
	cfg := Defaults()
	path, err := ConfigPath()
	if err != nil {
		return cfg, err
	}
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Defaults(), fmt.Errorf("parse %s: %w", path, err)
		}
	case !errors.Is(err, os.ErrNotExist):
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	applyEnvOverrides(&cfg)
	normalize(&cfg)
	return cfg, nil
}

// Save writes the user config YAML.
func Save(cfg AppConfig) error {
	path, err := ConfigPath()
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o600)
}

// normalize trims strings and puts invalid numbers back to their defaults.
func normalize(cfg *AppConfig) {
	def := Defaults()
	e := &cfg.Editor
	for _, f := range []struct{ v, d *float64 }{
		{&e.LengthThreshold, &def.Editor.LengthThreshold},
		{&e.Scale, &def.Editor.Scale},
		{&e.HitTolerance, &def.Editor.HitTolerance},
		{&e.SimplifyTolerance, &def.Editor.SimplifyTolerance},
	} {
		if *f.v <= 0 {
			*f.v = *f.d
		}
	}
	if e.UpperLineHeight < 0 {
		e.UpperLineHeight = def.Editor.UpperLineHeight
	}
	if e.LowerLineHeight < 0 {
		e.LowerLineHeight = def.Editor.LowerLineHeight
	}
	e.DefaultTextDirection = string(parseDirection(e.DefaultTextDirection))
	e.IDField = strings.TrimSpace(e.IDField)
	cfg.Storage.Path = strings.TrimSpace(cfg.Storage.Path)
	cfg.Logging.Level = strings.ToLower(strings.TrimSpace(cfg.Logging.Level))
	cfg.Logging.Format = strings.ToLower(strings.TrimSpace(cfg.Logging.Format))
	cfg.Logging.File = strings.TrimSpace(cfg.Logging.File)
}

func parseDirection(s string) editor.TextDirection {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "rl", "rtl":
		return editor.RightToLeft
	}
	return editor.LeftToRight
}

func parseBool(v string) bool {
	lv := strings.ToLower(v)
	return lv == "1" || lv == "true" || lv == "on" || lv == "yes"
}

func applyEnvOverrides(cfg *AppConfig) {
	float := func(env string, dst *float64) {
		if v := strings.TrimSpace(os.Getenv(env)); v != "" {
			if f, err := strconv.ParseFloat(v, 64); err == nil {
				*dst = f
			}
		}
	}
	float(EnvLengthThreshold, &cfg.Editor.LengthThreshold)
	float(EnvScale, &cfg.Editor.Scale)
	if v := strings.TrimSpace(os.Getenv(EnvTextDirection)); v != "" {
		cfg.Editor.DefaultTextDirection = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvIDField)); v != "" {
		cfg.Editor.IDField = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvDisableBindings)); v != "" {
		cfg.Editor.DisableBindings = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvAutoMask)); v != "" {
		cfg.Editor.AutoMask = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvStorePath)); v != "" {
		cfg.Storage.Path = v
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogLevel)); v != "" {
		cfg.Logging.Level = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFormat)); v != "" {
		cfg.Logging.Format = strings.ToLower(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogSource)); v != "" {
		cfg.Logging.Source = parseBool(v)
	}
	if v := strings.TrimSpace(os.Getenv(EnvLogFile)); v != "" {
		cfg.Logging.File = v
	}
}

// EnvOverrideFor returns the env var name if the field is overridden by
// environment variables.
func EnvOverrideFor(key string) (string, bool) {
	env, ok := envKeys[key]
	if !ok || os.Getenv(env) == "" {
		return "", false
	}
	return env, true
}

// Options converts the editor section to editor options.
func (c EditorConfig) Options() editor.Options {
	o := editor.DefaultOptions()
	o.LengthThreshold = c.LengthThreshold
	o.Scale = c.Scale
	o.DefaultTextDirection = parseDirection(c.DefaultTextDirection)
	o.UpperLineHeight = c.UpperLineHeight
	o.LowerLineHeight = c.LowerLineHeight
	o.IDField = c.IDField
	if o.IDField == "-" {
		o.IDField = ""
	}
	o.DisableBindings = c.DisableBindings
	o.HitTolerance = c.HitTolerance
	o.SimplifyTolerance = c.SimplifyTolerance
	o.AutoMask = c.AutoMask
	return o
}

// LogOptions converts the logging section for log.Init.
func (c LoggingConfig) LogOptions() applog.Options {
	return applog.Options{Level: c.Level, Format: c.Format, AddSource: c.Source, File: c.File}
}

// StorePath resolves the database file: the configured path, or
// segmenter.sqlite next to the config file.
func (c AppConfig) StorePath() (string, error) {
	if c.Storage.Path != "" {
		return c.Storage.Path, nil
	}
	cp, err := ConfigPath()
	if err != nil {
		return "", err
	}
	return filepath.Join(filepath.Dir(cp), storage.DefaultFileName), nil
}
