/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"

	"segmenter/internal/editor"
)

func useConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	if content != "" {
		if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
			t.Fatal(err)
		}
	}
	t.Setenv(EnvConfigPath, path)
	return path
}

func TestLoadMissingFileGivesDefaults(t *testing.T) {
	useConfigFile(t, "")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if diff := cmp.Diff(Defaults(), cfg); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFileOverDefaults(t *testing.T) {
	useConfigFile(t, `
config_version: 1
editor:
  length_threshold: 25
  default_text_direction: RTL
  id_field: uuid
  scale: -2
storage:
  path: " /data/seg.sqlite "
logging:
  level: DEBUG
`)
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	e := cfg.Editor
	if e.LengthThreshold != 25 || e.DefaultTextDirection != "rl" || e.IDField != "uuid" {
		t.Fatalf("editor section not read: %+v", e)
	}
	if e.Scale != 1 {
		t.Fatalf("invalid scale must fall back to the default, got %v", e.Scale)
	}
	if !e.AutoMask || e.UpperLineHeight != 20 {
		t.Fatalf("unset keys must keep their defaults: %+v", e)
	}
	if cfg.Storage.Path != "/data/seg.sqlite" || cfg.Logging.Level != "debug" {
		t.Fatalf("storage/logging = %+v %+v", cfg.Storage, cfg.Logging)
	}
}

func TestLoadMalformedFile(t *testing.T) {
	useConfigFile(t, "editor: [not, a, map")
	if _, err := Load(); err == nil {
		t.Fatalf("expected a parse error")
	}
}

func TestEnvOverrides(t *testing.T) {
	useConfigFile(t, "editor:\n  auto_mask: true\n")
	t.Setenv(EnvLengthThreshold, "42")
	t.Setenv(EnvTextDirection, "rl")
	t.Setenv(EnvIDField, "-")
	t.Setenv(EnvAutoMask, "off")
	t.Setenv(EnvDisableBindings, "yes")
	t.Setenv(EnvStorePath, "/tmp/x.sqlite")
	t.Setenv(EnvLogLevel, "ERROR")
	t.Setenv(EnvLogSource, "1")
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	e := cfg.Editor
	if e.LengthThreshold != 42 || e.DefaultTextDirection != "rl" || e.IDField != "-" || e.AutoMask || !e.DisableBindings {
		t.Fatalf("editor overrides not applied: %+v", e)
	}
	if cfg.Storage.Path != "/tmp/x.sqlite" || cfg.Logging.Level != "error" || !cfg.Logging.Source {
		t.Fatalf("overrides not applied: %+v", cfg)
	}
	if env, ok := EnvOverrideFor("editor.length_threshold"); !ok || env != EnvLengthThreshold {
		t.Fatalf("EnvOverrideFor = %q %v", env, ok)
	}
	if _, ok := EnvOverrideFor("logging.file"); ok {
		t.Fatalf("logging.file is not overridden")
	}
	if _, ok := EnvOverrideFor("no.such.key"); ok {
		t.Fatalf("unknown key reported as overridden")
	}
}

func TestEditorOptions(t *testing.T) {
	c := Defaults().Editor
	c.DefaultTextDirection = "rl"
	c.IDField = "-"
	c.HitTolerance = 8
	o := c.Options()
	if o.DefaultTextDirection != editor.RightToLeft || o.IDField != "" || o.HitTolerance != 8 || !o.AutoMask {
		t.Fatalf("options = %+v", o)
	}
	if d := Defaults().Editor.Options(); d.IDField != "id" || d.LengthThreshold != 10 {
		t.Fatalf("default options = %+v", d)
	}
}

func TestSaveRoundTrip(t *testing.T) {
	useConfigFile(t, "")
	cfg := Defaults()
	cfg.Editor.LowerLineHeight = 14
	cfg.Logging.File = "/var/log/seg.log"
	if err := Save(cfg); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if diff := cmp.Diff(cfg, got); diff != "" {
		t.Fatalf("config mismatch (-want +got):\n%s", diff)
	}
}

func TestStorePath(t *testing.T) {
	path := useConfigFile(t, "")
	cfg := Defaults()
	got, err := cfg.StorePath()
	if err != nil || got != filepath.Join(filepath.Dir(path), "segmenter.sqlite") {
		t.Fatalf("StorePath = %q err %v", got, err)
	}
	cfg.Storage.Path = "/elsewhere.sqlite"
	if got, _ := cfg.StorePath(); got != "/elsewhere.sqlite" {
		t.Fatalf("StorePath = %q", got)
	}
}

func TestLogOptions(t *testing.T) {
	o := LoggingConfig{Level: "warn", Format: "json", Source: true, File: "f.log"}.LogOptions()
	if o.Level != "warn" || o.Format != "json" || !o.AddSource || o.File != "f.log" {
		t.Fatalf("log options = %+v", o)
	}
}
