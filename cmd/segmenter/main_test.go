/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const samplePayload = `{
  "lines": [
    {"baseline": [[10, 50], [190, 50]], "order": 0, "id": 11},
    {"baseline": [[10, 120], [190, 120]], "order": 1, "id": 12}
  ],
  "regions": [
    {"box": [[0, 0], [200, 0], [200, 200], [0, 200]], "id": 5}
  ]
}`

// setup isolates the config and store from the user's environment.
func setup(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("SEG_CONFIG", filepath.Join(dir, "config.yaml"))
	t.Setenv("SEG_STORE_PATH", filepath.Join(dir, "seg.sqlite"))
	t.Setenv("SEG_LOG_LEVEL", "error")
	t.Setenv("SEG_LOG_FILE", "")
	path := filepath.Join(dir, "page.json")
	if err := os.WriteFile(path, []byte(samplePayload), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCLI(t *testing.T, args ...string) (int, string, string) {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(args, &out, &errOut, nil)
	return code, out.String(), errOut.String()
}

func TestVersionAndUsage(t *testing.T) {
	setup(t)
	if code, out, _ := runCLI(t, "version"); code != 0 || strings.TrimSpace(out) == "" {
		t.Fatalf("version: code %d out %q", code, out)
	}
	if code, out, _ := runCLI(t); code != 0 || !strings.Contains(out, "Usage:") {
		t.Fatalf("usage: code %d out %q", code, out)
	}
	if code, _, errOut := runCLI(t, "bogus"); code != 2 || !strings.Contains(errOut, `unknown command "bogus"`) {
		t.Fatalf("unknown: code %d err %q", code, errOut)
	}
	if code, _, errOut := runCLI(t, "render", "x.json"); code != 2 || !strings.Contains(errOut, "render requires") {
		t.Fatalf("missing args: code %d err %q", code, errOut)
	}
}

func TestCheck(t *testing.T) {
	path := setup(t)
	code, out, errOut := runCLI(t, "check", path)
	if code != 0 {
		t.Fatalf("check failed: %s", errOut)
	}
	for _, want := range []string{"Lines: 2", "Regions: 1", "Max order: 1"} {
		if !strings.Contains(out, want) {
			t.Fatalf("check output lacks %q:\n%s", want, out)
		}
	}

	bad := filepath.Join(filepath.Dir(path), "bad.json")
	if err := os.WriteFile(bad, []byte(`{"lines": 3}`), 0o644); err != nil {
		t.Fatal(err)
	}
	if code, _, _ := runCLI(t, "check", bad); code != 1 {
		t.Fatalf("invalid payload should fail, got %d", code)
	}
}

func TestRender(t *testing.T) {
	path := setup(t)
	dir := filepath.Dir(path)
	for _, name := range []string{"out.png", "out.pdf"} {
		out := filepath.Join(dir, name)
		if code, _, errOut := runCLI(t, "render", path, out); code != 0 {
			t.Fatalf("render %s: %s", name, errOut)
		}
		if st, err := os.Stat(out); err != nil || st.Size() == 0 {
			t.Fatalf("%s not written: %v", name, err)
		}
	}
	if code, _, errOut := runCLI(t, "render", path, filepath.Join(dir, "out.svg")); code != 1 || !strings.Contains(errOut, "unsupported output") {
		t.Fatalf("svg: code %d err %q", code, errOut)
	}
	if code, _, _ := runCLI(t, "render", path, filepath.Join(dir, "x.png"), filepath.Join(dir, "missing.png")); code != 1 {
		t.Fatalf("missing image should fail")
	}
}

func TestImportDumpList(t *testing.T) {
	path := setup(t)
	if code, out, errOut := runCLI(t, "import", path, "page-1"); code != 0 || !strings.Contains(out, "Imported 2 lines and 1 regions") {
		t.Fatalf("import: code %d out %q err %q", code, out, errOut)
	}
	code, out, errOut := runCLI(t, "dump", "page-1")
	if code != 0 {
		t.Fatalf("dump: %s", errOut)
	}
	if !strings.Contains(out, `"baseline"`) || !strings.Contains(out, `"box"`) {
		t.Fatalf("dump output:\n%s", out)
	}
	if code, out, _ := runCLI(t, "list"); code != 0 || !strings.Contains(out, "page-1") || !strings.Contains(out, "lines 2") {
		t.Fatalf("list: code %d out %q", code, out)
	}
	if code, _, _ := runCLI(t, "dump", "missing"); code != 1 {
		t.Fatalf("dump of a missing document should fail")
	}

	other := filepath.Join(t.TempDir(), "other.sqlite")
	if code, out, _ := runCLI(t, "list", other); code != 0 || !strings.Contains(out, "No documents") {
		t.Fatalf("empty list: code %d out %q", code, out)
	}
}
