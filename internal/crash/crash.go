/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


// Package crash turns a panic in the CLI or the desktop host into a crash
// report and an autosave of the page being edited.
package crash

import (
	"bytes"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"runtime/debug"
	"time"

	"segmenter/internal/editor"
	applog "segmenter/internal/log"
	"segmenter/internal/version"
)

// exitFn is used to allow testing of Recover without terminating the test process.
var exitFn = os.Exit

// Session names what a crash should preserve. All fields are optional.
type Session struct {
	// Dir receives the report and the autosave; empty means the temp dir.
	Dir      string
	Document string
	Editor   *editor.Editor
}

func (s *Session) dir() string {
	if s == nil || s.Dir == "" {
		return os.TempDir()
	}
	return s.Dir
}

// Recover captures a panic, logs it with its stack, writes a crash report
// and autosaves the editor content when the session has an editor.
//
// Usage: defer crash.Recover(sess)
func Recover(s *Session) {
	if r := recover(); r != nil {
		l := applog.WithComponent("crash")
		stack := debug.Stack()
		l.Error("panic recovered", slog.Any("panic", r), slog.String("stack", string(stack)))

		reportPath, err := writeReport(s, r, stack)
		if err != nil {
			l.Error("crash report failed", slog.Any("err", err))
		}
		if s != nil && s.Editor != nil {
			if path, err := Autosave(s); err != nil {
				l.Error("autosave failed", slog.Any("err", err))
			} else {
				l.Info("autosave written", slog.String("path", path))
			}
		}

		if _, err := fmt.Fprintf(os.Stderr, "A fatal error occurred. A crash report was saved to: %s\n", reportPath); err != nil {
			l.Error("failed to write crash message to stderr", slog.Any("err", err))
		}
		if _, err := fmt.Fprintf(os.Stderr, "Version: %s\nOS/Arch: %s/%s\n", version.String(), runtime.GOOS, runtime.GOARCH); err != nil {
			l.Error("failed to write version info to stderr", slog.Any("err", err))
		}
		exitFn(2)
	}
}

// Autosave writes the editor content in load format and returns the file.
func Autosave(s *Session) (string, error) {
	if s == nil || s.Editor == nil {
		return "", fmt.Errorf("autosave: no editor")
	}
	data, err := s.Editor.Payload().Encode(s.Editor.Options().IDField)
	if err != nil {
		return "", fmt.Errorf("autosave: %w", err)
	}
	name := "autosave"
	if s.Document != "" {
		name += "-" + sanitize(s.Document)
	}
	path := filepath.Join(s.dir(), fmt.Sprintf("%s-%s.json", name, time.Now().Format("20060102-150405")))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return "", fmt.Errorf("autosave: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("autosave: %w", err)
	}
	return path, nil
}

func sanitize(s string) string {
	b := []byte(s)
	for i, c := range b {
		switch {
		case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9', c == '-', c == '_':
		default:
			b[i] = '_'
		}
	}
	return string(b)
}

func writeReport(s *Session, panicVal any, stack []byte) (string, error) {
	dir := s.dir()
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, fmt.Sprintf("crash-%s.log", time.Now().Format("20060102-150405")))

	var buf bytes.Buffer
	_, _ = fmt.Fprintf(&buf, "Segmenter Crash Report\n")
	_, _ = fmt.Fprintf(&buf, "Timestamp: %s\n", time.Now().Format(time.RFC3339))
	_, _ = fmt.Fprintf(&buf, "Version: %s\n", version.String())
	_, _ = fmt.Fprintf(&buf, "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
	if s != nil && s.Document != "" {
		_, _ = fmt.Fprintf(&buf, "Document: %s\n", s.Document)
	}
	if s != nil && s.Editor != nil {
		_, _ = fmt.Fprintf(&buf, "Lines: %d\nRegions: %d\nState: %s\n", len(s.Editor.Lines()), len(s.Editor.Regions()), s.Editor.State())
	}
	_, _ = fmt.Fprintf(&buf, "\nPanic: %v\n\n", panicVal)
	_, _ = fmt.Fprintf(&buf, "Stack:\n%s\n", string(stack))

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o644)
	if err != nil {
		return path, err
	}
	defer func() {
		if err := f.Close(); err != nil {
			applog.WithComponent("crash").Error("failed to close crash report file", slog.Any("err", err), slog.String("path", path))
		}
	}()
	if _, err := f.Write(buf.Bytes()); err != nil {
		return path, err
	}
	_ = f.Sync()
	return path, nil
}
