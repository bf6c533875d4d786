/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"segmenter/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "db", DefaultFileName))
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestOpenCreatesSchema(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	v, err := s.SchemaVersion(ctx)
	if err != nil || v != schemaVersion {
		t.Fatalf("schema version %d err %v", v, err)
	}
	var mode string
	if err := s.db.QueryRowContext(ctx, `PRAGMA journal_mode;`).Scan(&mode); err != nil || mode != "wal" {
		t.Fatalf("journal mode %q err %v", mode, err)
	}
}

func TestOpenRequiresPath(t *testing.T) {
	if _, err := Open("  "); err == nil {
		t.Fatalf("expected error for empty path")
	}
}

// TestMigrations_UpgradeV1ToV2 opens a schema 1 database and expects the
// document indexes of schema 2.
func TestMigrations_UpgradeV1ToV2(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultFileName)
	dsn := fmt.Sprintf("file:%s?cache=shared&_pragma=busy_timeout(2000)", filepath.ToSlash(path))
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	stmts := []string{
		`PRAGMA journal_mode=WAL;`,
		`CREATE TABLE IF NOT EXISTS meta (key TEXT PRIMARY KEY, value TEXT NOT NULL);`,
		`CREATE TABLE IF NOT EXISTS version (id INTEGER PRIMARY KEY CHECK(id=1), schema INTEGER NOT NULL, app TEXT, created_at TEXT NOT NULL, updated_at TEXT NOT NULL);`,
		`INSERT INTO version(id, schema, app, created_at, updated_at) VALUES(1, 1, 'test', '2020-01-01T00:00:00Z', '2020-01-01T00:00:00Z');`,
		`CREATE TABLE documents (id INTEGER PRIMARY KEY, key TEXT NOT NULL UNIQUE, width INTEGER NOT NULL DEFAULT 0, height INTEGER NOT NULL DEFAULT 0);`,
		`CREATE TABLE lines (id INTEGER PRIMARY KEY, document_id INTEGER NOT NULL, ord INTEGER NOT NULL, baseline TEXT, mask TEXT, direction TEXT NOT NULL DEFAULT 'lr');`,
		`CREATE TABLE regions (id INTEGER PRIMARY KEY, document_id INTEGER NOT NULL, ord INTEGER, box TEXT NOT NULL);`,
	}
	for _, q := range stmts {
		if _, err := db.ExecContext(ctx, q); err != nil {
			t.Fatalf("seed v1 schema: %v (q=%s)", err, q)
		}
	}
	_ = db.Close()

	s, err := Open(path)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer s.Close()
	if v, _ := s.SchemaVersion(ctx); v != 2 {
		t.Fatalf("expected schema 2 after migration, got %d", v)
	}
	var cnt int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type='index' AND name IN ('idx_lines_document','idx_regions_document')`).Scan(&cnt); err != nil {
		t.Fatalf("query indexes: %v", err)
	}
	if cnt != 2 {
		t.Fatalf("expected 2 indexes after migration, got %d", cnt)
	}
}

func TestDocuments(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	id, err := s.EnsureDocument(ctx, "page-1", 800, 600)
	if err != nil {
		t.Fatalf("EnsureDocument: %v", err)
	}
	again, err := s.EnsureDocument(ctx, "page-1", 0, 0)
	if err != nil || again != id {
		t.Fatalf("EnsureDocument again: %d (%d) err %v", again, id, err)
	}
	if _, err := s.DocumentID(ctx, "nope"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	docs, err := s.Documents(ctx)
	if err != nil {
		t.Fatalf("Documents: %v", err)
	}
	want := []Document{{ID: id, Key: "page-1", Width: 800, Height: 600}}
	if diff := cmp.Diff(want, docs); diff != "" {
		t.Fatalf("documents mismatch (-want +got):\n%s", diff)
	}
	if err := s.DeleteDocument(ctx, "page-1"); err != nil {
		t.Fatalf("DeleteDocument: %v", err)
	}
	if err := s.DeleteDocument(ctx, "page-1"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestLineAndRegionRows(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	doc, err := s.EnsureDocument(ctx, "p", 0, 0)
	if err != nil {
		t.Fatal(err)
	}
	rec := LineRecord{Order: 3, Baseline: domain.Polyline{{0, 0}, {10, 0}}}
	if rec.ID, err = s.SaveLine(ctx, doc, rec); err != nil || rec.ID == 0 {
		t.Fatalf("insert line: id %d err %v", rec.ID, err)
	}
	rec.Mask = domain.Polyline{{0, -5}, {10, -5}, {10, 5}}
	rec.Direction = "rl"
	if id, err := s.SaveLine(ctx, doc, rec); err != nil || id != rec.ID {
		t.Fatalf("update line: id %d err %v", id, err)
	}
	lines, err := s.Lines(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]LineRecord{rec}, lines); diff != "" {
		t.Fatalf("lines mismatch (-want +got):\n%s", diff)
	}

	if _, err := s.SaveLine(ctx, doc, LineRecord{ID: 999, Baseline: rec.Baseline}); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := s.DeleteLine(ctx, rec.ID); err != nil {
		t.Fatalf("DeleteLine: %v", err)
	}
	if err := s.DeleteLine(ctx, rec.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	reg := RegionRecord{Box: domain.Polyline{{0, 0}, {5, 0}, {5, 5}}}
	if reg.ID, err = s.SaveRegion(ctx, doc, reg); err != nil {
		t.Fatal(err)
	}
	regions, err := s.Regions(ctx, doc)
	if err != nil {
		t.Fatal(err)
	}
	if diff := cmp.Diff([]RegionRecord{reg}, regions); diff != "" {
		t.Fatalf("regions mismatch (-want +got):\n%s", diff)
	}
	if err := s.DeleteRegion(ctx, reg.ID); err != nil {
		t.Fatalf("DeleteRegion: %v", err)
	}
}

func TestImportLoadPayload(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()
	two := 2
	in := domain.Payload{
		Lines: []domain.LinePayload{
			{Baseline: domain.Polyline{{0, 0}, {100, 0}}, Mask: domain.Polyline{{0, -10}, {100, -10}, {100, 5}, {0, 5}}},
			{Baseline: domain.Polyline{{0, 40}, {100, 40}}, Order: &two, TextDirection: "rl"},
			{Mask: domain.Polyline{{0, 80}, {100, 80}, {100, 90}}},
		},
		Regions: []domain.RegionPayload{{Box: domain.Polyline{{0, 0}, {200, 0}, {200, 200}, {0, 200}}}},
	}
	nl, nr, err := s.ImportPayload(ctx, "page", in)
	if err != nil || nl != 3 || nr != 1 {
		t.Fatalf("ImportPayload: %d %d %v", nl, nr, err)
	}
	// importing again replaces the content
	if _, _, err := s.ImportPayload(ctx, "page", in); err != nil {
		t.Fatalf("re-import: %v", err)
	}
	out, err := s.LoadPayload(ctx, "page")
	if err != nil {
		t.Fatalf("LoadPayload: %v", err)
	}
	if len(out.Lines) != 3 || len(out.Regions) != 1 {
		t.Fatalf("loaded %d lines %d regions", len(out.Lines), len(out.Regions))
	}
	// ordered by ord: 0, 2, 2
	if diff := cmp.Diff(in.Lines[0].Baseline, out.Lines[0].Baseline); diff != "" {
		t.Fatalf("first line mismatch (-want +got):\n%s", diff)
	}
	if out.Lines[1].TextDirection != "rl" || *out.Lines[1].Order != 2 {
		t.Fatalf("second line = %+v", out.Lines[1])
	}
	if out.Lines[2].Baseline != nil || out.Lines[2].TextDirection != "lr" {
		t.Fatalf("maskless line = %+v", out.Lines[2])
	}
	for _, l := range out.Lines {
		if _, ok := domain.IDInt64(l.ID); !ok {
			t.Fatalf("line without row id: %+v", l)
		}
	}
	if _, err := s.LoadPayload(ctx, "missing"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
