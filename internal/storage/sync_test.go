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
	"errors"
	"io"
	"log/slog"
	"testing"

	"segmenter/internal/domain"
	"segmenter/internal/editor"
	"segmenter/internal/vector"
)

func newSyncedEditor(t *testing.T, s *Store) (*editor.Editor, *Sync) {
	t.Helper()
	opts := editor.DefaultOptions()
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	ed := editor.New(nil, opts)
	sync, err := NewSync(context.Background(), s, "page")
	if err != nil {
		t.Fatalf("NewSync: %v", err)
	}
	if err := sync.Attach(ed); err != nil {
		t.Fatalf("Attach: %v", err)
	}
	t.Cleanup(sync.Detach)
	return ed, sync
}

func drawLine(ed *editor.Editor, from, to vector.Pt) {
	ed.MouseDown(editor.PointerEvent{Point: from})
	ed.MouseUp(editor.PointerEvent{Point: from})
	ed.MouseMove(editor.PointerEvent{Point: to})
	ed.MouseDown(editor.PointerEvent{Point: to})
	ed.MouseUp(editor.PointerEvent{Point: to})
}

func TestSyncInsertsUpdatesDeletes(t *testing.T) {
	s := openTestStore(t)
	ed, sync := newSyncedEditor(t, s)
	ctx := context.Background()

	drawLine(ed, vector.Pt{X: 10, Y: 100}, vector.Pt{X: 200, Y: 100})
	l := ed.Lines()[0]
	id, ok := domain.IDInt64(ed.CorrelationID(l))
	if !ok || id == 0 {
		t.Fatalf("row id not written back: %v", ed.CorrelationID(l))
	}
	rows, err := s.Lines(ctx, sync.DocumentID())
	if err != nil || len(rows) != 1 || rows[0].ID != id {
		t.Fatalf("rows %+v err %v", rows, err)
	}

	ed.RegenerateMask(l)
	rows, _ = s.Lines(ctx, sync.DocumentID())
	if len(rows) != 1 || len(rows[0].Mask) != 4 {
		t.Fatalf("mask not persisted: %+v", rows)
	}
	if got, _ := domain.IDInt64(ed.CorrelationID(l)); got != id {
		t.Fatalf("update must keep the row id, got %d", got)
	}

	l.Delete()
	rows, _ = s.Lines(ctx, sync.DocumentID())
	if len(rows) != 0 {
		t.Fatalf("row not deleted: %+v", rows)
	}
}

func TestSyncRegions(t *testing.T) {
	s := openTestStore(t)
	ed, sync := newSyncedEditor(t, s)
	ctx := context.Background()
	ed.ToggleRegionMode()
	drawLine(ed, vector.Pt{X: 10, Y: 10}, vector.Pt{X: 60, Y: 40})
	r := ed.Regions()[0]
	if _, ok := domain.IDInt64(ed.CorrelationID(r)); !ok {
		t.Fatalf("region id not written back")
	}
	regions, err := s.Regions(ctx, sync.DocumentID())
	if err != nil || len(regions) != 1 || len(regions[0].Box) != 4 {
		t.Fatalf("regions %+v err %v", regions, err)
	}
	r.Delete()
	if regions, _ = s.Regions(ctx, sync.DocumentID()); len(regions) != 0 {
		t.Fatalf("region row not deleted")
	}
}

func TestSyncSplitInsertsNewLine(t *testing.T) {
	s := openTestStore(t)
	ed, sync := newSyncedEditor(t, s)
	drawLine(ed, vector.Pt{X: 0, Y: 50}, vector.Pt{X: 100, Y: 50})
	ed.SplitByPolygon([]vector.Pt{{X: 40, Y: 0}, {X: 60, Y: 0}, {X: 60, Y: 100}, {X: 40, Y: 100}})
	rows, err := s.Lines(context.Background(), sync.DocumentID())
	if err != nil || len(rows) != 2 {
		t.Fatalf("rows %+v err %v", rows, err)
	}
	for _, l := range ed.Lines() {
		if _, ok := domain.IDInt64(ed.CorrelationID(l)); !ok {
			t.Fatalf("line %d has no row id", l.ID())
		}
	}
}

func TestSyncReinsertsMissingRow(t *testing.T) {
	s := openTestStore(t)
	ed, sync := newSyncedEditor(t, s)
	drawLine(ed, vector.Pt{X: 10, Y: 100}, vector.Pt{X: 200, Y: 100})
	l := ed.Lines()[0]
	old, _ := domain.IDInt64(ed.CorrelationID(l))
	if err := s.DeleteLine(context.Background(), old); err != nil {
		t.Fatal(err)
	}
	ed.RegenerateMask(l)
	id, _ := domain.IDInt64(ed.CorrelationID(l))
	rows, _ := s.Lines(context.Background(), sync.DocumentID())
	if len(rows) != 1 || rows[0].ID != id || len(rows[0].Mask) != 4 {
		t.Fatalf("rows = %+v, id %d", rows, id)
	}
}

func TestSyncReportsErrors(t *testing.T) {
	s := openTestStore(t)
	ed, sync := newSyncedEditor(t, s)
	var got []error
	sync.OnError = func(err error) { got = append(got, err) }
	_ = s.Close()
	drawLine(ed, vector.Pt{X: 10, Y: 100}, vector.Pt{X: 200, Y: 100})
	if len(got) != 1 {
		t.Fatalf("expected one reported error, got %v", got)
	}
	if len(ed.Lines()) != 1 {
		t.Fatalf("the editor must keep the line")
	}
}

func TestSyncRequiresIDField(t *testing.T) {
	s := openTestStore(t)
	opts := editor.DefaultOptions()
	opts.IDField = ""
	opts.Logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	sync, err := NewSync(context.Background(), s, "page")
	if err != nil {
		t.Fatal(err)
	}
	if err := sync.Attach(editor.New(nil, opts)); !errors.Is(err, ErrNoIDField) {
		t.Fatalf("expected ErrNoIDField, got %v", err)
	}
}

func TestDetachStopsSync(t *testing.T) {
	s := openTestStore(t)
	ed, sync := newSyncedEditor(t, s)
	sync.Detach()
	drawLine(ed, vector.Pt{X: 10, Y: 100}, vector.Pt{X: 200, Y: 100})
	if rows, _ := s.Lines(context.Background(), sync.DocumentID()); len(rows) != 0 {
		t.Fatalf("detached sync still writes")
	}
}
