/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"segmenter/internal/domain"
	"segmenter/internal/vector"
)

func rect(x0, y0, x1, y1 float64) []vector.Pt {
	return pts(x0, y0, x1, y0, x1, y1, x0, y1)
}

func TestSplitByPolygonCrossings(t *testing.T) {
	cases := []struct {
		name string
		cut  []vector.Pt
		want [][]vector.Pt
	}{
		{"miss", rect(200, 0, 300, 100), [][]vector.Pt{pts(0, 50, 100, 50)}},
		{"trim end", rect(80, 0, 150, 100), [][]vector.Pt{pts(0, 50, 80, 50)}},
		{"trim start", rect(-50, 0, 20, 100), [][]vector.Pt{pts(20, 50, 100, 50)}},
		{"split", rect(40, 0, 60, 100), [][]vector.Pt{pts(0, 50, 40, 50), pts(60, 50, 100, 50)}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e, rec := newTestEditor(t)
			e.CreateLine(nil, pts(0, 50, 100, 50), nil, map[string]any{"id": int64(4)})
			e.SplitByPolygon(tc.cut)
			var got [][]vector.Pt
			for _, l := range e.Lines() {
				got = append(got, l.Baseline())
			}
			if diff := cmp.Diff(tc.want, got); diff != "" {
				t.Fatalf("baselines mismatch (-want +got):\n%s", diff)
			}
			if rec.count(EventUpdate) != len(tc.want) && tc.name != "miss" {
				t.Fatalf("got %d update events, want %d", rec.count(EventUpdate), len(tc.want))
			}
			if tc.name == "miss" && len(rec.events) != 0 {
				t.Fatalf("a missed cut must not notify")
			}
		})
	}
}

func TestSplitNewLineHasNoCorrelationID(t *testing.T) {
	e, rec := newTestEditor(t)
	l := e.CreateLine(nil, pts(0, 50, 100, 50), nil, map[string]any{"id": int64(4)})
	l.TextDirection = RightToLeft
	e.SplitByPolygon(rect(40, 0, 60, 100))
	lines := e.Lines()
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	nl := lines[1]
	if e.CorrelationID(nl) != nil {
		t.Fatalf("new line inherited id %v", e.CorrelationID(nl))
	}
	if e.CorrelationID(l) != int64(4) {
		t.Fatalf("original line lost its id")
	}
	if nl.TextDirection != RightToLeft {
		t.Fatalf("new line must keep the text direction")
	}
	if nl.Order() != 1 {
		t.Fatalf("new line order = %d, want 1", nl.Order())
	}
	first := rec.events[0]
	if first.Target != nl || first.Previous[0].Baseline != nil {
		t.Fatalf("the new line must be reported first as a fresh line: %+v", first)
	}
}

func TestSplitCutsMask(t *testing.T) {
	e, _ := newTestEditor(t)
	e.CreateLine(nil, pts(0, 50, 100, 50), rect(0, 30, 100, 60), nil)
	e.SplitByPolygon(rect(40, 0, 60, 100))
	lines := e.Lines()
	if len(lines) != 2 {
		t.Fatalf("want 2 lines, got %d", len(lines))
	}
	head, tail := lines[0].Mask(), lines[1].Mask()
	if len(head) < 3 || len(tail) < 3 {
		t.Fatalf("masks not split: %v / %v", head, tail)
	}
	if b := vector.Bounds(head); b.X != 0 || b.X+b.W != 40 {
		t.Fatalf("head mask spans %v", b)
	}
	if b := vector.Bounds(tail); b.X != 60 || b.X+b.W != 100 {
		t.Fatalf("tail mask spans %v", b)
	}
}

func TestTrimCutsMask(t *testing.T) {
	e, _ := newTestEditor(t)
	l := e.CreateLine(nil, pts(0, 50, 100, 50), rect(0, 30, 100, 60), nil)
	e.SplitByPolygon(rect(80, 0, 150, 100))
	if b := vector.Bounds(l.Mask()); b.X != 0 || b.X+b.W != 80 || b.H != 30 {
		t.Fatalf("trimmed mask spans %v", b)
	}
}

func baselines(e *Editor) [][]vector.Pt {
	var out [][]vector.Pt
	for _, l := range e.Lines() {
		out = append(out, l.Baseline())
	}
	return out
}

func TestSplitProcessesCrossingPairs(t *testing.T) {
	e, rec := newTestEditor(t)
	e.CreateLine(nil, pts(0, 0, 10, 100, 20, 0, 30, 100), nil, nil)
	e.SplitByPolygon(rect(-10, 40, 40, 60))
	want := [][]vector.Pt{
		pts(0, 0, 4, 40),
		pts(6, 60, 10, 100, 14, 60),
		pts(16, 40, 20, 0, 24, 40),
		pts(26, 60, 30, 100),
	}
	if diff := cmp.Diff(want, baselines(e)); diff != "" {
		t.Fatalf("baselines mismatch (-want +got):\n%s", diff)
	}
	if rec.count(EventUpdate) != 4 {
		t.Fatalf("got %d update events, want 4", rec.count(EventUpdate))
	}
}

func TestSplitOddCrossingsTrimsEnd(t *testing.T) {
	e, _ := newTestEditor(t)
	e.CreateLine(nil, pts(0, 50, 100, 50, 100, 80, 60, 80), nil, nil)
	e.SplitByPolygon(rect(30, 40, 70, 100))
	want := [][]vector.Pt{
		pts(0, 50, 30, 50),
		pts(70, 50, 100, 50, 100, 80, 70, 80),
	}
	if diff := cmp.Diff(want, baselines(e)); diff != "" {
		t.Fatalf("baselines mismatch (-want +got):\n%s", diff)
	}
}

func TestSplitSkipsAlternatingContainment(t *testing.T) {
	e, rec := newTestEditor(t)
	hook := pts(10, 50, 40, 50, 40, 80, 10, 80, 10, 90, 40, 90)
	l := e.CreateLine(nil, hook, nil, nil)
	e.SplitByPolygon(rect(0, 0, 20, 100))
	if !vector.Equal(l.Baseline(), hook) || len(e.Lines()) != 1 {
		t.Fatalf("line changed: %v", l.Baseline())
	}
	if len(rec.events) != 0 {
		t.Fatalf("skipped split must not notify")
	}
}

func TestSplitCutsMaskAcrossPairs(t *testing.T) {
	e, _ := newTestEditor(t)
	e.CreateLine(nil, pts(0, 50, 100, 50), rect(0, 30, 100, 60), nil)
	comb := pts(20, 0, 30, 0, 30, 80, 60, 80, 60, 0, 70, 0, 70, 100, 20, 100)
	e.SplitByPolygon(comb)
	lines := e.Lines()
	if len(lines) != 3 {
		t.Fatalf("want 3 lines, got %d", len(lines))
	}
	want := []vector.Rect{{X: 0, Y: 30, W: 20, H: 30}, {X: 30, Y: 30, W: 30, H: 30}, {X: 70, Y: 30, W: 30, H: 30}}
	for i, l := range lines {
		if got := vector.Bounds(l.Mask()); got != want[i] {
			t.Fatalf("line %d mask spans %v, want %v", i, got, want[i])
		}
	}
}

func TestRegionRefusesDegeneratePolygon(t *testing.T) {
	e, rec := newTestEditor(t)
	r := e.CreateRegion(nil, rect(0, 0, 10, 10), nil)
	e.Surface().SetPoints(r.Path(), pts(0, 0, 10, 0, 10, 0.2, 0, 0))
	if r.UpdateFromSurface() {
		t.Fatalf("a polygon without area was committed")
	}
	if diff := cmp.Diff(rect(0, 0, 10, 10), r.Polygon()); diff != "" {
		t.Fatalf("polygon mismatch (-want +got):\n%s", diff)
	}
	if got := e.Surface().Points(r.Path()); !vector.Equal(got, rect(0, 0, 10, 10)) {
		t.Fatalf("surface not rolled back: %v", got)
	}
	if len(rec.events) != 0 {
		t.Fatalf("refused commit must not notify")
	}
}

func TestMergeSelection(t *testing.T) {
	e, rec := newTestEditor(t)
	e.Load(domain.Payload{Lines: []domain.LinePayload{
		{Baseline: domain.Polyline{{60, 0}, {120, 0}}},
		{Baseline: domain.Polyline{{0, 0}, {50, 0}}},
	}})
	e.SelectAll()
	e.MergeSelection()
	want := domain.Export{
		Regions: []domain.Polyline{},
		Lines:   []domain.ExportLine{{Baseline: domain.Polyline{{0, 0}, {50, 0}, {60, 0}, {120, 0}}}},
	}
	if diff := cmp.Diff(want, e.Export()); diff != "" {
		t.Fatalf("export mismatch (-want +got):\n%s", diff)
	}
	if rec.count(EventDeleteLine) != 1 || rec.count(EventUpdate) != 1 {
		t.Fatalf("events: %d deletes, %d updates", rec.count(EventDeleteLine), rec.count(EventUpdate))
	}
}

func TestMergeSplicesMasks(t *testing.T) {
	e, _ := newTestEditor(t)
	a := e.CreateLine(nil, pts(0, 0, 50, 0), rect(0, -10, 50, 5), nil)
	b := e.CreateLine(nil, pts(60, 0, 120, 0), rect(60, -10, 120, 5), nil)
	e.AddToSelection(a)
	e.AddToSelection(b)
	e.MergeSelection()
	if len(e.Lines()) != 1 {
		t.Fatalf("want one line, got %d", len(e.Lines()))
	}
	if n := len(a.Mask()); n != 7 {
		t.Fatalf("merged mask has %d points, want 7", n)
	}
}

func TestMergeRequiresBaselines(t *testing.T) {
	e, rec := newTestEditor(t)
	a := e.CreateLine(nil, pts(0, 0, 50, 0), nil, nil)
	b := e.CreateLine(nil, nil, rect(60, -10, 120, 5), nil)
	e.AddToSelection(a)
	e.AddToSelection(b)
	if e.Menu().Merge {
		t.Fatalf("merge offered for a maskless-baseline selection")
	}
	e.MergeSelection()
	if len(e.Lines()) != 2 || len(rec.events) != 0 {
		t.Fatalf("merge must be a no-op")
	}
}

func TestReverseSelection(t *testing.T) {
	e, rec := newTestEditor(t)
	if err := e.LoadJSON([]byte(`{"lines":[{"baseline":[[0,0],[100,0]]}]}`)); err != nil {
		t.Fatal(err)
	}
	e.AddToSelection(e.Lines()[0])
	e.ReverseSelection()
	got := e.Export().Lines[0].Baseline
	if diff := cmp.Diff(domain.Polyline{{100, 0}, {0, 0}}, got); diff != "" {
		t.Fatalf("baseline mismatch (-want +got):\n%s", diff)
	}
	if rec.count(EventUpdate) != 1 {
		t.Fatalf("expected one update")
	}
}

func TestDeleteSelection(t *testing.T) {
	e, rec := newTestEditor(t)
	l := e.CreateLine(nil, pts(0, 0, 100, 0), nil, nil)
	keep := e.CreateLine(nil, pts(0, 40, 100, 40), nil, nil)
	r := e.CreateRegion(nil, rect(0, 0, 200, 200), nil)
	e.AddToSelection(l)
	e.AddToSelection(r)
	e.DeleteSelection()
	if got := e.Lines(); len(got) != 1 || got[0] != keep {
		t.Fatalf("wrong lines left: %v", got)
	}
	if len(e.Regions()) != 0 {
		t.Fatalf("region not deleted")
	}
	if rec.count(EventDeleteLine) != 1 || rec.count(EventDeleteRegion) != 1 {
		t.Fatalf("unexpected events: %+v", rec.events)
	}
	if e.Menu().Visible {
		t.Fatalf("menu must hide with an empty selection")
	}
}

func TestDeleteSelectedSegmentsKeepsMinimum(t *testing.T) {
	e, _ := newTestEditor(t)
	l := e.CreateLine(nil, pts(0, 0, 50, 0, 100, 0), nil, nil)
	e.AddToSelection(SegmentRef{Path: l.BaselinePath(), Index: 1})
	e.DeleteSelectedSegments()
	if diff := cmp.Diff(pts(0, 0, 100, 0), l.Baseline()); diff != "" {
		t.Fatalf("baseline mismatch (-want +got):\n%s", diff)
	}
	e.AddToSelection(SegmentRef{Path: l.BaselinePath(), Index: 0})
	e.DeleteSelectedSegments()
	if len(l.Baseline()) != 2 {
		t.Fatalf("a baseline must keep two points")
	}

	r := e.CreateRegion(nil, pts(0, 0, 10, 0, 10, 10), nil)
	e.AddToSelection(SegmentRef{Path: r.Path(), Index: 2})
	e.DeleteSelectedSegments()
	if len(r.Polygon()) != 3 {
		t.Fatalf("a region must keep three points")
	}
}

func TestSelectionDeduplicates(t *testing.T) {
	e, _ := newTestEditor(t)
	l := e.CreateLine(nil, pts(0, 0, 100, 0), nil, nil)
	ref := SegmentRef{Path: l.BaselinePath(), Index: 0}
	for i := 0; i < 2; i++ {
		e.AddToSelection(l)
		e.AddToSelection(ref)
	}
	s := e.Selection()
	if len(s.Lines) != 1 || len(s.Segments) != 1 {
		t.Fatalf("duplicates in selection: %+v", s)
	}
	if m := e.Menu(); !m.Visible || !m.DeletePoint || !m.Reverse || m.Merge {
		t.Fatalf("menu = %+v", m)
	}
	e.ToggleSelection(ref)
	if e.IsSelected(ref) {
		t.Fatalf("toggle did not remove the vertex")
	}
}

func TestPurgeSelectionKeepsException(t *testing.T) {
	e, _ := newTestEditor(t)
	a := e.CreateLine(nil, pts(0, 0, 100, 0), nil, nil)
	b := e.CreateLine(nil, pts(0, 40, 100, 40), nil, nil)
	e.AddToSelection(a)
	e.AddToSelection(b)
	e.AddToSelection(SegmentRef{Path: a.BaselinePath(), Index: 1})
	e.AddToSelection(SegmentRef{Path: b.BaselinePath(), Index: 1})
	e.PurgeSelection(a)
	s := e.Selection()
	if len(s.Lines) != 1 || s.Lines[0] != a {
		t.Fatalf("selected lines = %v", s.Lines)
	}
	if len(s.Segments) != 1 || s.Segments[0].Path != a.BaselinePath() {
		t.Fatalf("selected vertices = %v", s.Segments)
	}
	if b.Selected() {
		t.Fatalf("b still flagged selected")
	}
}

func TestPurgeSelectionDropsStaleVertices(t *testing.T) {
	e, _ := newTestEditor(t)
	l := e.CreateLine(nil, pts(0, 0, 100, 0), nil, nil)
	ref := SegmentRef{Path: l.BaselinePath(), Index: 1}
	e.AddToSelection(ref)
	e.Surface().Remove(l.BaselinePath())
	e.PurgeSelection(nil)
	if e.IsSelected(ref) {
		t.Fatalf("stale reference kept")
	}
}

func TestInsertVertex(t *testing.T) {
	e, rec := newTestEditor(t)
	l := e.CreateLine(nil, pts(0, 50, 100, 50), nil, nil)
	e.InsertVertex(l, vector.Pt{X: 50, Y: 53})
	if diff := cmp.Diff(pts(0, 50, 50, 50, 100, 50), l.Baseline()); diff != "" {
		t.Fatalf("baseline mismatch (-want +got):\n%s", diff)
	}
	if rec.count(EventUpdate) != 1 {
		t.Fatalf("expected one update")
	}
}
