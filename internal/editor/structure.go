/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"cmp"
	"math"
	"slices"

	"segmenter/internal/vector"
)

// SplitByPolygon cuts every baseline crossed by the closed polygon. See
// SplitByPath.
func (e *Editor) SplitByPolygon(cut []vector.Pt) {
	if len(cut) < 3 {
		return
	}
	h := e.surface.CreatePath(cut, true, e.helperStyle())
	defer e.surface.Remove(h)
	e.SplitByPath(h)
}

// SplitByPath cuts every baseline crossed by the closed path cut. Crossings
// are taken in pairs: the stretch between them is dropped and the stretch
// after it becomes a new line. A crossing left over trims the end of the
// baseline lying inside the cut. Masks are clipped with quads spanned by the
// baseline normals at the crossings. A baseline starting inside the cut and
// crossing it more than twice is left unchanged.
func (e *Editor) SplitByPath(cut vector.Handle) {
	for _, l := range slices.Clone(e.lines) {
		if !l.HasBaseline() || !e.surface.Exists(l.baselinePath) {
			continue
		}
		locs := e.surface.Intersections(l.baselinePath, cut)
		if len(locs) == 0 || !e.splitLine(l, cut, locs) {
			continue
		}
		l.refresh()
		l.UpdateFromSurface()
	}
}

// fragment is a stretch of a baseline kept by a split.
type fragment struct {
	from, to vector.Location
	pts      []vector.Pt
	mask     []vector.Pt
	area     float64
}

func (e *Editor) splitLine(l *Line, cut vector.Handle, locs []vector.Location) bool {
	s := e.surface
	pts := s.Points(l.baselinePath)
	first, last := vector.VertexLocation(pts, false, 0), vector.VertexLocation(pts, false, len(pts)-1)
	startInside, endInside := s.Contains(cut, pts[0]), s.Contains(cut, pts[len(pts)-1])
	if len(locs) > 2 && startInside {
		e.log.Warn("split skipped: baseline starts inside a cut it crosses more than twice", "line", l.id, "crossings", len(locs))
		return false
	}

	var reach float64
	if l.HasMask() {
		reach = vector.Bounds(s.Points(l.maskPath)).Diagonal()
	}
	normal := func(loc vector.Location) vector.Pt { return s.NormalAt(l.baselinePath, loc) }
	// trim covers the mask beyond loc, forward or backward along the baseline
	trim := func(loc vector.Location, forward bool) []vector.Pt {
		t := vector.TangentAt(pts, false, loc).WithLength(reach)
		if !forward {
			t = t.Neg()
		}
		n := normal(loc)
		return vector.ClipQuad(loc.Point, n, loc.Point.Add(t), n, reach)
	}

	var frags []*fragment
	var clips [][]vector.Pt
	switch {
	case len(locs) == 1 && startInside:
		frags = []*fragment{{from: locs[0], to: last}}
		clips = [][]vector.Pt{trim(locs[0], false)}
	case len(locs) == 1 && endInside:
		frags = []*fragment{{from: first, to: locs[0]}}
		clips = [][]vector.Pt{trim(locs[0], true)}
	case len(locs) == 1:
		// grazing crossing: only the vertex is added
		pts, _ = vector.InsertAt(pts, locs[0])
		s.SetPoints(l.baselinePath, pts)
		return true
	default:
		from := first
		for i := 0; i+1 < len(locs); i += 2 {
			a, b := locs[i], locs[i+1]
			frags = append(frags, &fragment{from: from, to: a})
			clips = append(clips, vector.ClipQuad(a.Point, normal(a), b.Point, normal(b), reach))
			from = b
		}
		if len(locs)%2 == 1 && endInside {
			loc := locs[len(locs)-1]
			frags = append(frags, &fragment{from: from, to: loc})
			clips = append(clips, trim(loc, true))
		} else {
			frags = append(frags, &fragment{from: from, to: last})
		}
	}
	for _, f := range frags {
		f.pts = vector.SubPath(pts, f.from, f.to)
	}

	masked := false
	if l.HasMask() {
		pieces, err := vector.Difference(s.Points(l.maskPath), clips...)
		if err != nil {
			e.log.Debug("mask not split", "line", l.id, "err", err)
		} else {
			masked = true
			for _, piece := range pieces {
				at := vector.InteriorPoint(piece)
				// pieces lying inside the cut are dropped
				if s.Contains(cut, at) {
					continue
				}
				f := owningFragment(frags, vector.NearestLocation(pts, false, at).Offset)
				if a := vector.Area(piece); a > f.area {
					f.mask, f.area = piece, a
				}
			}
		}
	}

	frags = slices.DeleteFunc(frags, func(f *fragment) bool {
		return len(f.pts) < 2 || vector.Length(f.pts, false) == 0
	})
	if len(frags) == 0 {
		e.log.Debug("split skipped: nothing of the baseline survives", "line", l.id)
		return false
	}
	s.SetPoints(l.baselinePath, frags[0].pts)
	if masked {
		l.setMaskPoints(frags[0].mask)
	}
	for _, f := range frags[1:] {
		nl := e.newLine(nil, f.pts, f.mask, nil)
		nl.TextDirection = l.TextDirection
		nl.refresh()
		nl.UpdateFromSurface()
	}
	return true
}

// owningFragment returns the fragment spanning the arc-length offset, or the
// closest one.
func owningFragment(frags []*fragment, offset float64) *fragment {
	best, bestD := frags[0], math.Inf(1)
	for _, f := range frags {
		d := math.Max(f.from.Offset-offset, offset-f.to.Offset)
		if d <= 0 {
			return f
		}
		if d < bestD {
			best, bestD = f, d
		}
	}
	return best
}

// MergeSelection joins the selected lines from left to right into the
// leftmost one. It is a no-op unless at least two lines are selected and all
// of them have a baseline.
func (e *Editor) MergeSelection() {
	sel := slices.Clone(e.sel.lines)
	if len(sel) < 2 || slices.ContainsFunc(sel, func(l *Line) bool { return !l.HasBaseline() }) {
		return
	}
	s := e.surface
	slices.SortStableFunc(sel, func(a, b *Line) int {
		return cmp.Compare(s.Bounds(a.baselinePath).Center().X, s.Bounds(b.baselinePath).Center().X)
	})
	l1 := sel[0]
	for _, l2 := range sel[1:] {
		s.SetPoints(l1.baselinePath, append(s.Points(l1.baselinePath), s.Points(l2.baselinePath)...))
		if l1.HasMask() && l2.HasMask() {
			m1, m2 := s.Points(l1.maskPath), s.Points(l2.maskPath)
			loc := vector.NearestLocation(m1, true, vector.InteriorPoint(m2))
			at := loc.Index + 1
			merged := slices.Concat(m1[:at], m2[:len(m2)-1], m1[at:])
			l1.setMaskPoints(merged)
		}
		l2.Delete()
	}
	l1.refresh()
	l1.UpdateFromSurface()
	e.updateMenu()
}

// ReverseSelection reverses the baseline of every selected line. The
// reversed order is kept as is.
func (e *Editor) ReverseSelection() {
	for _, l := range slices.Clone(e.sel.lines) {
		if !l.HasBaseline() {
			continue
		}
		e.surface.SetPoints(l.baselinePath, vector.Reverse(e.surface.Points(l.baselinePath)))
		l.refresh()
		l.UpdateFromSurface()
	}
}

// DeleteSelection deletes the selected lines and regions.
func (e *Editor) DeleteSelection() {
	for i := len(e.sel.lines) - 1; i >= 0; i-- {
		e.sel.lines[i].Delete()
	}
	for i := len(e.sel.regions) - 1; i >= 0; i-- {
		e.sel.regions[i].Delete()
	}
	e.updateMenu()
}

// DeleteSelectedSegments removes the selected vertices from their paths as
// long as open paths keep two points and closed paths three. Owners are
// committed afterwards.
func (e *Editor) DeleteSelectedSegments() {
	refs := slices.Clone(e.sel.segments)
	slices.SortFunc(refs, func(a, b SegmentRef) int {
		if c := cmp.Compare(a.Path, b.Path); c != 0 {
			return c
		}
		return cmp.Compare(b.Index, a.Index)
	})
	touched := map[vector.Handle]bool{}
	for _, ref := range refs {
		if e.staleSegment(ref) {
			e.sel.segments = slices.DeleteFunc(e.sel.segments, func(o SegmentRef) bool { return o == ref })
			continue
		}
		n := len(e.surface.Points(ref.Path))
		minPts := 2
		if owner := e.ownerOf(ref.Path); owner != nil && (owner.Kind() == KindRegion || e.isMask(ref.Path)) {
			minPts = 3
		}
		if n <= minPts {
			continue
		}
		e.removeSegment(ref)
		e.surface.RemovePoint(ref.Path, ref.Index)
		touched[ref.Path] = true
	}
	committed := map[Entity]bool{}
	for h := range touched {
		owner := e.ownerOf(h)
		if owner == nil || committed[owner] {
			continue
		}
		committed[owner] = true
		if l, ok := owner.(*Line); ok {
			l.refresh()
		}
		owner.UpdateFromSurface()
	}
	e.updateMenu()
}

func (e *Editor) isMask(h vector.Handle) bool {
	for _, l := range e.lines {
		if l.maskPath == h {
			return true
		}
	}
	return false
}

// InsertVertex adds a vertex to the path of ent nearest to p and commits it.
// Lines take the vertex on their baseline.
func (e *Editor) InsertVertex(ent Entity, p vector.Pt) {
	var h vector.Handle
	switch v := ent.(type) {
	case *Line:
		h = v.baselinePath
	case *Region:
		h = v.path
	}
	if h == 0 {
		return
	}
	loc := e.surface.NearestLocation(h, p)
	if loc.Index < 0 {
		return
	}
	pts, _ := vector.InsertAt(e.surface.Points(h), loc)
	e.surface.SetPoints(h, pts)
	if l, ok := ent.(*Line); ok {
		l.refresh()
	}
	ent.UpdateFromSurface()
}
