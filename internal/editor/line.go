/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"math"
	"strconv"

	"segmenter/internal/domain"
	"segmenter/internal/vector"
)

// Line is a text line: an optional baseline, an optional mask polygon and
// the derived drawings (direction hint, order badge). The committed geometry
// is rounded to integers; the surface paths hold the live geometry.
type Line struct {
	ed            *Editor
	id            int
	order         int
	TextDirection TextDirection
	baseline      []vector.Pt
	mask          []vector.Pt
	ctx           map[string]any
	selected      bool
	height        float64

	baselinePath vector.Handle
	maskPath     vector.Handle
	hint         vector.Handle
	badge        vector.Handle
}

func (l *Line) ID() int                 { return l.id }
func (l *Line) Kind() Kind              { return KindLine }
func (l *Line) Order() int              { return l.order }
func (l *Line) Selected() bool          { return l.selected }
func (l *Line) Context() map[string]any { return l.ctx }
func (l *Line) LineHeight() float64     { return l.height }

// HasBaseline reports whether the line owns a baseline path.
func (l *Line) HasBaseline() bool { return l.baselinePath != 0 }

// HasMask reports whether the line owns a mask path.
func (l *Line) HasMask() bool { return l.maskPath != 0 }

// Baseline returns the committed baseline (nil when absent).
func (l *Line) Baseline() []vector.Pt { return vector.Clone(l.baseline) }

// Mask returns the committed mask (nil when absent).
func (l *Line) Mask() []vector.Pt { return vector.Clone(l.mask) }

// BaselinePath and MaskPath expose the surface handles (zero when absent).
func (l *Line) BaselinePath() vector.Handle { return l.baselinePath }
func (l *Line) MaskPath() vector.Handle     { return l.maskPath }

// DirectionHint returns the handle of the direction tick, if drawn.
func (l *Line) DirectionHint() vector.Handle { return l.hint }

// OrderBadge returns the handle of the order badge, if drawn.
func (l *Line) OrderBadge() vector.Handle { return l.badge }

// Geometry returns the committed geometry in payload form.
func (l *Line) Geometry() Geometry {
	return Geometry{Baseline: toPolyline(l.baseline), Mask: toPolyline(l.mask)}
}

func (l *Line) paths() []vector.Handle {
	var hs []vector.Handle
	if l.baselinePath != 0 {
		hs = append(hs, l.baselinePath)
	}
	if l.maskPath != 0 {
		hs = append(hs, l.maskPath)
	}
	return hs
}

func (l *Line) baselinePoints() []vector.Pt {
	if l.baselinePath == 0 {
		return nil
	}
	return l.ed.surface.Points(l.baselinePath)
}

func (l *Line) maskPoints() []vector.Pt {
	if l.maskPath == 0 {
		return nil
	}
	return l.ed.surface.Points(l.maskPath)
}

func (l *Line) Select() {
	if l.selected {
		return
	}
	s := l.ed.surface
	if l.maskPath != 0 && s.Visible(l.maskPath) {
		s.SetSelected(l.maskPath, true)
		s.BringToFront(l.maskPath)
	}
	if l.baselinePath != 0 {
		s.SetSelected(l.baselinePath, true)
		s.BringToFront(l.baselinePath)
		st := s.Style(l.baselinePath)
		st.Stroke.Color = l.ed.colors.Secondary
		s.SetStyle(l.baselinePath, st)
	}
	l.ed.addLine(l)
	l.selected = true
	if l.badge != 0 {
		s.BringToFront(l.badge)
	}
}

// highlight marks the baseline on the surface without touching the
// selection.
func (l *Line) highlight(on bool) {
	if l.baselinePath == 0 {
		return
	}
	s := l.ed.surface
	s.SetSelected(l.baselinePath, on)
	st := s.Style(l.baselinePath)
	st.Stroke.Color = l.ed.colors.Main
	if on {
		st.Stroke.Color = l.ed.colors.Secondary
	}
	s.SetStyle(l.baselinePath, st)
}

// Unselect also drops the vertex references into the line's paths.
func (l *Line) Unselect() {
	if !l.selected {
		return
	}
	s := l.ed.surface
	if l.maskPath != 0 {
		l.ed.removeSegmentsOf(l.maskPath)
		s.SetSelected(l.maskPath, false)
	}
	if l.baselinePath != 0 {
		l.ed.removeSegmentsOf(l.baselinePath)
		s.SetSelected(l.baselinePath, false)
		st := s.Style(l.baselinePath)
		st.Stroke.Color = l.ed.colors.Main
		s.SetStyle(l.baselinePath, st)
	}
	l.ed.removeLine(l)
	l.selected = false
}

func (l *Line) ToggleSelect() {
	if l.selected {
		l.Unselect()
	} else {
		l.Select()
	}
}

func (l *Line) Remove() {
	l.Unselect()
	s := l.ed.surface
	for _, h := range []vector.Handle{l.baselinePath, l.maskPath, l.hint, l.badge} {
		if h != 0 {
			s.Remove(h)
		}
	}
	l.baselinePath, l.maskPath, l.hint, l.badge = 0, 0, 0, 0
	l.ed.dropLine(l)
}

func (l *Line) Delete() {
	prev := l.Geometry()
	l.Remove()
	l.ed.emit(Event{Type: EventDeleteLine, Lines: []*Line{l}, Previous: []Geometry{prev}, Target: l})
}

// UpdateFromSurface commits the live geometry: points are rounded and
// duplicate vertices dropped. An update is emitted only on change.
func (l *Line) UpdateFromSurface() bool {
	prev := l.Geometry()
	s := l.ed.surface
	if l.baselinePath != 0 {
		l.baseline = vector.Reduce(vector.RoundAll(s.Points(l.baselinePath)), false)
		s.SetPoints(l.baselinePath, l.baseline)
	}
	if l.maskPath != 0 {
		l.mask = vector.Reduce(vector.RoundAll(s.Points(l.maskPath)), true)
		s.SetPoints(l.maskPath, l.mask)
	}
	if vector.Equal(fromPolyline(prev.Baseline), l.baseline) && vector.Equal(fromPolyline(prev.Mask), l.mask) {
		return false
	}
	l.ed.emit(Event{Type: EventUpdate, Lines: []*Line{l}, Previous: []Geometry{prev}, Target: l})
	return true
}

// rollback restores the surface paths from the committed geometry.
func (l *Line) rollback() {
	if l.baselinePath != 0 && l.baseline != nil {
		l.ed.surface.SetPoints(l.baselinePath, l.baseline)
	}
	if l.maskPath != 0 && l.mask != nil {
		l.ed.surface.SetPoints(l.maskPath, l.mask)
	}
	l.refresh()
}

// normalize stores the baseline left to right.
func (l *Line) normalize() {
	pts := l.baselinePoints()
	if len(pts) > 1 && pts[0].X > pts[len(pts)-1].X {
		l.ed.surface.SetPoints(l.baselinePath, vector.Reverse(pts))
	}
}

func (l *Line) refresh() {
	l.setLineHeight()
	l.showOrdering()
	l.showDirection()
}

func (l *Line) setLineHeight() {
	bl := l.baselinePoints()
	if bl == nil {
		return
	}
	if l.maskPath != 0 {
		if length := vector.Length(bl, false); length > 0 {
			l.height = math.Round(math.Abs(vector.Area(l.maskPoints())) / length)
		}
		return
	}
	if len(l.ed.lines) >= 2 {
		l.height = l.ed.averageLineHeight()
	}
}

func (l *Line) effectiveHeight() float64 {
	if l.height > 0 {
		return l.height
	}
	return l.ed.opts.UpperLineHeight + l.ed.opts.LowerLineHeight
}

// readingOrigin is the first point for left-to-right lines, the last one
// otherwise. Maskless-baseline lines anchor on the mask.
func (l *Line) readingOrigin() (vector.Pt, bool) {
	pts := l.baselinePoints()
	if len(pts) == 0 {
		pts = l.maskPoints()
	}
	if len(pts) == 0 {
		return vector.Pt{}, false
	}
	if l.TextDirection == RightToLeft {
		return pts[len(pts)-1], true
	}
	return pts[0], true
}

func (l *Line) showOrdering() {
	anchor, ok := l.readingOrigin()
	if !ok {
		return
	}
	s := l.ed.surface
	label := strconv.Itoa(l.order + 1)
	if l.badge == 0 {
		l.badge = s.CreateBadge(anchor, 10/l.ed.opts.Scale, label, l.ed.badgeStyle())
	} else {
		s.SetBadge(l.badge, anchor, label)
	}
	s.SetVisible(l.badge, l.ed.showLineNumbers)
	s.BringToFront(l.badge)
}

func (l *Line) showDirection() {
	pts := l.baselinePoints()
	if len(pts) < 2 {
		return
	}
	s := l.ed.surface
	start, at := pts[0], vector.VertexLocation(pts, false, 0)
	if l.TextDirection == RightToLeft {
		start, at = pts[len(pts)-1], vector.VertexLocation(pts, false, len(pts)-1)
	}
	v := s.NormalAt(l.baselinePath, at)
	if v.Len() == 0 {
		return
	}
	v = v.WithLength(l.effectiveHeight() / 3)
	tick := []vector.Pt{start.Sub(v), start.Add(v)}
	if l.hint == 0 {
		l.hint = s.CreatePath(tick, false, l.ed.hintStyle())
	} else {
		s.SetPoints(l.hint, tick)
	}
	s.SendToBack(l.hint)
}

// maskFromBaseline derives a closed mask with two points per baseline
// vertex: upper offsets in baseline order followed by the lower offsets in
// reverse, so that vertex i pairs with mask points i and 2N-1-i.
func (l *Line) maskFromBaseline() []vector.Pt {
	pts := l.baselinePoints()
	if len(pts) < 2 {
		return nil
	}
	s := l.ed.surface
	var mask []vector.Pt
	for i, p := range pts {
		n := s.NormalAt(l.baselinePath, vector.VertexLocation(pts, false, i))
		if math.Sin(n.Angle()) > 0 {
			n = n.Rotate(math.Pi)
		}
		up := p.Add(n.WithLength(l.ed.opts.UpperLineHeight))
		low := p.Sub(n.WithLength(l.ed.opts.LowerLineHeight))
		mask = insertPt(mask, i, up)
		mask = insertPt(mask, len(mask)-i, low)
	}
	return mask
}

func insertPt(pts []vector.Pt, i int, p vector.Pt) []vector.Pt {
	pts = append(pts, vector.Pt{})
	copy(pts[i+1:], pts[i:])
	pts[i] = p
	return pts
}

// setMaskPoints replaces (or creates) the mask path.
func (l *Line) setMaskPoints(pts []vector.Pt) {
	s := l.ed.surface
	if len(pts) == 0 {
		if l.maskPath != 0 {
			l.ed.removeSegmentsOf(l.maskPath)
			s.Remove(l.maskPath)
			l.maskPath = 0
		}
		return
	}
	if l.maskPath == 0 {
		l.maskPath = s.CreatePath(pts, true, l.ed.maskStyle())
		s.SetVisible(l.maskPath, l.ed.showMasks || l.baselinePath == 0)
		return
	}
	l.ed.removeSegmentsOf(l.maskPath)
	s.SetPoints(l.maskPath, pts)
}

func toPolyline(pts []vector.Pt) domain.Polyline {
	if pts == nil {
		return nil
	}
	out := make(domain.Polyline, len(pts))
	for i, p := range pts {
		out[i] = domain.Point{p.X, p.Y}
	}
	return out
}

func fromPolyline(pl domain.Polyline) []vector.Pt {
	if pl == nil {
		return nil
	}
	out := make([]vector.Pt, len(pl))
	for i, p := range pl {
		out[i] = vector.Pt{X: p[0], Y: p[1]}
	}
	return out
}
