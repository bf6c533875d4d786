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
	"slices"

	"segmenter/internal/vector"
)

// State is the tool state of the interaction controller.
type State uint8

const (
	Idle State = iota
	// Picking: an entity was hit on press; a drag moves its nearest vertex,
	// a release commits.
	Picking
	DrawingLine
	DrawingRegion
	Cutting
	LassoSelecting
	DraggingVertex
	DraggingMultiple
)

var stateNames = [...]string{"idle", "picking", "drawing-line", "drawing-region", "cutting", "lasso", "dragging-vertex", "dragging-multiple"}

func (s State) String() string {
	if int(s) < len(stateNames) {
		return stateNames[s]
	}
	return "unknown"
}

// Button is a pointer button.
type Button uint8

const (
	LeftButton Button = iota
	RightButton
)

// PointerEvent is a pointer event in model coordinates.
type PointerEvent struct {
	Point  vector.Pt
	Button Button
	Shift  bool
	Ctrl   bool
}

// Key is a keyboard key the editor reacts to.
type Key uint8

const (
	KeyOther Key = iota
	KeyEscape
	KeyDelete
	KeyC
	KeyM
	KeyR
	KeyA
)

// KeyEvent is a key release.
type KeyEvent struct {
	Key  Key
	Ctrl bool
}

// gesture holds the in-flight multi-step interaction. Only one exists at a
// time.
type gesture struct {
	state  State
	last   vector.Pt
	origin vector.Pt

	line       *Line
	dragAppend bool
	region     *Region
	resized    bool

	target Entity
	path   vector.Handle
	vertex int
	moved  bool

	helper      vector.Handle
	markers     []vector.Handle
	lassoLines  []*Line
	lassoAll    bool
	lassoMarked map[SegmentRef]bool
}

// State returns the current tool state.
func (e *Editor) State() State { return e.g.state }

// Cursor hints the pointer shape for the host.
func (e *Editor) Cursor() string {
	switch e.g.state {
	case DraggingVertex, DraggingMultiple:
		return "move"
	case Picking:
		return "grab"
	}
	if e.cutting {
		return "crosshair"
	}
	return "copy"
}

// HoverCursor returns the cursor for a pointer resting at p while idle.
func (e *Editor) HoverCursor(p vector.Pt) string {
	if e.g.state != Idle {
		return e.Cursor()
	}
	if ent, _, _ := e.pick(p); ent != nil {
		if ent.Selected() {
			return "grab"
		}
		return "pointer"
	}
	return e.Cursor()
}

func (e *Editor) pickTolerance() float64 { return e.opts.HitTolerance / 4 }

// pick finds the topmost entity of the current mode under p, the hit path
// and the vertex within hit tolerance (-1 when none).
func (e *Editor) pick(p vector.Pt) (Entity, vector.Handle, int) {
	s := e.surface
	tol := e.pickTolerance()
	if e.mode == RegionsMode {
		for i := len(e.regions) - 1; i >= 0; i-- {
			r := e.regions[i]
			if s.HitPath(r.path, p, tol) {
				return r, r.path, s.HitPoint(r.path, p, e.opts.HitTolerance)
			}
		}
		return nil, 0, -1
	}
	for i := len(e.lines) - 1; i >= 0; i-- {
		l := e.lines[i]
		if l.baselinePath != 0 && s.HitPath(l.baselinePath, p, tol) {
			return l, l.baselinePath, s.HitPoint(l.baselinePath, p, e.opts.HitTolerance)
		}
	}
	for i := len(e.lines) - 1; i >= 0; i-- {
		l := e.lines[i]
		if l.maskPath != 0 && s.HitPath(l.maskPath, p, tol) {
			return l, l.maskPath, s.HitPoint(l.maskPath, p, e.opts.HitTolerance)
		}
	}
	return nil, 0, -1
}

// nearestVertex returns the vertex of h closest to p along the path.
func (e *Editor) nearestVertex(h vector.Handle, p vector.Pt) int {
	loc := e.surface.NearestLocation(h, p)
	if loc.Index < 0 {
		return -1
	}
	if loc.T < 0.5 {
		return loc.Index
	}
	return (loc.Index + 1) % len(e.surface.Points(h))
}

// MouseDown handles a button press.
func (e *Editor) MouseDown(ev PointerEvent) {
	defer func() { e.g.last = ev.Point }()
	switch e.g.state {
	case Idle:
		e.pressIdle(ev)
	case DrawingLine:
		if ev.Button == RightButton {
			e.extendLine(ev.Point)
			return
		}
		e.finishLine()
	case DrawingRegion:
		e.finishRegion()
	}
}

func (e *Editor) pressIdle(ev PointerEvent) {
	if ev.Button == RightButton {
		return
	}
	if !ev.Ctrl {
		if ent, h, vi := e.pick(ev.Point); ent != nil {
			e.pressEntity(ev, ent, h, vi)
			return
		}
	}
	switch {
	case ev.Ctrl:
		// reserved for multi-move drags
	case e.cutting:
		e.startCut(ev.Point)
	case e.mode == RegionsMode:
		e.startRegion(ev.Point)
	case ev.Shift:
		e.startLasso(ev.Point)
	case e.hasSelection():
		e.PurgeSelection(nil)
	default:
		e.startLine(ev.Point)
	}
}

func (e *Editor) pressEntity(ev PointerEvent, ent Entity, h vector.Handle, vi int) {
	if vi >= 0 {
		e.ToggleSelection(SegmentRef{Path: h, Index: vi})
	}
	if ev.Shift {
		ent.ToggleSelect()
		e.emit(Event{Type: EventSelection, Target: ent, Selection: e.Selection()})
		e.startLasso(ev.Point)
		e.g.target = ent
		return
	}
	ent.Select()
	e.PurgeSelection(ent)
	e.emit(Event{Type: EventSelection, Target: ent, Selection: e.Selection()})
	e.g = gesture{state: Picking, origin: ev.Point, target: ent, path: h, vertex: e.nearestVertex(h, ev.Point)}
	e.log.Debug("picked", "kind", ent.Kind().String(), "id", ent.ID(), "vertex", e.g.vertex)
}

// MouseMove handles pointer motion without a pressed button.
func (e *Editor) MouseMove(ev PointerEvent) {
	defer func() { e.g.last = ev.Point }()
	switch e.g.state {
	case DrawingLine:
		if e.g.dragAppend {
			return
		}
		pts := e.surface.Points(e.g.line.baselinePath)
		e.surface.MovePoint(e.g.line.baselinePath, len(pts)-1, e.clamp(ev.Point))
		e.g.line.showDirection()
		e.g.line.highlight(true)
	case DrawingRegion:
		e.resizeRegion(ev.Point)
	}
}

// MouseDrag handles pointer motion with a pressed button.
func (e *Editor) MouseDrag(ev PointerEvent) {
	delta := ev.Point.Sub(e.g.last)
	defer func() { e.g.last = ev.Point }()
	switch e.g.state {
	case Idle:
		if ev.Ctrl && e.hasSelection() {
			e.g = gesture{state: DraggingMultiple}
			e.multiMove(delta)
		}
	case Picking:
		switch {
		case ev.Ctrl:
			e.g.state = DraggingMultiple
			e.multiMove(delta)
		case ev.Shift:
		default:
			e.g.state = DraggingVertex
			e.dragVertex(delta)
		}
	case DraggingVertex:
		if !ev.Shift {
			e.dragVertex(delta)
		}
	case DraggingMultiple:
		e.multiMove(delta)
	case DrawingLine:
		e.g.dragAppend = true
		e.extendLine(ev.Point)
	case DrawingRegion:
		e.g.resized = true
		e.resizeRegion(ev.Point)
	case Cutting:
		e.updateHelper(ev.Point)
		e.previewCut()
	case LassoSelecting:
		e.updateHelper(ev.Point)
		e.lassoSelect()
	}
}

// MouseUp handles a button release.
func (e *Editor) MouseUp(ev PointerEvent) {
	defer func() { e.g.last = ev.Point }()
	switch e.g.state {
	case Picking, DraggingVertex:
		target := e.g.target
		e.g = gesture{}
		if target != nil {
			if l, ok := target.(*Line); ok {
				l.refresh()
			}
			target.UpdateFromSurface()
		}
	case DraggingMultiple:
		e.g = gesture{}
		for _, ent := range e.movedEntities() {
			if l, ok := ent.(*Line); ok {
				l.refresh()
			}
			ent.UpdateFromSurface()
		}
	case DrawingLine:
		if e.g.dragAppend {
			h := e.g.line.baselinePath
			e.surface.SetPoints(h, vector.Simplify(e.surface.Points(h), e.opts.SimplifyTolerance))
			e.finishLine()
		}
	case DrawingRegion:
		if e.g.resized {
			e.finishRegion()
		}
	case Cutting:
		cut := e.g.helper
		e.SplitByPath(cut)
		e.clearHelpers()
		e.g = gesture{}
	case LassoSelecting:
		target := e.g.target
		e.clearHelpers()
		e.g = gesture{}
		e.emit(Event{Type: EventSelection, Target: target, Selection: e.Selection()})
	}
}

// DoubleClick inserts a vertex into the hit path of the current mode.
func (e *Editor) DoubleClick(ev PointerEvent) {
	if ev.Ctrl || e.g.state != Idle {
		return
	}
	ent, h, _ := e.pick(ev.Point)
	if ent == nil {
		return
	}
	if l, ok := ent.(*Line); ok && h != l.baselinePath {
		return
	}
	e.InsertVertex(ent, ev.Point)
}

// KeyUp handles a key release. Escape always cancels an in-flight gesture;
// the other shortcuts honor DisableBindings.
func (e *Editor) KeyUp(k KeyEvent) {
	if k.Key == KeyEscape && e.g.state != Idle {
		e.cancelGesture()
	}
	if e.opts.DisableBindings {
		return
	}
	idle := e.g.state == Idle
	switch k.Key {
	case KeyEscape:
		e.PurgeSelection(nil)
	case KeyDelete:
		if !idle {
			return
		}
		if k.Ctrl {
			e.DeleteSelectedSegments()
		} else {
			e.DeleteSelection()
		}
	case KeyC:
		if idle {
			e.ToggleCutting()
		}
	case KeyM:
		e.ToggleMasks(false)
	case KeyR:
		if idle {
			e.ToggleRegionMode()
		}
	case KeyA:
		if k.Ctrl && idle {
			e.SelectAll()
		}
	}
}

// cancelGesture rolls back the in-flight gesture and returns to Idle.
func (e *Editor) cancelGesture() {
	g := e.g
	switch g.state {
	case DrawingLine:
		g.line.Remove()
	case DrawingRegion:
		g.region.Remove()
	case Cutting:
		e.clearHelpers()
	case LassoSelecting:
		e.clearHelpers()
		e.PurgeSelection(nil)
	case Picking, DraggingVertex:
		switch t := g.target.(type) {
		case *Line:
			t.rollback()
		case *Region:
			t.rollback()
		}
	case DraggingMultiple:
		for _, ent := range e.movedEntities() {
			switch t := ent.(type) {
			case *Line:
				t.rollback()
			case *Region:
				t.rollback()
			}
		}
	}
	if g.state != Idle {
		e.log.Debug("gesture cancelled", "state", g.state.String())
	}
	e.g = gesture{last: g.last}
}

func (e *Editor) startLine(p vector.Pt) {
	e.PurgeSelection(nil)
	p = e.clamp(p)
	l := e.newLine(nil, []vector.Pt{p, p}, nil, nil)
	e.g = gesture{state: DrawingLine, origin: p, line: l}
	e.log.Debug("drawing line", "id", l.id)
}

func (e *Editor) extendLine(p vector.Pt) {
	l := e.g.line
	pts := e.surface.Points(l.baselinePath)
	e.surface.InsertPoint(l.baselinePath, len(pts), e.clamp(p))
	l.showDirection()
}

// finishLine commits the drawn line, or drops it silently when it is
// shorter than the length threshold.
func (e *Editor) finishLine() {
	l := e.g.line
	e.g = gesture{last: e.g.last}
	l.normalize()
	if e.surface.Length(l.baselinePath) < e.opts.LengthThreshold {
		e.log.Debug("line pruned below length threshold", "id", l.id)
		l.Remove()
		return
	}
	if e.opts.AutoMask && !l.HasMask() {
		l.setMaskPoints(l.maskFromBaseline())
	}
	l.refresh()
	l.UpdateFromSurface()
	l.highlight(false)
}

func (e *Editor) startRegion(p vector.Pt) {
	e.PurgeSelection(nil)
	p = e.clamp(p)
	box := []vector.Pt{p, {X: p.X, Y: p.Y + 1}, {X: p.X + 1, Y: p.Y + 1}, {X: p.X + 1, Y: p.Y}}
	r := e.newRegion(nil, box, nil)
	e.g = gesture{state: DrawingRegion, origin: p, region: r}
}

// resizeRegion keeps the box axis-aligned between the origin and p.
func (e *Editor) resizeRegion(p vector.Pt) {
	o, p := e.g.origin, e.clamp(p)
	e.surface.SetPoints(e.g.region.path, []vector.Pt{o, {X: o.X, Y: p.Y}, p, {X: p.X, Y: o.Y}})
}

// finishRegion commits the drawn box, or drops it silently when a straight
// drag left it without area.
func (e *Editor) finishRegion() {
	r := e.g.region
	e.g = gesture{last: e.g.last}
	if !committable(e.surface.Points(r.path)) {
		e.log.Debug("region pruned: box without area", "id", r.id)
		r.Remove()
		return
	}
	r.UpdateFromSurface()
}

func (e *Editor) startHelper(p vector.Pt) {
	e.g.origin = p
	e.g.helper = e.surface.CreatePath(vector.R(p.X, p.Y, 1, 1).Corners(), true, e.helperStyle())
}

func (e *Editor) updateHelper(p vector.Pt) {
	e.surface.SetPoints(e.g.helper, e.helperRect(p).Corners())
}

func (e *Editor) helperRect(p vector.Pt) vector.Rect {
	o := e.g.origin
	return vector.R(math.Min(o.X, p.X), math.Min(o.Y, p.Y), math.Max(1, math.Abs(o.X-p.X)), math.Max(1, math.Abs(o.Y-p.Y)))
}

func (e *Editor) clearHelpers() {
	for _, m := range e.g.markers {
		e.surface.Remove(m)
	}
	e.g.markers = nil
	if e.g.helper != 0 {
		e.surface.Remove(e.g.helper)
		e.g.helper = 0
	}
}

func (e *Editor) startCut(p vector.Pt) {
	e.g = gesture{state: Cutting}
	e.startHelper(p)
}

// previewCut marks every crossing of a baseline with the cut rectangle and
// draws the part that would be removed.
func (e *Editor) previewCut() {
	for _, m := range e.g.markers {
		e.surface.Remove(m)
	}
	e.g.markers = e.g.markers[:0]
	r := 5 / e.opts.Scale
	for _, l := range e.lines {
		if !l.HasBaseline() {
			continue
		}
		locs := e.surface.Intersections(l.baselinePath, e.g.helper)
		if len(locs) == 0 {
			continue
		}
		type mark struct {
			off float64
			p   vector.Pt
		}
		var preview []mark
		for _, loc := range locs {
			e.g.markers = append(e.g.markers, e.surface.CreatePath(vector.Circle(loc.Point, r, 16), true, e.markerStyle()))
			preview = append(preview, mark{loc.Offset, loc.Point})
		}
		pts := e.surface.Points(l.baselinePath)
		for i, p := range pts {
			if e.surface.Contains(e.g.helper, p) {
				preview = append(preview, mark{vector.VertexLocation(pts, false, i).Offset, p})
			}
		}
		slices.SortFunc(preview, func(a, b mark) int {
			switch {
			case a.off < b.off:
				return -1
			case a.off > b.off:
				return 1
			}
			return 0
		})
		seg := make([]vector.Pt, len(preview))
		for i, m := range preview {
			seg[i] = m.p
		}
		st := e.markerStyle()
		st.Fill.Enabled = false
		h := e.surface.CreatePath(seg, false, st)
		e.surface.BringToFront(h)
		e.g.markers = append(e.g.markers, h)
	}
}

func (e *Editor) startLasso(p vector.Pt) {
	all := slices.Clone(e.sel.lines)
	lassoAll := len(all) == 0
	if lassoAll {
		all = slices.Clone(e.lines)
	}
	e.g = gesture{state: LassoSelecting, lassoLines: all, lassoAll: lassoAll, lassoMarked: map[SegmentRef]bool{}}
	e.startHelper(p)
}

// lassoSelect selects every vertex inside the lasso rectangle and every line
// whose baseline touches it. Vertices selected by this lasso are released
// again once the rectangle no longer covers them.
func (e *Editor) lassoSelect() {
	s := e.surface
	rect := vector.Bounds(s.Points(e.g.helper))
	for _, l := range e.g.lassoLines {
		if !slices.Contains(e.lines, l) {
			continue
		}
		var hs []vector.Handle
		if l.baselinePath != 0 {
			hs = append(hs, l.baselinePath)
		}
		if l.maskPath != 0 && (e.showMasks || l.baselinePath == 0) {
			hs = append(hs, l.maskPath)
		}
		for _, h := range hs {
			for i, p := range s.Points(h) {
				ref := SegmentRef{Path: h, Index: i}
				if rect.Contains(p) {
					e.addSegment(ref)
					e.g.lassoMarked[ref] = true
				} else if e.g.lassoMarked[ref] {
					delete(e.g.lassoMarked, ref)
					e.removeSegment(ref)
				}
			}
		}
		if e.lassoTouches(l, rect) {
			l.Select()
		} else if e.g.lassoAll {
			l.Unselect()
		}
	}
}

func (e *Editor) lassoTouches(l *Line, rect vector.Rect) bool {
	h := l.baselinePath
	if h == 0 {
		h = l.maskPath
	}
	if h == 0 {
		return false
	}
	if len(e.surface.Intersections(h, e.g.helper)) > 0 {
		return true
	}
	pts := e.surface.Points(h)
	return len(pts) > 0 && !slices.ContainsFunc(pts, func(p vector.Pt) bool { return !rect.Contains(p) })
}

// dragVertex moves the picked vertex; for a baseline the line is refreshed
// live.
func (e *Editor) dragVertex(delta vector.Pt) {
	g := &e.g
	pts := e.surface.Points(g.path)
	if g.vertex < 0 || g.vertex >= len(pts) {
		return
	}
	e.surface.MovePoint(g.path, g.vertex, e.clamp(pts[g.vertex].Add(delta)))
	g.moved = true
	if l, ok := g.target.(*Line); ok && g.path == l.baselinePath {
		l.refresh()
	}
}

// multiMove moves the selected vertices, or the selected lines as a whole
// when no vertex is selected. Whole lines are moved with a delta clamped so
// that their bounds stay inside the image.
func (e *Editor) multiMove(delta vector.Pt) {
	s := e.surface
	if len(e.sel.segments) > 0 {
		for _, ref := range e.sel.segments {
			pts := s.Points(ref.Path)
			if ref.Index >= 0 && ref.Index < len(pts) {
				s.MovePoint(ref.Path, ref.Index, e.clamp(pts[ref.Index].Add(delta)))
			}
		}
		for _, l := range e.sel.lines {
			l.refresh()
		}
		return
	}
	for _, l := range e.sel.lines {
		hs := l.paths()
		var pts []vector.Pt
		for _, h := range hs {
			pts = append(pts, s.Points(h)...)
		}
		if len(pts) == 0 {
			continue
		}
		d := e.clampDelta(vector.Bounds(pts), delta)
		for _, h := range hs {
			s.SetPoints(h, vector.TranslatePts(s.Points(h), d))
		}
		l.refresh()
	}
}

// movedEntities lists the selected lines followed by the owners of selected
// vertices that are not already listed.
func (e *Editor) movedEntities() []Entity {
	var out []Entity
	for _, l := range e.sel.lines {
		out = append(out, l)
	}
	for _, ref := range e.sel.segments {
		if o := e.ownerOf(ref.Path); o != nil && !slices.Contains(out, o) {
			out = append(out, o)
		}
	}
	return out
}

func (e *Editor) clampDelta(b vector.Rect, d vector.Pt) vector.Pt {
	lo := e.clamp(b.Min().Add(d))
	hi := e.clamp(b.Max().Add(d))
	if lo.X != b.X+d.X {
		d.X = lo.X - b.X
	} else if hi.X != b.X+b.W+d.X {
		d.X = hi.X - b.X - b.W
	}
	if lo.Y != b.Y+d.Y {
		d.Y = lo.Y - b.Y
	} else if hi.Y != b.Y+b.H+d.Y {
		d.Y = hi.Y - b.Y - b.H
	}
	return d
}
