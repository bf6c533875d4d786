/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"slices"

	"segmenter/internal/vector"
)

// Kind distinguishes the entity variants.
type Kind uint8

const (
	KindLine Kind = iota + 1
	KindRegion
)

func (k Kind) String() string {
	switch k {
	case KindLine:
		return "line"
	case KindRegion:
		return "region"
	}
	return "unknown"
}

// Entity is the capability shared by lines and regions.
type Entity interface {
	ID() int
	Kind() Kind
	Selected() bool
	Select()
	Unselect()
	ToggleSelect()
	// Remove drops the entity and its drawings without notification.
	Remove()
	// Delete removes the entity and emits a delete notification.
	Delete()
	// UpdateFromSurface re-reads geometry from the surface and reports
	// whether the committed geometry changed.
	UpdateFromSurface() bool
	// Context is the caller-supplied correlation map.
	Context() map[string]any
	paths() []vector.Handle
}

// SegmentRef identifies a single vertex of a surface path.
type SegmentRef struct {
	Path  vector.Handle
	Index int
}

// Selectable is a *Line, a *Region or a SegmentRef.
type Selectable interface{ selectable() }

func (*Line) selectable()      {}
func (*Region) selectable()    {}
func (SegmentRef) selectable() {}

// Menu is the visibility of the contextual actions.
type Menu struct {
	Visible         bool
	DeletePoint     bool
	DeleteSelection bool
	Reverse         bool
	Merge           bool
}

// Snapshot is a copy of the selection sets.
type Snapshot struct {
	Lines    []*Line
	Regions  []*Region
	Segments []SegmentRef
}

// Empty reports whether nothing is selected.
func (s Snapshot) Empty() bool {
	return len(s.Lines) == 0 && len(s.Regions) == 0 && len(s.Segments) == 0
}

type selection struct {
	lines    []*Line
	regions  []*Region
	segments []SegmentRef
	menu     Menu
}

// Selection returns a snapshot of the current selection.
func (e *Editor) Selection() Snapshot {
	return Snapshot{
		Lines:    slices.Clone(e.sel.lines),
		Regions:  slices.Clone(e.sel.regions),
		Segments: slices.Clone(e.sel.segments),
	}
}

// Menu returns the current contextual action visibility.
func (e *Editor) Menu() Menu { return e.sel.menu }

func (e *Editor) hasSelection() bool {
	return len(e.sel.lines) > 0 || len(e.sel.regions) > 0 || len(e.sel.segments) > 0
}

// AddToSelection selects an entity (with its visual highlight) or a vertex.
func (e *Editor) AddToSelection(s Selectable) {
	switch v := s.(type) {
	case *Line:
		v.Select()
	case *Region:
		v.Select()
	case SegmentRef:
		e.addSegment(v)
	}
}

// RemoveFromSelection is the mirror of AddToSelection.
func (e *Editor) RemoveFromSelection(s Selectable) {
	switch v := s.(type) {
	case *Line:
		v.Unselect()
	case *Region:
		v.Unselect()
	case SegmentRef:
		e.removeSegment(v)
	}
}

// ToggleSelection adds s when absent and removes it otherwise.
func (e *Editor) ToggleSelection(s Selectable) {
	if e.IsSelected(s) {
		e.RemoveFromSelection(s)
		return
	}
	e.AddToSelection(s)
}

// IsSelected reports membership of s in the selection.
func (e *Editor) IsSelected(s Selectable) bool {
	switch v := s.(type) {
	case *Line:
		return slices.Contains(e.sel.lines, v)
	case *Region:
		return slices.Contains(e.sel.regions, v)
	case SegmentRef:
		return slices.Contains(e.sel.segments, v)
	}
	return false
}

func (e *Editor) addLine(l *Line) {
	if !slices.ContainsFunc(e.sel.lines, func(o *Line) bool { return o.id == l.id }) {
		e.sel.lines = append(e.sel.lines, l)
	}
	e.updateMenu()
}

func (e *Editor) removeLine(l *Line) {
	e.sel.lines = slices.DeleteFunc(e.sel.lines, func(o *Line) bool { return o.id == l.id })
	e.updateMenu()
}

func (e *Editor) addRegion(r *Region) {
	if !slices.ContainsFunc(e.sel.regions, func(o *Region) bool { return o.id == r.id }) {
		e.sel.regions = append(e.sel.regions, r)
	}
	e.updateMenu()
}

func (e *Editor) removeRegion(r *Region) {
	e.sel.regions = slices.DeleteFunc(e.sel.regions, func(o *Region) bool { return o.id == r.id })
	e.updateMenu()
}

func (e *Editor) addSegment(ref SegmentRef) {
	if !slices.Contains(e.sel.segments, ref) {
		e.sel.segments = append(e.sel.segments, ref)
		e.surface.SetPointSelected(ref.Path, ref.Index, true)
	}
	e.updateMenu()
}

func (e *Editor) removeSegment(ref SegmentRef) {
	if i := slices.Index(e.sel.segments, ref); i >= 0 {
		e.sel.segments = slices.Delete(e.sel.segments, i, i+1)
		e.surface.SetPointSelected(ref.Path, ref.Index, false)
	}
	e.updateMenu()
}

// removeSegmentsOf drops every vertex reference into path h.
func (e *Editor) removeSegmentsOf(h vector.Handle) {
	for i := len(e.sel.segments) - 1; i >= 0; i-- {
		if e.sel.segments[i].Path == h {
			e.removeSegment(e.sel.segments[i])
		}
	}
}

func (e *Editor) staleSegment(ref SegmentRef) bool {
	return !e.surface.Exists(ref.Path) || ref.Index < 0 || ref.Index >= len(e.surface.Points(ref.Path))
}

// PurgeSelection unselects everything except the optional entity, and drops
// vertex references whose path no longer exists.
func (e *Editor) PurgeSelection(except Entity) {
	for i := len(e.sel.lines) - 1; i >= 0; i-- {
		if l := e.sel.lines[i]; except == nil || Entity(l) != except {
			l.Unselect()
		}
	}
	for i := len(e.sel.regions) - 1; i >= 0; i-- {
		if r := e.sel.regions[i]; except == nil || Entity(r) != except {
			r.Unselect()
		}
	}
	var keep []vector.Handle
	if except != nil {
		keep = except.paths()
	}
	for i := len(e.sel.segments) - 1; i >= 0; i-- {
		ref := e.sel.segments[i]
		switch {
		case e.staleSegment(ref):
			e.log.Warn("dropping stale vertex reference", "path", ref.Path.String(), "index", ref.Index)
			e.sel.segments = slices.Delete(e.sel.segments, i, i+1)
		case !slices.Contains(keep, ref.Path):
			e.removeSegment(ref)
		}
	}
	e.updateMenu()
}

func (e *Editor) updateMenu() {
	m := Menu{Visible: e.hasSelection()}
	if m.Visible {
		m.DeletePoint = len(e.sel.segments) > 0
		m.DeleteSelection = len(e.sel.lines) > 0
		m.Reverse = len(e.sel.lines) > 0
		m.Merge = len(e.sel.lines) > 1 && !slices.ContainsFunc(e.sel.lines, func(l *Line) bool { return !l.HasBaseline() })
	}
	e.sel.menu = m
}
