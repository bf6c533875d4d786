/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "segmenter/internal/vector"

// Region is a closed polygon delineating a zone of the page.
type Region struct {
	ed       *Editor
	id       int
	order    *int
	polygon  []vector.Pt
	ctx      map[string]any
	selected bool
	path     vector.Handle
}

func (r *Region) ID() int                 { return r.id }
func (r *Region) Kind() Kind              { return KindRegion }
func (r *Region) Selected() bool          { return r.selected }
func (r *Region) Context() map[string]any { return r.ctx }
func (r *Region) Path() vector.Handle     { return r.path }

// Order returns the positional hint carried by the payload, if any.
func (r *Region) Order() (int, bool) {
	if r.order == nil {
		return 0, false
	}
	return *r.order, true
}

// Polygon returns the committed polygon.
func (r *Region) Polygon() []vector.Pt { return vector.Clone(r.polygon) }

func (r *Region) Geometry() Geometry { return Geometry{Polygon: toPolyline(r.polygon)} }

func (r *Region) paths() []vector.Handle {
	if r.path == 0 {
		return nil
	}
	return []vector.Handle{r.path}
}

func (r *Region) Select() {
	if r.selected {
		return
	}
	r.ed.surface.SetSelected(r.path, true)
	r.ed.surface.BringToFront(r.path)
	r.ed.addRegion(r)
	r.selected = true
}

func (r *Region) Unselect() {
	if !r.selected {
		return
	}
	r.ed.removeSegmentsOf(r.path)
	r.ed.surface.SetSelected(r.path, false)
	r.ed.removeRegion(r)
	r.selected = false
}

func (r *Region) ToggleSelect() {
	if r.selected {
		r.Unselect()
	} else {
		r.Select()
	}
}

func (r *Region) Remove() {
	r.Unselect()
	if r.path != 0 {
		r.ed.surface.Remove(r.path)
		r.path = 0
	}
	r.ed.dropRegion(r)
}

func (r *Region) Delete() {
	prev := r.Geometry()
	r.Remove()
	r.ed.emit(Event{Type: EventDeleteRegion, Regions: []*Region{r}, Previous: []Geometry{prev}, Target: r})
}

// UpdateFromSurface commits the live polygon. A polygon reduced below three
// points or to zero area is refused and the surface rolled back.
func (r *Region) UpdateFromSurface() bool {
	pts := r.ed.surface.Points(r.path)
	if !committable(pts) {
		r.ed.log.Debug("region not committed: degenerate polygon", "id", r.id)
		r.rollback()
		return false
	}
	prev := r.polygon
	r.polygon = vector.Reduce(vector.RoundAll(pts), true)
	r.ed.surface.SetPoints(r.path, r.polygon)
	if prev != nil && vector.Equal(prev, r.polygon) {
		return false
	}
	r.ed.emit(Event{Type: EventUpdate, Regions: []*Region{r}, Previous: []Geometry{{Polygon: toPolyline(prev)}}, Target: r})
	return true
}

// committable reports whether a region polygon keeps three points and some
// area once rounded.
func committable(pts []vector.Pt) bool {
	pts = vector.Reduce(vector.RoundAll(pts), true)
	return len(pts) >= 3 && vector.Area(pts) > 0
}

func (r *Region) rollback() {
	if r.polygon != nil {
		r.ed.surface.SetPoints(r.path, r.polygon)
	}
}

// restyle fills regions only while region mode is active.
func (r *Region) restyle() {
	r.ed.surface.SetStyle(r.path, r.ed.regionStyle())
}
