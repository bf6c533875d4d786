/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import "strconv"

// Handle identifies a node in a Scene. Zero is never a valid handle.
type Handle uint64

func (h Handle) String() string { return "node#" + strconv.FormatUint(uint64(h), 10) }

// Scene is an in-memory scene graph of editable paths and badges, kept in
// z-order. It is the editor's default drawing surface and the input of the
// exporters. A Scene is not safe for concurrent use.
type Scene struct {
	next  Handle
	nodes map[Handle]Node
	order []Handle
}

func NewScene() *Scene {
	return &Scene{nodes: map[Handle]Node{}}
}

func (s *Scene) add(n Node) Handle {
	s.next++
	s.nodes[s.next] = n
	s.order = append(s.order, s.next)
	return s.next
}

// CreatePath adds a polyline (or closed polygon) on top of the scene.
func (s *Scene) CreatePath(pts []Pt, closed bool, st Style) Handle {
	return s.add(NewPath(pts, closed, st))
}

// CreateBadge adds a labeled circle on top of the scene.
func (s *Scene) CreateBadge(at Pt, radius float64, label string, st Style) Handle {
	return s.add(NewBadge(at, radius, label, st))
}

func (s *Scene) Remove(h Handle) {
	if _, ok := s.nodes[h]; !ok {
		return
	}
	delete(s.nodes, h)
	for i, o := range s.order {
		if o == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Scene) Exists(h Handle) bool {
	_, ok := s.nodes[h]
	return ok
}

// Len returns the number of nodes.
func (s *Scene) Len() int { return len(s.nodes) }

// Node returns the node behind h, or nil.
func (s *Scene) Node(h Handle) Node { return s.nodes[h] }

// Walk visits nodes bottom to top.
func (s *Scene) Walk(fn func(h Handle, n Node)) {
	for _, h := range append([]Handle(nil), s.order...) {
		if n, ok := s.nodes[h]; ok {
			fn(h, n)
		}
	}
}

func (s *Scene) path(h Handle) *PathNode {
	n, _ := s.nodes[h].(*PathNode)
	return n
}

func (s *Scene) Points(h Handle) []Pt {
	if n := s.path(h); n != nil {
		return n.Points()
	}
	return nil
}

func (s *Scene) SetPoints(h Handle, pts []Pt) {
	if n := s.path(h); n != nil {
		n.SetPoints(pts)
	}
}

func (s *Scene) Closed(h Handle) bool {
	if n := s.path(h); n != nil {
		return n.closed
	}
	return false
}

// MovePoint sets vertex i of path h.
func (s *Scene) MovePoint(h Handle, i int, p Pt) {
	if n := s.path(h); n != nil && i >= 0 && i < len(n.pts) {
		n.pts[i] = p
	}
}

// InsertPoint inserts p before index i (i == len appends).
func (s *Scene) InsertPoint(h Handle, i int, p Pt) {
	n := s.path(h)
	if n == nil || i < 0 || i > len(n.pts) {
		return
	}
	n.pts = append(n.pts[:i], append([]Pt{p}, n.pts[i:]...)...)
	n.ptSel = append(n.ptSel[:i], append([]bool{false}, n.ptSel[i:]...)...)
}

// RemovePoint deletes vertex i.
func (s *Scene) RemovePoint(h Handle, i int) {
	n := s.path(h)
	if n == nil || i < 0 || i >= len(n.pts) {
		return
	}
	n.pts = append(n.pts[:i], n.pts[i+1:]...)
	n.ptSel = append(n.ptSel[:i], n.ptSel[i+1:]...)
}

// SetBadge moves and relabels a badge.
func (s *Scene) SetBadge(h Handle, at Pt, label string) {
	if n, ok := s.nodes[h].(*BadgeNode); ok {
		n.At = at
		n.Label = label
	}
}

func (s *Scene) Style(h Handle) Style {
	if n, ok := s.nodes[h]; ok {
		return n.Style()
	}
	return Style{}
}

func (s *Scene) SetStyle(h Handle, st Style) {
	if n, ok := s.nodes[h]; ok {
		n.SetStyle(st)
	}
}

func (s *Scene) Visible(h Handle) bool {
	if n, ok := s.nodes[h]; ok {
		return n.Visible()
	}
	return false
}

func (s *Scene) SetVisible(h Handle, v bool) {
	if n, ok := s.nodes[h]; ok {
		n.SetVisible(v)
	}
}

// SetSelected flags the whole path as selected; deselecting also clears the
// vertex flags.
func (s *Scene) SetSelected(h Handle, v bool) {
	n := s.path(h)
	if n == nil {
		return
	}
	n.selected = v
	if !v {
		for i := range n.ptSel {
			n.ptSel[i] = false
		}
	}
}

func (s *Scene) Selected(h Handle) bool {
	if n := s.path(h); n != nil {
		return n.selected
	}
	return false
}

func (s *Scene) SetPointSelected(h Handle, i int, v bool) {
	if n := s.path(h); n != nil && i >= 0 && i < len(n.ptSel) {
		n.ptSel[i] = v
	}
}

func (s *Scene) PointSelected(h Handle, i int) bool {
	if n := s.path(h); n != nil {
		return n.PointSelected(i)
	}
	return false
}

func (s *Scene) BringToFront(h Handle) {
	if !s.Exists(h) {
		return
	}
	s.unorder(h)
	s.order = append(s.order, h)
}

func (s *Scene) SendToBack(h Handle) {
	if !s.Exists(h) {
		return
	}
	s.unorder(h)
	s.order = append([]Handle{h}, s.order...)
}

// unorder drops h from the z-order list only.
func (s *Scene) unorder(h Handle) {
	for i, o := range s.order {
		if o == h {
			s.order = append(s.order[:i], s.order[i+1:]...)
			return
		}
	}
}

// ZIndex returns the position of h in the z-order, or -1.
func (s *Scene) ZIndex(h Handle) int {
	for i, o := range s.order {
		if o == h {
			return i
		}
	}
	return -1
}

// HitPath reports whether p hits the visible node h.
func (s *Scene) HitPath(h Handle, p Pt, tol float64) bool {
	n, ok := s.nodes[h]
	return ok && n.Visible() && n.Hit(p, tol)
}

// HitPoint returns the vertex of path h within tol of p, or -1.
func (s *Scene) HitPoint(h Handle, p Pt, tol float64) int {
	if n := s.path(h); n != nil && n.Visible() {
		return n.HitPoint(p, tol)
	}
	return -1
}

func (s *Scene) NearestLocation(h Handle, p Pt) Location {
	if n := s.path(h); n != nil {
		return NearestLocation(n.pts, n.closed, p)
	}
	return Location{Index: -1}
}

// Intersections returns the crossings of a with b, as locations on a.
func (s *Scene) Intersections(a, b Handle) []Location {
	na, nb := s.path(a), s.path(b)
	if na == nil || nb == nil {
		return nil
	}
	return Intersections(na.pts, na.closed, nb.pts, nb.closed)
}

// NormalAt returns the unit normal of path h at loc.
func (s *Scene) NormalAt(h Handle, loc Location) Pt {
	if n := s.path(h); n != nil {
		return NormalAt(n.pts, n.closed, loc)
	}
	return Pt{}
}

// Contains reports whether the closed path h contains p.
func (s *Scene) Contains(h Handle, p Pt) bool {
	if n := s.path(h); n != nil && n.closed {
		return ContainsPoint(n.pts, p)
	}
	return false
}

func (s *Scene) Length(h Handle) float64 {
	if n := s.path(h); n != nil {
		return Length(n.pts, n.closed)
	}
	return 0
}

func (s *Scene) Bounds(h Handle) Rect {
	if n, ok := s.nodes[h]; ok {
		return n.Bounds()
	}
	return Rect{}
}
