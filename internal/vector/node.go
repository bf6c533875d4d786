/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Node is a scene-graph item that can be rendered by different backends.
// It supports styling, visibility, bounds and tolerant hit-testing.

type Node interface {
	Bounds() Rect
	Style() Style
	SetStyle(Style)
	Visible() bool
	SetVisible(bool)
	Hit(p Pt, tol float64) bool
}

type baseNode struct {
	style  Style
	hidden bool
}

func (b *baseNode) Style() Style       { return b.style }
func (b *baseNode) SetStyle(s Style)   { b.style = s }
func (b *baseNode) Visible() bool      { return !b.hidden }
func (b *baseNode) SetVisible(v bool)  { b.hidden = !v }

// PathNode is an editable polyline or polygon with per-vertex selection.
type PathNode struct {
	baseNode
	pts      []Pt
	closed   bool
	selected bool
	ptSel    []bool
}

func NewPath(pts []Pt, closed bool, st Style) *PathNode {
	return &PathNode{baseNode: baseNode{style: st}, pts: Clone(pts), closed: closed, ptSel: make([]bool, len(pts))}
}

func (n *PathNode) Points() []Pt   { return Clone(n.pts) }
func (n *PathNode) Closed() bool   { return n.closed }
func (n *PathNode) Selected() bool { return n.selected }
func (n *PathNode) Bounds() Rect   { return Bounds(n.pts) }

// PointSelected reports the selection flag of vertex i.
func (n *PathNode) PointSelected(i int) bool {
	return i >= 0 && i < len(n.ptSel) && n.ptSel[i]
}

// SetPoints replaces the geometry. Vertex selection flags are kept for
// indices that still exist.
func (n *PathNode) SetPoints(pts []Pt) {
	n.pts = Clone(pts)
	sel := make([]bool, len(pts))
	copy(sel, n.ptSel)
	n.ptSel = sel
}

// Hit reports whether p is within tol of the outline, or inside a closed
// filled path.
func (n *PathNode) Hit(p Pt, tol float64) bool {
	if len(n.pts) == 0 {
		return false
	}
	if n.closed && n.style.Fill.Enabled && ContainsPoint(n.pts, p) {
		return true
	}
	loc := NearestLocation(n.pts, n.closed, p)
	return loc.Point.Dist(p) <= tol
}

// HitPoint returns the index of the vertex nearest to p within tol, or -1.
func (n *PathNode) HitPoint(p Pt, tol float64) int {
	best, bestD := -1, tol
	for i, q := range n.pts {
		if d := q.Dist(p); d <= bestD {
			best, bestD = i, d
		}
	}
	return best
}

// BadgeNode draws a filled circle with a centered text label.
type BadgeNode struct {
	baseNode
	At     Pt
	Radius float64
	Label  string
}

func NewBadge(at Pt, radius float64, label string, st Style) *BadgeNode {
	return &BadgeNode{baseNode: baseNode{style: st}, At: at, Radius: radius, Label: label}
}

func (n *BadgeNode) Bounds() Rect {
	return Rect{X: n.At.X - n.Radius, Y: n.At.Y - n.Radius, W: 2 * n.Radius, H: 2 * n.Radius}
}

func (n *BadgeNode) Hit(p Pt, tol float64) bool {
	return p.Dist(n.At) <= n.Radius+tol
}
