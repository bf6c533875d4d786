/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Path commands consumed by the exporters.

import "math"

type PathOp uint8

const (
	MoveTo PathOp = iota
	LineTo
	Close
)

type PathCmd struct {
	Op PathOp
	Pt Pt
}

type Path struct{ Cmds []PathCmd }

func (p *Path) MoveTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: MoveTo, Pt: Pt{x, y}}) }
func (p *Path) LineTo(x, y float64) { p.Cmds = append(p.Cmds, PathCmd{Op: LineTo, Pt: Pt{x, y}}) }
func (p *Path) Close()              { p.Cmds = append(p.Cmds, PathCmd{Op: Close}) }

// PolylinePath builds the command list for a polyline or polygon.
func PolylinePath(pts []Pt, closed bool) Path {
	var p Path
	for i, q := range pts {
		if i == 0 {
			p.MoveTo(q.X, q.Y)
			continue
		}
		p.LineTo(q.X, q.Y)
	}
	if closed && len(pts) > 2 {
		p.Close()
	}
	return p
}

// StrokeOutline returns the closed outline of a polyline stroked with the
// given width: one quad per segment. Rasterizers without a stroker fill
// these with the non-zero rule.
func StrokeOutline(pts []Pt, closed bool, width float64) []Path {
	var out []Path
	h := width / 2
	for i := 0; i < segCount(pts, closed); i++ {
		a, b := seg(pts, i)
		v := b.Sub(a)
		if v.Len() == 0 {
			continue
		}
		n := v.Perp().WithLength(h)
		var q Path
		q.MoveTo(a.X+n.X, a.Y+n.Y)
		q.LineTo(b.X+n.X, b.Y+n.Y)
		q.LineTo(b.X-n.X, b.Y-n.Y)
		q.LineTo(a.X-n.X, a.Y-n.Y)
		q.Close()
		out = append(out, q)
	}
	return out
}

// Circle approximates a circle with a polygon of the given segment count.
func Circle(c Pt, r float64, segments int) []Pt {
	if segments < 3 {
		segments = 3
	}
	out := make([]Pt, segments)
	for i := range out {
		a := 2 * math.Pi * float64(i) / float64(segments)
		out[i] = Pt{X: c.X + r*math.Cos(a), Y: c.Y + r*math.Sin(a)}
	}
	return out
}

// Bounds returns the axis-aligned bounding box of the path.
func (p *Path) Bounds() Rect {
	var pts []Pt
	for _, c := range p.Cmds {
		if c.Op != Close {
			pts = append(pts, c.Pt)
		}
	}
	return Bounds(pts)
}
