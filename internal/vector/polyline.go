/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Parametric polyline algorithms on plain point slices. An open polyline has
// len(pts)-1 segments, a closed polygon len(pts) (the last point connects back
// to the first; the first point is not repeated). Polygon area, containment
// and boolean operations live in polygon.go.

import (
	"math"
	"sort"
)

const eps = 1e-9

// Location is a position on a polyline: segment Index, parameter T in [0,1]
// along that segment, arc-length Offset from the first point and the Point.
type Location struct {
	Index  int
	T      float64
	Offset float64
	Point  Pt
}

func segCount(pts []Pt, closed bool) int {
	switch {
	case len(pts) < 2:
		return 0
	case closed:
		return len(pts)
	default:
		return len(pts) - 1
	}
}

func seg(pts []Pt, i int) (Pt, Pt) {
	return pts[i], pts[(i+1)%len(pts)]
}

// Length returns the total arc length.
func Length(pts []Pt, closed bool) float64 {
	var l float64
	for i := 0; i < segCount(pts, closed); i++ {
		a, b := seg(pts, i)
		l += a.Dist(b)
	}
	return l
}


// Bounds returns the bounding box of the points.
func Bounds(pts []Pt) Rect {
	if len(pts) == 0 {
		return Rect{}
	}
	minX, minY := pts[0].X, pts[0].Y
	maxX, maxY := minX, minY
	for _, p := range pts[1:] {
		minX = math.Min(minX, p.X)
		minY = math.Min(minY, p.Y)
		maxX = math.Max(maxX, p.X)
		maxY = math.Max(maxY, p.Y)
	}
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// segmentIntersection intersects p1p2 with q1q2. Parallel segments never
// intersect.
func segmentIntersection(p1, p2, q1, q2 Pt) (t, u float64, ok bool) {
	r := p2.Sub(p1)
	s := q2.Sub(q1)
	den := r.Cross(s)
	if math.Abs(den) < eps {
		return 0, 0, false
	}
	qp := q1.Sub(p1)
	t = qp.Cross(s) / den
	u = qp.Cross(r) / den
	if t < -eps || t > 1+eps || u < -eps || u > 1+eps {
		return 0, 0, false
	}
	return clamp01(t), clamp01(u), true
}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

// Intersections returns the locations on a where it crosses b, ordered by
// offset along a. Hits at shared vertices are reported once.
func Intersections(a []Pt, aClosed bool, b []Pt, bClosed bool) []Location {
	var out []Location
	var off float64
	for i := 0; i < segCount(a, aClosed); i++ {
		p1, p2 := seg(a, i)
		l := p1.Dist(p2)
		for j := 0; j < segCount(b, bClosed); j++ {
			q1, q2 := seg(b, j)
			t, _, ok := segmentIntersection(p1, p2, q1, q2)
			if !ok {
				continue
			}
			out = append(out, Location{Index: i, T: t, Offset: off + t*l, Point: p1.Add(p2.Sub(p1).Mul(t))})
		}
		off += l
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Offset < out[j].Offset })
	dedup := out[:0]
	for _, loc := range out {
		if n := len(dedup); n > 0 && dedup[n-1].Point.Near(loc.Point, 1e-6) {
			continue
		}
		dedup = append(dedup, loc)
	}
	return dedup
}

// PointAt returns the location at arc-length offset, clamped to the path.
func PointAt(pts []Pt, closed bool, offset float64) Location {
	n := segCount(pts, closed)
	if n == 0 {
		if len(pts) == 1 {
			return Location{Point: pts[0]}
		}
		return Location{}
	}
	var acc float64
	for i := 0; i < n; i++ {
		a, b := seg(pts, i)
		l := a.Dist(b)
		if offset <= acc+l || i == n-1 {
			t := 0.0
			if l > 0 {
				t = clamp01((offset - acc) / l)
			}
			return Location{Index: i, T: t, Offset: acc + t*l, Point: a.Add(b.Sub(a).Mul(t))}
		}
		acc += l
	}
	return Location{}
}

// TangentAt returns the unit tangent of the segment holding loc. Zero-length
// segments borrow the direction of the nearest non-degenerate one.
func TangentAt(pts []Pt, closed bool, loc Location) Pt {
	n := segCount(pts, closed)
	if n == 0 {
		return Pt{}
	}
	i := loc.Index
	if i < 0 {
		i = 0
	}
	if i >= n {
		i = n - 1
	}
	for d := 0; d < n; d++ {
		for _, k := range []int{i - d, i + d} {
			if k < 0 || k >= n {
				continue
			}
			a, b := seg(pts, k)
			if v := b.Sub(a); v.Len() > eps {
				return v.WithLength(1)
			}
		}
	}
	return Pt{}
}

// NormalAt returns the unit normal at loc: the tangent rotated by +90 degrees.
func NormalAt(pts []Pt, closed bool, loc Location) Pt {
	return TangentAt(pts, closed, loc).Perp()
}

// VertexLocation returns the location of vertex i (start of segment i, or the
// end of the last segment for the final vertex of an open polyline).
func VertexLocation(pts []Pt, closed bool, i int) Location {
	var off float64
	for k := 0; k < i && k < segCount(pts, closed); k++ {
		a, b := seg(pts, k)
		off += a.Dist(b)
	}
	if !closed && i == len(pts)-1 && i > 0 {
		return Location{Index: i - 1, T: 1, Offset: off, Point: pts[i]}
	}
	return Location{Index: i, Offset: off, Point: pts[i]}
}

// NearestLocation returns the location on the path closest to p.
func NearestLocation(pts []Pt, closed bool, p Pt) Location {
	best := Location{Index: -1}
	bestD := math.Inf(1)
	var off float64
	for i := 0; i < segCount(pts, closed); i++ {
		a, b := seg(pts, i)
		v := b.Sub(a)
		l := v.Len()
		t := 0.0
		if l > 0 {
			t = clamp01(p.Sub(a).Dot(v) / (l * l))
		}
		q := a.Add(v.Mul(t))
		if d := q.Dist(p); d < bestD {
			bestD = d
			best = Location{Index: i, T: t, Offset: off + t*l, Point: q}
		}
		off += l
	}
	if best.Index < 0 && len(pts) == 1 {
		return Location{Point: pts[0]}
	}
	return best
}

// InsertAt inserts loc.Point after vertex loc.Index and returns the new
// slice and the index of the inserted (or coincident) vertex.
func InsertAt(pts []Pt, loc Location) ([]Pt, int) {
	i := loc.Index
	if loc.Point.Near(pts[i], eps) {
		return Clone(pts), i
	}
	if j := (i + 1) % len(pts); loc.Point.Near(pts[j], eps) {
		return Clone(pts), j
	}
	out := make([]Pt, 0, len(pts)+1)
	out = append(out, pts[:i+1]...)
	out = append(out, loc.Point)
	out = append(out, pts[i+1:]...)
	return out, i + 1
}

// SubPath returns the stretch of an open polyline between the locations from
// and to, with from not past to.
func SubPath(pts []Pt, from, to Location) []Pt {
	out := []Pt{from.Point}
	for i := from.Index + 1; i <= to.Index && i < len(pts); i++ {
		out = append(out, pts[i])
	}
	return Reduce(append(out, to.Point), false)
}

// Reduce drops consecutive duplicate points. For closed polygons a trailing
// copy of the first point is dropped too.
func Reduce(pts []Pt, closed bool) []Pt {
	if len(pts) == 0 {
		return pts
	}
	out := make([]Pt, 0, len(pts))
	for _, p := range pts {
		if n := len(out); n > 0 && out[n-1].Near(p, eps) {
			continue
		}
		out = append(out, p)
	}
	if closed && len(out) > 1 && out[0].Near(out[len(out)-1], eps) {
		out = out[:len(out)-1]
	}
	return out
}

// Simplify collapses points closer than tol to the previously kept one. The
// endpoints always survive.
func Simplify(pts []Pt, tol float64) []Pt {
	if len(pts) < 3 {
		return Clone(pts)
	}
	out := []Pt{pts[0]}
	for _, p := range pts[1 : len(pts)-1] {
		if p.Dist(out[len(out)-1]) >= tol {
			out = append(out, p)
		}
	}
	last := pts[len(pts)-1]
	if len(out) > 1 && last.Dist(out[len(out)-1]) < tol {
		out[len(out)-1] = last
	} else {
		out = append(out, last)
	}
	return out
}


// TranslatePts returns the points moved by d.
func TranslatePts(pts []Pt, d Pt) []Pt {
	out := make([]Pt, len(pts))
	for i, p := range pts {
		out[i] = p.Add(d)
	}
	return out
}

// Reverse returns the points in reverse order.
func Reverse(pts []Pt) []Pt {
	out := make([]Pt, len(pts))
	for i, p := range pts {
		out[len(pts)-1-i] = p
	}
	return out
}

func Clone(pts []Pt) []Pt {
	if pts == nil {
		return nil
	}
	return append([]Pt(nil), pts...)
}

// Equal compares two point lists exactly.
func Equal(a, b []Pt) bool {
	if len(a) != len(b) || (a == nil) != (b == nil) {
		return false
	}
	for i := range a {
		if !a[i].Eq(b[i]) {
			return false
		}
	}
	return true
}

// RoundAll rounds every coordinate to the nearest integer.
func RoundAll(pts []Pt) []Pt {
	if pts == nil {
		return nil
	}
	out := make([]Pt, len(pts))
	for i, p := range pts {
		out[i] = p.Round()
	}
	return out
}
