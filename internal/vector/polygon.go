/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Polygon queries and boolean operations. Rings are passed the same way as
// closed paths: the first point is not repeated at the end.

import (
	"cmp"
	"errors"
	"slices"

	"github.com/peterstace/simplefeatures/geom"
)

// ErrDegenerate is returned for rings with fewer than three points.
var ErrDegenerate = errors.New("vector: polygon needs at least three points")

func ringOf(pts []Pt) geom.LineString {
	coords := make([]float64, 0, 2*len(pts)+2)
	for _, p := range pts {
		coords = append(coords, p.X, p.Y)
	}
	coords = append(coords, pts[0].X, pts[0].Y)
	return geom.NewLineString(geom.NewSequence(coords, geom.DimXY))
}

// polygonOf converts a ring without validating it. Fewer than three points
// give the empty polygon.
func polygonOf(pts []Pt) geom.Polygon {
	pts = Reduce(pts, true)
	if len(pts) < 3 {
		return geom.NewPolygon(nil)
	}
	return geom.NewPolygon([]geom.LineString{ringOf(pts)})
}

func validPolygon(pts []Pt) (geom.Polygon, error) {
	p := polygonOf(pts)
	if p.IsEmpty() {
		return p, ErrDegenerate
	}
	if err := p.Validate(); err != nil {
		return p, err
	}
	return p, nil
}

func ptOf(xy geom.XY) Pt { return Pt{X: xy.X, Y: xy.Y} }

func pointGeom(p Pt) geom.Geometry {
	return geom.XY{X: p.X, Y: p.Y}.AsPoint().AsGeometry()
}

// exterior returns the outer ring of p. Holes are dropped: masks and regions
// are simple polygons.
func exterior(p geom.Polygon) []Pt {
	seq := p.ExteriorRing().Coordinates()
	out := make([]Pt, 0, seq.Length())
	for i := 0; i < seq.Length(); i++ {
		out = append(out, ptOf(seq.GetXY(i)))
	}
	return Reduce(out, true)
}

// polygons flattens the polygonal parts of an overlay result.
func polygons(g geom.Geometry) [][]Pt {
	if g.IsEmpty() {
		return nil
	}
	if p, ok := g.AsPolygon(); ok {
		if r := exterior(p); len(r) >= 3 {
			return [][]Pt{r}
		}
		return nil
	}
	var out [][]Pt
	if mp, ok := g.AsMultiPolygon(); ok {
		for i := 0; i < mp.NumPolygons(); i++ {
			if r := exterior(mp.PolygonN(i)); len(r) >= 3 {
				out = append(out, r)
			}
		}
		return out
	}
	if gc, ok := g.AsGeometryCollection(); ok {
		for i := 0; i < gc.NumGeometries(); i++ {
			out = append(out, polygons(gc.GeometryN(i))...)
		}
	}
	return out
}

// Area returns the enclosed area of the polygon.
func Area(pts []Pt) float64 {
	return polygonOf(pts).Area()
}

// Centroid returns the area centroid, or the vertex average for degenerate
// polygons.
func Centroid(pts []Pt) Pt {
	if len(pts) == 0 {
		return Pt{}
	}
	if Area(pts) > eps {
		if xy, ok := polygonOf(pts).Centroid().XY(); ok {
			return ptOf(xy)
		}
	}
	var c Pt
	for _, p := range pts {
		c = c.Add(p)
	}
	return c.Mul(1 / float64(len(pts)))
}

// ContainsPoint reports whether p lies inside the polygon or on its boundary.
func ContainsPoint(poly []Pt, p Pt) bool {
	pg := polygonOf(poly)
	if pg.IsEmpty() {
		return false
	}
	return geom.Intersects(pg.AsGeometry(), pointGeom(p))
}

// InteriorPoint returns a point inside a non-degenerate polygon, even when
// its centroid is not.
func InteriorPoint(poly []Pt) Pt {
	pg := polygonOf(poly)
	if !pg.IsEmpty() {
		if xy, ok := pg.PointOnSurface().XY(); ok {
			return ptOf(xy)
		}
	}
	return Centroid(poly)
}

// ClipQuad returns the quadrilateral between the chords through a and b
// along their normals na and nb, each reaching h to both sides.
func ClipQuad(a, na, b, nb Pt, h float64) []Pt {
	da, db := na.WithLength(h), nb.WithLength(h)
	return []Pt{a.Add(da), a.Sub(da), b.Sub(db), b.Add(db)}
}

// Difference removes every clip polygon from subject and returns the
// remaining pieces, largest first.
func Difference(subject []Pt, clips ...[]Pt) ([][]Pt, error) {
	sp, err := validPolygon(subject)
	if err != nil {
		return nil, err
	}
	g := sp.AsGeometry()
	for _, c := range clips {
		cp, err := validPolygon(c)
		if err != nil {
			return nil, err
		}
		if g, err = geom.Difference(g, cp.AsGeometry()); err != nil {
			return nil, err
		}
	}
	return byArea(polygons(g)), nil
}

func byArea(ps [][]Pt) [][]Pt {
	slices.SortStableFunc(ps, func(a, b []Pt) int {
		return cmp.Compare(Area(b), Area(a))
	})
	return ps
}
