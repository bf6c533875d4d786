/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Basic 2D geometry in image coordinates (x to the right, y down).
// Vector math is delegated to gonum's r2 package.

import (
	"math"

	"gonum.org/v1/gonum/spatial/r2"
)

// Pt is a 2D point.
type Pt struct{ X, Y float64 }

func P(x, y float64) Pt { return Pt{X: x, Y: y} }

func (p Pt) Vec() r2.Vec   { return r2.Vec{X: p.X, Y: p.Y} }
func fromVec(v r2.Vec) Pt  { return Pt{X: v.X, Y: v.Y} }
func (p Pt) Add(q Pt) Pt   { return fromVec(r2.Add(p.Vec(), q.Vec())) }
func (p Pt) Sub(q Pt) Pt   { return fromVec(r2.Sub(p.Vec(), q.Vec())) }
func (p Pt) Mul(s float64) Pt { return fromVec(r2.Scale(s, p.Vec())) }
func (p Pt) Dot(q Pt) float64 { return r2.Dot(p.Vec(), q.Vec()) }
func (p Pt) Cross(q Pt) float64 {
	return r2.Cross(p.Vec(), q.Vec())
}
func (p Pt) Len() float64         { return r2.Norm(p.Vec()) }
func (p Pt) Dist(q Pt) float64    { return p.Sub(q).Len() }
func (p Pt) Angle() float64       { return math.Atan2(p.Y, p.X) }
func (p Pt) Neg() Pt              { return Pt{X: -p.X, Y: -p.Y} }
func (p Pt) Round() Pt            { return Pt{X: math.Round(p.X), Y: math.Round(p.Y)} }
func (p Pt) Eq(q Pt) bool         { return p.X == q.X && p.Y == q.Y }
func (p Pt) Near(q Pt, eps float64) bool { return p.Dist(q) <= eps }

// WithLength returns p scaled to length l. The zero vector stays zero.
func (p Pt) WithLength(l float64) Pt {
	if p.Len() == 0 {
		return Pt{}
	}
	return fromVec(r2.Scale(l, r2.Unit(p.Vec())))
}

// Rotate rotates p around the origin by rad radians.
func (p Pt) Rotate(rad float64) Pt {
	return fromVec(r2.Rotate(p.Vec(), rad, r2.Vec{}))
}

// Perp returns p rotated by +90 degrees, (-y, x).
func (p Pt) Perp() Pt { return Pt{X: -p.Y, Y: p.X} }

// Rect is an axis-aligned rectangle defined by min corner and size.
type Rect struct {
	X, Y float64
	W, H float64
}

func R(x, y, w, h float64) Rect { return Rect{X: x, Y: y, W: w, H: h} }

// RectFromCorners returns the rectangle spanned by two opposite corners.
func RectFromCorners(a, b Pt) Rect {
	minX, maxX := math.Min(a.X, b.X), math.Max(a.X, b.X)
	minY, maxY := math.Min(a.Y, b.Y), math.Max(a.Y, b.Y)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

func (r Rect) Min() Pt    { return Pt{r.X, r.Y} }
func (r Rect) Max() Pt    { return Pt{r.X + r.W, r.Y + r.H} }
func (r Rect) Center() Pt { return Pt{r.X + r.W/2, r.Y + r.H/2} }
func (r Rect) Diagonal() float64 {
	return math.Hypot(r.W, r.H)
}

func (r Rect) Contains(p Pt) bool {
	return p.X >= r.X && p.Y >= r.Y && p.X <= r.X+r.W && p.Y <= r.Y+r.H
}

// Inset returns a rectangle inset by dx,dy on all sides (negative grows).
func (r Rect) Inset(dx, dy float64) Rect {
	return Rect{X: r.X + dx, Y: r.Y + dy, W: r.W - 2*dx, H: r.H - 2*dy}
}

// Union returns the minimal rect containing both.
func (r Rect) Union(o Rect) Rect {
	minX := math.Min(r.X, o.X)
	minY := math.Min(r.Y, o.Y)
	maxX := math.Max(r.X+r.W, o.X+o.W)
	maxY := math.Max(r.Y+r.H, o.Y+o.H)
	return Rect{X: minX, Y: minY, W: maxX - minX, H: maxY - minY}
}

// Corners returns the rectangle as a closed polygon, clockwise on screen
// starting at the min corner.
func (r Rect) Corners() []Pt {
	return []Pt{
		{r.X, r.Y},
		{r.X + r.W, r.Y},
		{r.X + r.W, r.Y + r.H},
		{r.X, r.Y + r.H},
	}
}

// Affine2D represents a 2D affine transform as matrix:
// | a c e |
// | b d f |
// | 0 0 1 |
// stored as [a b c d e f].
type Affine2D struct{ A, B, C, D, E, F float64 }

var Identity = Affine2D{A: 1, D: 1}

func (m Affine2D) Mul(n Affine2D) Affine2D {
	return Affine2D{
		A: m.A*n.A + m.C*n.B,
		B: m.B*n.A + m.D*n.B,
		C: m.A*n.C + m.C*n.D,
		D: m.B*n.C + m.D*n.D,
		E: m.A*n.E + m.C*n.F + m.E,
		F: m.B*n.E + m.D*n.F + m.F,
	}
}

func (m Affine2D) Apply(p Pt) Pt {
	return Pt{
		X: m.A*p.X + m.C*p.Y + m.E,
		Y: m.B*p.X + m.D*p.Y + m.F,
	}
}

func Translate(tx, ty float64) Affine2D { return Affine2D{A: 1, D: 1, E: tx, F: ty} }
func Scale(sx, sy float64) Affine2D     { return Affine2D{A: sx, D: sy} }
func Rotate(rad float64) Affine2D {
	c := math.Cos(rad)
	s := math.Sin(rad)
	return Affine2D{A: c, B: s, C: -s, D: c}
}

// FloatRound rounds v to n decimal places deterministically.
func FloatRound(v float64, places int) float64 {
	if places < 0 {
		return v
	}
	pow := math.Pow(10, float64(places))
	return math.Round(v*pow) / pow
}
