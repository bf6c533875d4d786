/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


// Package export renders an editor scene, optionally over the page image,
// to raster (PNG) and vector (PDF) documents.
package export

import (
	"image"
	"math"

	"segmenter/internal/vector"
)

// Options controls the output of Rasterize, RenderPNG and RenderPDF.
type Options struct {
	// Width and Height are the output size in pixels (points for PDF). Zero
	// derives the size from Background, or from the scene bounds.
	Width, Height int
	// Scale maps model coordinates to output units. Zero means 1.
	Scale float64
	// Origin is the output position of the model origin, used for panning.
	Origin vector.Pt
	// Background, when set, is scaled to the output size beneath the overlay.
	Background image.Image
	// Canvas fills the output when there is no background. The zero value
	// leaves it transparent.
	Canvas vector.Color
	// Markers draws selected vertices in their path's selection color.
	Markers bool
	Title   string
}

func (o Options) scale() float64 {
	if o.Scale <= 0 {
		return 1
	}
	return o.Scale
}

// size resolves the output dimensions.
func (o Options) size(s *vector.Scene) (int, int) {
	w, h := o.Width, o.Height
	if w > 0 && h > 0 {
		return w, h
	}
	sc := o.scale()
	var bw, bh float64
	if o.Background != nil {
		b := o.Background.Bounds()
		bw, bh = float64(b.Dx()), float64(b.Dy())
	} else if r, ok := sceneBounds(s); ok {
		bw, bh = r.X+r.W, r.Y+r.H
	}
	if w <= 0 {
		w = max(1, int(math.Ceil(bw*sc)))
	}
	if h <= 0 {
		h = max(1, int(math.Ceil(bh*sc)))
	}
	return w, h
}

func sceneBounds(s *vector.Scene) (vector.Rect, bool) {
	var out vector.Rect
	found := false
	s.Walk(func(_ vector.Handle, n vector.Node) {
		if !n.Visible() {
			return
		}
		b := n.Bounds()
		if !found {
			out, found = b, true
			return
		}
		out = out.Union(b)
	})
	return out, found
}

// item is one paint operation in output coordinates, shared by both backends.
type item struct {
	pts     []vector.Pt
	closed  bool
	style   vector.Style
	badge   bool
	at      vector.Pt
	radius  float64
	label   string
	markers []vector.Pt
}

// flatten turns the visible nodes of s into paint items, bottom to top.
func flatten(s *vector.Scene, o Options) []item {
	m := vector.Translate(o.Origin.X, o.Origin.Y).Mul(vector.Scale(o.scale(), o.scale()))
	var out []item
	s.Walk(func(_ vector.Handle, n vector.Node) {
		if !n.Visible() {
			return
		}
		switch v := n.(type) {
		case *vector.PathNode:
			src := v.Points()
			it := item{pts: make([]vector.Pt, len(src)), closed: v.Closed(), style: v.Style()}
			for i, p := range src {
				it.pts[i] = m.Apply(p)
				if o.Markers && v.PointSelected(i) {
					it.markers = append(it.markers, it.pts[i])
				}
			}
			it.style.Stroke.Width *= o.scale()
			out = append(out, it)
		case *vector.BadgeNode:
			out = append(out, item{badge: true, at: m.Apply(v.At), radius: v.Radius * o.scale(), label: v.Label, style: v.Style()})
		}
	})
	return out
}

// markerSize is the edge length of a selected-vertex marker.
const markerSize = 6.0
