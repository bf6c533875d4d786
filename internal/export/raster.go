/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package export

import (
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"io"
	"math"

	xdraw "golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
	xvector "golang.org/x/image/vector"

	"segmenter/internal/vector"
)

// Rasterize paints the scene into a new w×h image. Closed paths are filled
// with the non-zero rule, strokes are filled as per-segment quads and badges
// are drawn as discs with a centered label.
func Rasterize(s *vector.Scene, w, h int, o Options) *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	if o.Canvas.A > 0 {
		draw.Draw(img, img.Bounds(), image.NewUniform(o.Canvas.RGBA()), image.Point{}, draw.Src)
	}
	if bg := o.Background; bg != nil {
		sc := o.scale()
		b := bg.Bounds()
		x0, y0 := int(math.Round(o.Origin.X)), int(math.Round(o.Origin.Y))
		dr := image.Rect(x0, y0, x0+int(math.Round(float64(b.Dx())*sc)), y0+int(math.Round(float64(b.Dy())*sc)))
		xdraw.ApproxBiLinear.Scale(img, dr, bg, b, draw.Over, nil)
	}
	r := &raster{img: img, z: xvector.NewRasterizer(w, h)}
	for _, it := range flatten(s, o) {
		r.paint(it)
	}
	return img
}

type raster struct {
	img *image.RGBA
	z   *xvector.Rasterizer
}

func (r *raster) paint(it item) {
	alpha := it.style.Alpha()
	if it.badge {
		disc := vector.Circle(it.at, it.radius, 24)
		if it.style.Fill.Enabled {
			r.fill([][]vector.Pt{disc}, it.style.Fill.Color.WithAlpha(alpha))
		}
		if it.style.Stroke.Enabled {
			r.stroke(disc, true, it.style.Stroke.Width, it.style.Stroke.Color.WithAlpha(alpha))
		}
		r.label(it.at, it.label, labelColor(it.style))
		return
	}
	if it.closed && it.style.Fill.Enabled && len(it.pts) > 2 {
		r.fill([][]vector.Pt{it.pts}, it.style.Fill.Color.WithAlpha(alpha))
	}
	if it.style.Stroke.Enabled && len(it.pts) > 1 {
		r.stroke(it.pts, it.closed, it.style.Stroke.Width, it.style.Stroke.Color.WithAlpha(alpha))
	}
	for _, m := range it.markers {
		sq := vector.RectFromCorners(m.Sub(vector.P(markerSize/2, markerSize/2)), m.Add(vector.P(markerSize/2, markerSize/2)))
		r.fill([][]vector.Pt{sq.Corners()}, it.style.SelectedColor)
	}
}

// fill rasterizes the polygons in one pass so overlapping outlines do not
// blend twice.
func (r *raster) fill(polys [][]vector.Pt, c vector.Color) {
	if c.A == 0 {
		return
	}
	b := r.img.Bounds()
	r.z.Reset(b.Dx(), b.Dy())
	for _, poly := range polys {
		for i, p := range poly {
			if i == 0 {
				r.z.MoveTo(float32(p.X), float32(p.Y))
				continue
			}
			r.z.LineTo(float32(p.X), float32(p.Y))
		}
		r.z.ClosePath()
	}
	r.z.Draw(r.img, b, image.NewUniform(color.NRGBA{R: c.R, G: c.G, B: c.B, A: c.A}), image.Point{})
}

func (r *raster) stroke(pts []vector.Pt, closed bool, width float64, c vector.Color) {
	if width <= 0 {
		width = 1
	}
	var polys [][]vector.Pt
	for _, q := range vector.StrokeOutline(pts, closed, width) {
		var poly []vector.Pt
		for _, cmd := range q.Cmds {
			if cmd.Op != vector.Close {
				poly = append(poly, cmd.Pt)
			}
		}
		polys = append(polys, poly)
	}
	r.fill(polys, c)
}

func (r *raster) label(at vector.Pt, text string, c vector.Color) {
	if text == "" {
		return
	}
	face := basicfont.Face7x13
	d := &font.Drawer{Dst: r.img, Src: image.NewUniform(c.RGBA()), Face: face}
	adv := d.MeasureString(text)
	m := face.Metrics()
	d.Dot = fixed.Point26_6{
		X: fixed.Int26_6(at.X*64) - adv/2,
		Y: fixed.Int26_6(at.Y*64) + (m.Ascent-m.Descent)/2,
	}
	d.DrawString(text)
}

// labelColor picks the badge text color: the stroke color when the badge is
// outlined, black otherwise.
func labelColor(st vector.Style) vector.Color {
	if st.Stroke.Enabled && st.Stroke.Color.A > 0 {
		return st.Stroke.Color
	}
	return vector.Black
}

// RenderPNG rasterizes the scene and encodes it as PNG.
func RenderPNG(w io.Writer, s *vector.Scene, o Options) error {
	if s == nil {
		return fmt.Errorf("render png: nil scene")
	}
	width, height := o.size(s)
	if err := png.Encode(w, Rasterize(s, width, height, o)); err != nil {
		return fmt.Errorf("encode png: %w", err)
	}
	return nil
}
