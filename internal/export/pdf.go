/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package export

import (
	"bytes"
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/jung-kurt/gofpdf"

	"segmenter/internal/vector"
)

// RenderPDF writes the scene as a single-page vector PDF at path. Units are
// points; one output pixel maps to one point.
func RenderPDF(path string, s *vector.Scene, o Options) error {
	if s == nil {
		return fmt.Errorf("render pdf: nil scene")
	}
	width, height := o.size(s)
	w, h := float64(width), float64(height)

	pdf := gofpdf.NewCustom(&gofpdf.InitType{
		UnitStr: "pt",
		Size:    gofpdf.SizeType{Wd: w, Ht: h},
	})
	if o.Title != "" {
		pdf.SetTitle(o.Title, true)
	}
	pdf.SetCreator("segmenter", false)
	pdf.SetMargins(0, 0, 0)
	pdf.SetAutoPageBreak(false, 0)
	pdf.AddPageFormat("", gofpdf.SizeType{Wd: w, Ht: h})

	switch {
	case o.Background != nil:
		var buf bytes.Buffer
		if err := png.Encode(&buf, o.Background); err != nil {
			return fmt.Errorf("encode background: %w", err)
		}
		opt := gofpdf.ImageOptions{ImageType: "PNG"}
		pdf.RegisterImageOptionsReader("background", opt, &buf)
		pdf.ImageOptions("background", 0, 0, w, h, false, opt, 0, "")
	case o.Canvas.A > 0:
		setFillColor(pdf, o.Canvas)
		pdf.Rect(0, 0, w, h, "F")
	}

	for _, it := range flatten(s, o) {
		paintPDF(pdf, it)
	}
	pdf.SetAlpha(1, "Normal")

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("ensure out dir: %w", err)
	}
	if err := pdf.OutputFileAndClose(path); err != nil {
		return fmt.Errorf("write pdf: %w", err)
	}
	return nil
}

func paintPDF(pdf *gofpdf.Fpdf, it item) {
	pdf.SetAlpha(it.style.Alpha(), "Normal")
	st := it.style
	if it.badge {
		style := ""
		if st.Fill.Enabled {
			setFillColor(pdf, st.Fill.Color)
			style += "F"
		}
		if st.Stroke.Enabled {
			setDrawColor(pdf, st.Stroke.Color)
			pdf.SetLineWidth(st.Stroke.Width)
			style += "D"
		}
		if style != "" {
			pdf.Circle(it.at.X, it.at.Y, it.radius, style)
		}
		if it.label != "" {
			size := it.radius
			pdf.SetFont("Helvetica", "", size)
			c := labelColor(st)
			pdf.SetTextColor(int(c.R), int(c.G), int(c.B))
			pdf.Text(it.at.X-pdf.GetStringWidth(it.label)/2, it.at.Y+size*0.35, it.label)
		}
		return
	}
	if len(it.pts) < 2 {
		return
	}
	pts := make([]gofpdf.PointType, len(it.pts))
	for i, p := range it.pts {
		pts[i] = gofpdf.PointType{X: p.X, Y: p.Y}
	}
	if it.closed && st.Fill.Enabled && len(pts) > 2 {
		setFillColor(pdf, st.Fill.Color)
		pdf.Polygon(pts, "F")
	}
	if st.Stroke.Enabled {
		setDrawColor(pdf, st.Stroke.Color)
		pdf.SetLineWidth(st.Stroke.Width)
		pdf.SetLineCapStyle(capStyle(st.Stroke.Cap))
		if it.closed {
			pdf.Polygon(pts, "D")
		} else {
			for i := 1; i < len(pts); i++ {
				pdf.Line(pts[i-1].X, pts[i-1].Y, pts[i].X, pts[i].Y)
			}
		}
	}
	if len(it.markers) > 0 {
		pdf.SetAlpha(1, "Normal")
		setFillColor(pdf, st.SelectedColor)
		for _, m := range it.markers {
			pdf.Rect(m.X-markerSize/2, m.Y-markerSize/2, markerSize, markerSize, "F")
		}
	}
}

func capStyle(c vector.LineCap) string {
	switch c {
	case vector.CapRound:
		return "round"
	case vector.CapSquare:
		return "square"
	}
	return "butt"
}

func setDrawColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetDrawColor(int(c.R), int(c.G), int(c.B))
}

func setFillColor(pdf *gofpdf.Fpdf, c vector.Color) {
	pdf.SetFillColor(int(c.R), int(c.G), int(c.B))
}
