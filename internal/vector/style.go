/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

// Styles and paint definitions.

import "image/color"

type Color struct{ R, G, B, A uint8 }

var (
	Black       = Color{0, 0, 0, 255}
	White       = Color{255, 255, 255, 255}
	Transparent = Color{0, 0, 0, 0}

	// Emphasis pairs picked by the palette heuristic.
	Blue   = Color{0, 0, 255, 255}
	Teal   = Color{0, 128, 128, 255}
	Red    = Color{255, 0, 0, 255}
	Orange = Color{255, 165, 0, 255}
	Green  = Color{0, 128, 0, 255}
	Yellow = Color{255, 255, 0, 255}
	Grey   = Color{128, 128, 128, 255}
)

// RGBA converts to the standard library color type.
func (c Color) RGBA() color.RGBA { return color.RGBA{R: c.R, G: c.G, B: c.B, A: c.A} }

// WithAlpha returns c with its alpha scaled by opacity in [0,1].
func (c Color) WithAlpha(opacity float64) Color {
	if opacity < 0 {
		opacity = 0
	}
	if opacity > 1 {
		opacity = 1
	}
	c.A = uint8(float64(c.A)*opacity + 0.5)
	return c
}

type Fill struct {
	Color   Color
	Enabled bool
}

type LineCap uint8

const (
	CapButt LineCap = iota
	CapRound
	CapSquare
)

type Stroke struct {
	Color   Color
	Width   float64
	Cap     LineCap
	Enabled bool
}

// Style is the paint of a scene node. Opacity multiplies both fill and stroke.
// SelectedColor is used for selected vertex markers.
type Style struct {
	Fill          Fill
	Stroke        Stroke
	Opacity       float64
	SelectedColor Color
}

// Alpha reports the effective opacity; zero means fully opaque.
func (s Style) Alpha() float64 {
	if s.Opacity <= 0 {
		return 1
	}
	return s.Opacity
}
