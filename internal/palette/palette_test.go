/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package palette

import (
	"image"
	"image/color"
	"testing"
)

func rgb(r, g, b uint8) color.RGBA { return color.RGBA{R: r, G: g, B: b, A: 255} }

func TestChooseDecisionTable(t *testing.T) {
	cases := []struct {
		name string
		pal  []color.RGBA
		want Pair
	}{
		{"empty", nil, Fallback},
		{"no blue", []color.RGBA{rgb(200, 200, 200), rgb(200, 40, 40)}, GreenYellow},
		{"blue only", []color.RGBA{rgb(10, 10, 200), rgb(240, 240, 240)}, BlueTeal},
		{"blue and red", []color.RGBA{rgb(10, 10, 200), rgb(200, 10, 10)}, RedOrange},
		{"rich, two main swatches blue and red", []color.RGBA{rgb(10, 10, 200), rgb(200, 10, 10), rgb(10, 200, 10)}, RedOrange},
		{"rich, two main swatches blue only", []color.RGBA{rgb(10, 10, 200), rgb(245, 245, 245), rgb(200, 10, 10), rgb(10, 200, 10)}, BlueTeal},
		{"rich with two swatches gives up", []color.RGBA{rgb(10, 200, 200), rgb(200, 10, 200)}, BlueTeal},
		{"dim channels ignored", []color.RGBA{rgb(10, 10, 90)}, GreenYellow},
	}
	for _, c := range cases {
		if got := Choose(c.pal); got != c.want {
			t.Fatalf("%s: got %+v want %+v", c.name, got, c.want)
		}
	}
}

func TestIsGrey(t *testing.T) {
	if !isGrey(rgb(100, 120, 110)) {
		t.Fatalf("expected grey")
	}
	if isGrey(rgb(100, 140, 110)) {
		t.Fatalf("expected colored")
	}
}

func TestExtractDominantColors(t *testing.T) {
	img := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			c := rgb(250, 250, 250)
			if x < 40 {
				c = rgb(0, 0, 220)
			}
			img.Set(x, y, c)
		}
	}
	sw := Extract(img, PaletteSize)
	if len(sw) == 0 {
		t.Fatalf("no swatches")
	}
	if c := sw[0].Color; c.R < 200 || c.G < 200 {
		t.Fatalf("dominant swatch should be the light background, got %+v", c)
	}
	if got := ForImage(img); got != BlueTeal {
		t.Fatalf("pair = %+v", got)
	}
	if ForImage(nil) != Fallback {
		t.Fatalf("nil image must use the fallback")
	}
}
