/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package palette extracts a dominant color palette from a page image and
// picks the emphasis color pair used to draw the segmentation overlay.
package palette

import (
	"image"
	"image/color"
	"sort"

	xdraw "golang.org/x/image/draw"
)

// sampleSize bounds the longer edge of the downscaled sample.
const sampleSize = 64

// Swatch is a palette entry with the number of sampled pixels it stands for.
type Swatch struct {
	Color      color.RGBA
	Population int
}

// Extract returns up to n dominant colors of img, most populous first. It
// downsamples the image and runs a median cut over the RGB cube.
func Extract(img image.Image, n int) []Swatch {
	if img == nil || n <= 0 {
		return nil
	}
	b := img.Bounds()
	if b.Empty() {
		return nil
	}
	w, h := b.Dx(), b.Dy()
	if w > sampleSize || h > sampleSize {
		if w >= h {
			h = max(1, h*sampleSize/w)
			w = sampleSize
		} else {
			w = max(1, w*sampleSize/h)
			h = sampleSize
		}
	}
	dst := image.NewRGBA(image.Rect(0, 0, w, h))
	xdraw.ApproxBiLinear.Scale(dst, dst.Bounds(), img, b, xdraw.Src, nil)

	px := make([][3]uint8, 0, w*h)
	for i := 0; i+3 < len(dst.Pix); i += 4 {
		if dst.Pix[i+3] < 125 {
			continue
		}
		px = append(px, [3]uint8{dst.Pix[i], dst.Pix[i+1], dst.Pix[i+2]})
	}
	if len(px) == 0 {
		return nil
	}

	boxes := []cube{{px: px}}
	for len(boxes) < n {
		idx, ch, best := -1, 0, 0
		for i, c := range boxes {
			if len(c.px) < 2 {
				continue
			}
			k, r := c.widest()
			if r > best {
				idx, ch, best = i, k, r
			}
		}
		if idx < 0 {
			break
		}
		a, z := boxes[idx].split(ch)
		boxes[idx] = a
		boxes = append(boxes, z)
	}

	out := make([]Swatch, 0, len(boxes))
	for _, c := range boxes {
		out = append(out, Swatch{Color: c.mean(), Population: len(c.px)})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Population > out[j].Population })
	return out
}

type cube struct{ px [][3]uint8 }

// widest returns the channel with the largest value range and that range.
func (c cube) widest() (int, int) {
	lo := [3]uint8{255, 255, 255}
	var hi [3]uint8
	for _, p := range c.px {
		for k := 0; k < 3; k++ {
			lo[k] = min(lo[k], p[k])
			hi[k] = max(hi[k], p[k])
		}
	}
	ch, r := 0, 0
	for k := 0; k < 3; k++ {
		if d := int(hi[k]) - int(lo[k]); d > r {
			ch, r = k, d
		}
	}
	return ch, r
}

func (c cube) split(ch int) (cube, cube) {
	sort.Slice(c.px, func(i, j int) bool { return c.px[i][ch] < c.px[j][ch] })
	m := len(c.px) / 2
	return cube{px: c.px[:m]}, cube{px: c.px[m:]}
}

func (c cube) mean() color.RGBA {
	var s [3]int
	for _, p := range c.px {
		for k := 0; k < 3; k++ {
			s[k] += int(p[k])
		}
	}
	n := len(c.px)
	return color.RGBA{R: uint8(s[0] / n), G: uint8(s[1] / n), B: uint8(s[2] / n), A: 255}
}
