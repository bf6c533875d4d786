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

	"segmenter/internal/vector"
)

// PaletteSize is the number of swatches the heuristic looks at.
const PaletteSize = 5

const (
	greyDelta    = 30
	channelFloor = 100
)

// Pair is a main/secondary emphasis color pair.
type Pair struct {
	Main      vector.Color
	Secondary vector.Color
}

var (
	BlueTeal    = Pair{Main: vector.Blue, Secondary: vector.Teal}
	RedOrange   = Pair{Main: vector.Red, Secondary: vector.Orange}
	GreenYellow = Pair{Main: vector.Green, Secondary: vector.Yellow}

	// Fallback is used when no palette is available.
	Fallback = BlueTeal
)

const (
	red = iota
	green
	blue
)

// ForImage extracts the palette of img and chooses a pair. A nil image
// yields the fallback.
func ForImage(img image.Image) Pair {
	sw := Extract(img, PaletteSize)
	if len(sw) == 0 {
		return Fallback
	}
	pal := make([]color.RGBA, len(sw))
	for i, s := range sw {
		pal[i] = s.Color
	}
	return Choose(pal)
}

// Choose applies the decision table to a palette ordered by dominance.
func Choose(pal []color.RGBA) Pair {
	if len(pal) == 0 {
		return Fallback
	}
	return choose(pal, 0)
}

func choose(pal []color.RGBA, depth int) Pair {
	if !hasColor(pal, blue) {
		return GreenYellow
	}
	if !hasColor(pal, red) {
		return BlueTeal
	}
	if !hasColor(pal, green) {
		return RedOrange
	}
	// color-rich page: look at the two main swatches only, once
	if depth < 1 && len(pal) > 2 {
		return choose(pal[:2], depth+1)
	}
	return BlueTeal
}

func channels(c color.RGBA) [3]int { return [3]int{int(c.R), int(c.G), int(c.B)} }

func isGrey(c color.RGBA) bool {
	ch := channels(c)
	return abs(ch[0]-ch[1]) < greyDelta && abs(ch[0]-ch[2]) < greyDelta && abs(ch[1]-ch[2]) < greyDelta
}

// hasColor reports whether some non-grey swatch has channel k as its
// dominant channel.
func hasColor(pal []color.RGBA, k int) bool {
	for _, c := range pal {
		if isGrey(c) {
			continue
		}
		ch := channels(c)
		if ch[k] == max(ch[0], ch[1], ch[2]) && ch[k] > channelFloor {
			return true
		}
	}
	return false
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
