/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

// Package editor implements the segmentation editor: lines with baselines
// and masks, regions, a three-kind selection, a pointer/keyboard tool state
// machine and the structural edits (split, merge, reverse). Drawing goes
// through a Surface; the editor never touches pixels.
package editor

import (
	"image"
	"log/slog"

	applog "segmenter/internal/log"
)

// TextDirection is the reading direction of a line.
type TextDirection string

const (
	LeftToRight TextDirection = "lr"
	RightToLeft TextDirection = "rl"
)

// Mode selects which entity kind creation gestures target.
type Mode uint8

const (
	LinesMode Mode = iota
	RegionsMode
)

func (m Mode) String() string {
	if m == RegionsMode {
		return "regions"
	}
	return "lines"
}

// Options configures an Editor. Zero values fall back to DefaultOptions.
type Options struct {
	// LengthThreshold is the minimum length of a freshly drawn baseline.
	LengthThreshold float64
	// Scale is the image-to-model coordinate ratio.
	Scale float64
	// ImageWidth and ImageHeight are the natural image dimensions used to
	// clamp dragged points. Zero disables clamping on that axis.
	ImageWidth, ImageHeight float64
	DefaultTextDirection    TextDirection
	UpperLineHeight         float64
	LowerLineHeight         float64
	// IDField is the correlation id member of entity contexts. Empty
	// disables correlation tracking.
	IDField           string
	DisableBindings   bool
	HitTolerance      float64
	SimplifyTolerance float64
	// AutoMask derives a mask for lines drawn by hand.
	AutoMask bool
	// Image, when set, drives the emphasis color choice.
	Image  image.Image
	Logger *slog.Logger
}

// DefaultOptions mirrors the stock editor configuration.
func DefaultOptions() Options {
	return Options{
		LengthThreshold:      10,
		Scale:                1,
		DefaultTextDirection: LeftToRight,
		UpperLineHeight:      20,
		LowerLineHeight:      10,
		IDField:              "id",
		HitTolerance:         20,
		SimplifyTolerance:    10,
	}
}

func (o Options) withDefaults() Options {
	d := DefaultOptions()
	if o.LengthThreshold <= 0 {
		o.LengthThreshold = d.LengthThreshold
	}
	if o.Scale <= 0 {
		o.Scale = d.Scale
	}
	if o.DefaultTextDirection != RightToLeft {
		o.DefaultTextDirection = LeftToRight
	}
	if o.UpperLineHeight <= 0 {
		o.UpperLineHeight = d.UpperLineHeight
	}
	if o.LowerLineHeight <= 0 {
		o.LowerLineHeight = d.LowerLineHeight
	}
	if o.HitTolerance <= 0 {
		o.HitTolerance = d.HitTolerance
	}
	if o.SimplifyTolerance <= 0 {
		o.SimplifyTolerance = d.SimplifyTolerance
	}
	if o.Logger == nil {
		o.Logger = applog.WithComponent("editor")
	}
	return o
}
