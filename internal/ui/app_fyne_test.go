//go:build fyne && cgo

/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


// These tests drive the page view through the Fyne test driver. They are
// gated behind the "fyne" build tag so headless CI does not need Fyne:
//
//	go test -tags fyne ./internal/ui
package ui

import (
	"context"
	"testing"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/test"
)

func mouse(x, y float32, b desktop.MouseButton, mods fyne.KeyModifier) *desktop.MouseEvent {
	return &desktop.MouseEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(x, y)}, Button: b, Modifier: mods}
}

func TestPageViewDrawsLine(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	h, err := Open(context.Background(), Options{Editor: quietOptions()})
	if err != nil {
		t.Fatal(err)
	}
	v := newPageView(h)
	changes := 0
	v.onChange = func() { changes++ }
	v.Resize(fyne.NewSize(300, 200))

	v.MouseDown(mouse(10, 10, desktop.MouseButtonPrimary, 0))
	v.MouseUp(mouse(10, 10, desktop.MouseButtonPrimary, 0))
	v.MouseMoved(mouse(150, 10, desktop.MouseButtonPrimary, 0))
	v.MouseDown(mouse(150, 10, desktop.MouseButtonPrimary, 0))
	v.MouseUp(mouse(150, 10, desktop.MouseButtonPrimary, 0))

	if n := len(h.Editor().Lines()); n != 1 {
		t.Fatalf("lines = %d", n)
	}
	if changes == 0 {
		t.Fatalf("onChange never called")
	}
	if c := v.Cursor(); c != desktop.PointerCursor {
		t.Fatalf("cursor over a line = %v", c)
	}
}

func TestPageViewScrollZooms(t *testing.T) {
	a := test.NewApp()
	defer a.Quit()

	h, _ := Open(context.Background(), Options{Editor: quietOptions()})
	v := newPageView(h)
	v.Resize(fyne.NewSize(300, 200))
	before := h.Zoom()
	v.Scrolled(&fyne.ScrollEvent{PointEvent: fyne.PointEvent{Position: fyne.NewPos(50, 50)}, Scrolled: fyne.NewDelta(0, 20)})
	if h.Zoom() <= before {
		t.Fatalf("zoom did not grow: %v -> %v", before, h.Zoom())
	}
	img := v.raster.Generator(300, 200)
	if b := img.Bounds(); b.Dx() != 300 {
		t.Fatalf("raster bounds %v", b)
	}
}
