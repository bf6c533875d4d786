/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package ui

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log/slog"
	"math"
	"os"

	"segmenter/internal/editor"
	"segmenter/internal/export"
	applog "segmenter/internal/log"
	"segmenter/internal/storage"
	"segmenter/internal/vector"
)

// Options describes what the desktop host opens.
type Options struct {
	ImagePath   string
	PayloadPath string
	Editor      editor.Options
	// Store and DocKey, when both set, persist every committed edit.
	Store  *storage.Store
	DocKey string
	// CrashDir receives crash reports and autosaves.
	CrashDir string
}

const (
	minZoom = 0.05
	maxZoom = 8.0
)

// Host owns the editor of one page together with the view transform of the
// canvas showing it. It has no toolkit dependency so the event translation
// can be exercised headless.
type Host struct {
	opts  Options
	ed    *editor.Editor
	scene *vector.Scene
	bg    image.Image
	sync  *storage.Sync
	log   *slog.Logger

	zoom   float64
	offset vector.Pt
	ctrl   bool
}

// Open decodes the page image, creates the editor and loads the payload,
// from PayloadPath or from the store.
func Open(ctx context.Context, opts Options) (*Host, error) {
	l := applog.WithComponent("ui")
	eo := opts.Editor
	if eo.Logger == nil {
		eo.Logger = applog.WithComponent("editor")
	}
	var bg image.Image
	if opts.ImagePath != "" {
		img, format, err := export.DecodeImage(opts.ImagePath)
		if err != nil {
			return nil, err
		}
		b := img.Bounds()
		l.Info("image loaded", slog.String("path", opts.ImagePath), slog.String("format", format), slog.Int("width", b.Dx()), slog.Int("height", b.Dy()))
		bg = img
		eo.Image = img
		eo.ImageWidth, eo.ImageHeight = float64(b.Dx()), float64(b.Dy())
	}
	scene := vector.NewScene()
	h := &Host{opts: opts, ed: editor.New(scene, eo), scene: scene, bg: bg, log: l, zoom: 1}

	switch {
	case opts.PayloadPath != "":
		data, err := os.ReadFile(opts.PayloadPath)
		if err != nil {
			return nil, fmt.Errorf("read payload: %w", err)
		}
		if err := h.ed.LoadJSON(data); err != nil {
			return nil, err
		}
	case opts.Store != nil && opts.DocKey != "":
		p, err := opts.Store.LoadPayload(ctx, opts.DocKey)
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			return nil, err
		}
		h.ed.Load(p)
	}

	if opts.Store != nil && opts.DocKey != "" {
		s, err := storage.NewSync(ctx, opts.Store, opts.DocKey)
		if err != nil {
			return nil, err
		}
		if err := s.Attach(h.ed); err != nil {
			return nil, err
		}
		h.sync = s
	}
	return h, nil
}

// Close detaches the persistence subscriber.
func (h *Host) Close() {
	if h.sync != nil {
		h.sync.Detach()
		h.sync = nil
	}
}

func (h *Host) Editor() *editor.Editor { return h.ed }
func (h *Host) Zoom() float64          { return h.zoom }
func (h *Host) Offset() vector.Pt      { return h.offset }

// Sync returns the persistence subscriber, or nil when the host has no store.
func (h *Host) Sync() *storage.Sync { return h.sync }

// ToModel converts a canvas position to model coordinates.
func (h *Host) ToModel(x, y float32) vector.Pt {
	return vector.P((float64(x)-h.offset.X)/h.zoom, (float64(y)-h.offset.Y)/h.zoom)
}

// Pointer builds an editor event for a canvas position. Ctrl is also true
// while a control key is held on the keyboard.
func (h *Host) Pointer(x, y float32, secondary, shift, ctrl bool) editor.PointerEvent {
	ev := editor.PointerEvent{Point: h.ToModel(x, y), Shift: shift, Ctrl: ctrl || h.ctrl}
	if secondary {
		ev.Button = editor.RightButton
	}
	return ev
}

// Fit scales the page to a w×h canvas and centers it.
func (h *Host) Fit(w, ht float32) {
	pw, ph := h.pageSize()
	if pw <= 0 || ph <= 0 || w <= 0 || ht <= 0 {
		return
	}
	h.zoom = clampZoom(math.Min(float64(w)/pw, float64(ht)/ph))
	h.offset = vector.P((float64(w)-pw*h.zoom)/2, (float64(ht)-ph*h.zoom)/2)
}

// ZoomAt multiplies the zoom by factor keeping the canvas point (x, y) fixed.
func (h *Host) ZoomAt(factor float64, x, y float32) {
	anchor := h.ToModel(x, y)
	h.zoom = clampZoom(h.zoom * factor)
	h.offset = vector.P(float64(x)-anchor.X*h.zoom, float64(y)-anchor.Y*h.zoom)
}

// Pan moves the view by a canvas delta.
func (h *Host) Pan(dx, dy float32) {
	h.offset = h.offset.Add(vector.P(float64(dx), float64(dy)))
}

func clampZoom(z float64) float64 { return math.Max(minZoom, math.Min(maxZoom, z)) }

func (h *Host) pageSize() (float64, float64) {
	if h.bg != nil {
		b := h.bg.Bounds()
		return float64(b.Dx()), float64(b.Dy())
	}
	o := h.ed.Options()
	return o.ImageWidth, o.ImageHeight
}

// Frame renders the current view into a w×h image.
func (h *Host) Frame(w, ht int) image.Image { return h.render(w, ht, 1) }

// render draws the view at a pixel density, the ratio of output pixels to
// canvas units.
func (h *Host) render(w, ht int, density float64) image.Image {
	if w <= 0 || ht <= 0 {
		return image.NewRGBA(image.Rect(0, 0, 1, 1))
	}
	if density <= 0 {
		density = 1
	}
	return export.Rasterize(h.scene, w, ht, export.Options{
		Scale:      h.zoom * density,
		Origin:     h.offset.Mul(density),
		Background: h.bg,
		Canvas:     vector.Color{R: 30, G: 30, B: 34, A: 255},
		Markers:    true,
	})
}

// keyNames maps toolkit key names to editor keys.
var keyNames = map[string]editor.Key{
	"Escape":    editor.KeyEscape,
	"Delete":    editor.KeyDelete,
	"BackSpace": editor.KeyDelete,
	"C":         editor.KeyC,
	"M":         editor.KeyM,
	"R":         editor.KeyR,
	"A":         editor.KeyA,
}

func isControl(name string) bool {
	switch name {
	case "LeftControl", "RightControl", "LeftSuper", "RightSuper":
		return true
	}
	return false
}

// KeyDown tracks modifier state.
func (h *Host) KeyDown(name string) {
	if isControl(name) {
		h.ctrl = true
	}
}

// KeyUp forwards a key release to the editor. It reports whether the key
// was one the editor knows.
func (h *Host) KeyUp(name string) bool {
	if isControl(name) {
		h.ctrl = false
		return false
	}
	k, ok := keyNames[name]
	if !ok {
		return false
	}
	h.ed.KeyUp(editor.KeyEvent{Key: k, Ctrl: h.ctrl})
	return true
}

// Status summarizes the editor for the status bar.
func (h *Host) Status() string {
	e := h.ed
	s := fmt.Sprintf("%s | lines %d | regions %d | %s | %.0f%%", e.Mode(), len(e.Lines()), len(e.Regions()), e.State(), h.zoom*100)
	if e.Cutting() {
		s += " | cut"
	}
	return s
}

// Save writes the payload back to PayloadPath. Without a payload file and a
// store the host has nowhere to save to.
func (h *Host) Save() error {
	if h.opts.PayloadPath == "" {
		if h.sync != nil {
			return nil
		}
		return errors.New("no payload file to save to")
	}
	data, err := h.ed.Payload().Encode(h.ed.Options().IDField)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := os.WriteFile(h.opts.PayloadPath, data, 0o644); err != nil {
		return fmt.Errorf("write payload: %w", err)
	}
	h.log.Info("payload saved", slog.String("path", h.opts.PayloadPath), slog.Int("lines", len(h.ed.Lines())))
	return nil
}
