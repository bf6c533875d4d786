//go:build fyne && cgo

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
	"image"
	"log/slog"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"

	"segmenter/internal/crash"
	"segmenter/internal/editor"
	applog "segmenter/internal/log"
	"segmenter/internal/version"
)

// Run starts the Fyne desktop host on the page described by opts.
func Run(opts Options) error {
	l := applog.WithComponent("ui")
	l.Info("starting UI", slog.String("image", opts.ImagePath), slog.String("payload", opts.PayloadPath), slog.String("version", version.String()))

	host, err := Open(context.Background(), opts)
	if err != nil {
		return err
	}
	defer host.Close()
	defer crash.Recover(&crash.Session{Dir: opts.CrashDir, Document: opts.DocKey, Editor: host.Editor()})

	fyneApp := app.NewWithID("segmenter")
	w := fyneApp.NewWindow("Segmenter")
	prefs := fyneApp.Preferences()
	winW := prefs.IntWithFallback("window.width", 1200)
	winH := prefs.IntWithFallback("window.height", 800)
	if winW < 640 {
		winW = 640
	}
	if winH < 480 {
		winH = 480
	}
	w.Resize(fyne.NewSize(float32(winW), float32(winH)))

	status := widget.NewLabel(host.Status())
	view := newPageView(host)
	ed := host.Editor()

	if s := host.Sync(); s != nil {
		s.OnError = func(err error) { dialog.ShowError(err, w) }
	}

	save := func() {
		if err := host.Save(); err != nil {
			dialog.ShowError(err, w)
			return
		}
		status.SetText("saved | " + host.Status())
	}

	reverse := widget.NewButton("Reverse", func() { ed.ReverseSelection(); view.changed() })
	merge := widget.NewButton("Merge", func() { ed.MergeSelection(); view.changed() })
	del := widget.NewButton("Delete", func() { ed.DeleteSelection(); view.changed() })
	delPoint := widget.NewButton("Delete points", func() { ed.DeleteSelectedSegments(); view.changed() })
	syncMenu := func() {
		m := ed.Menu()
		for _, b := range []struct {
			w  *widget.Button
			on bool
		}{{reverse, m.Reverse}, {merge, m.Merge}, {del, m.DeleteSelection}, {delPoint, m.DeletePoint}} {
			if b.on && m.Visible {
				b.w.Enable()
			} else {
				b.w.Disable()
			}
		}
	}
	view.onChange = func() {
		status.SetText(host.Status())
		syncMenu()
	}
	syncMenu()

	toolbar := container.NewHBox(
		widget.NewButton("Lines/Regions", func() { ed.ToggleRegionMode(); view.changed() }),
		widget.NewButton("Masks", func() { ed.ToggleMasks(false); view.changed() }),
		widget.NewButton("Order", func() { ed.ToggleOrdering(); view.changed() }),
		widget.NewButton("Cut", func() { ed.ToggleCutting(); view.changed() }),
		widget.NewSeparator(),
		reverse, merge, del, delPoint,
		widget.NewSeparator(),
		widget.NewButton("Fit", func() { host.Fit(view.Size().Width, view.Size().Height); view.changed() }),
		widget.NewButton("Save", save),
	)

	if dc, ok := w.Canvas().(desktop.Canvas); ok {
		dc.SetOnKeyDown(func(k *fyne.KeyEvent) { host.KeyDown(string(k.Name)) })
		dc.SetOnKeyUp(func(k *fyne.KeyEvent) {
			if host.KeyUp(string(k.Name)) {
				view.changed()
			}
		})
	}
	w.Canvas().AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyS, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { save() })

	w.SetContent(container.NewBorder(toolbar, status, nil, nil, view))
	w.SetOnClosed(func() {
		sz := w.Canvas().Size()
		prefs.SetInt("window.width", int(sz.Width))
		prefs.SetInt("window.height", int(sz.Height))
		l.Info("UI closed", slog.Int("lines", len(ed.Lines())), slog.Int("regions", len(ed.Regions())))
	})
	w.ShowAndRun()
	return nil
}

// pageView shows the page and forwards pointer input to the editor.
type pageView struct {
	widget.BaseWidget
	host   *Host
	raster *canvas.Raster

	fitted  bool
	pressed bool
	mods    fyne.KeyModifier
	last    fyne.Position

	onChange func()
}

func newPageView(h *Host) *pageView {
	v := &pageView{host: h}
	v.raster = canvas.NewRaster(func(w, ht int) image.Image {
		density := 1.0
		if sw := v.Size().Width; sw > 0 {
			density = float64(w) / float64(sw)
		}
		return v.host.render(w, ht, density)
	})
	v.ExtendBaseWidget(v)
	return v
}

func (v *pageView) CreateRenderer() fyne.WidgetRenderer { return widget.NewSimpleRenderer(v.raster) }

func (v *pageView) MinSize() fyne.Size { return fyne.NewSize(320, 240) }

// Resize fits the page on the first layout.
func (v *pageView) Resize(s fyne.Size) {
	v.BaseWidget.Resize(s)
	if !v.fitted && s.Width > 0 && s.Height > 0 {
		v.host.Fit(s.Width, s.Height)
		v.fitted = true
	}
}

func (v *pageView) changed() {
	v.raster.Refresh()
	if v.onChange != nil {
		v.onChange()
	}
}

func (v *pageView) event(pos fyne.Position, secondary bool, mods fyne.KeyModifier) editor.PointerEvent {
	return v.host.Pointer(pos.X, pos.Y, secondary, mods&fyne.KeyModifierShift != 0, mods&(fyne.KeyModifierControl|fyne.KeyModifierSuper) != 0)
}

func (v *pageView) MouseDown(e *desktop.MouseEvent) {
	v.pressed = true
	v.mods = e.Modifier
	v.last = e.Position
	v.host.Editor().MouseDown(v.event(e.Position, e.Button == desktop.MouseButtonSecondary, e.Modifier))
	v.changed()
}

func (v *pageView) MouseUp(e *desktop.MouseEvent) {
	if !v.pressed {
		return
	}
	v.pressed = false
	v.host.Editor().MouseUp(v.event(e.Position, e.Button == desktop.MouseButtonSecondary, e.Modifier))
	v.changed()
}

func (v *pageView) MouseIn(*desktop.MouseEvent) {}
func (v *pageView) MouseOut()                   {}

func (v *pageView) MouseMoved(e *desktop.MouseEvent) {
	v.last = e.Position
	if v.pressed {
		return
	}
	v.host.Editor().MouseMove(v.event(e.Position, false, e.Modifier))
	v.changed()
}

func (v *pageView) Dragged(e *fyne.DragEvent) {
	v.last = e.Position
	v.host.Editor().MouseDrag(v.event(e.Position, false, v.mods))
	v.changed()
}

// DragEnd releases the gesture when the driver did not deliver MouseUp.
func (v *pageView) DragEnd() {
	if !v.pressed {
		return
	}
	v.pressed = false
	v.host.Editor().MouseUp(v.event(v.last, false, v.mods))
	v.changed()
}

func (v *pageView) DoubleTapped(e *fyne.PointEvent) {
	v.host.Editor().DoubleClick(v.event(e.Position, false, 0))
	v.changed()
}

// Scrolled zooms around the pointer; horizontal scrolling pans.
func (v *pageView) Scrolled(e *fyne.ScrollEvent) {
	if dy := e.Scrolled.DY; dy != 0 {
		f := 1 + float64(dy)*0.01
		if f < 0.5 {
			f = 0.5
		}
		if f > 2 {
			f = 2
		}
		v.host.ZoomAt(f, e.Position.X, e.Position.Y)
	}
	if dx := e.Scrolled.DX; dx != 0 {
		v.host.Pan(dx, 0)
	}
	v.changed()
}

func (v *pageView) Cursor() desktop.Cursor {
	switch v.host.Editor().HoverCursor(v.host.ToModel(v.last.X, v.last.Y)) {
	case "crosshair":
		return desktop.CrosshairCursor
	case "pointer", "grab", "move":
		return desktop.PointerCursor
	}
	return desktop.DefaultCursor
}

var (
	_ desktop.Mouseable   = (*pageView)(nil)
	_ desktop.Hoverable   = (*pageView)(nil)
	_ desktop.Cursorable  = (*pageView)(nil)
	_ fyne.Draggable      = (*pageView)(nil)
	_ fyne.DoubleTappable = (*pageView)(nil)
	_ fyne.Scrollable     = (*pageView)(nil)
)
