/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import (
	"log/slog"
	"math"
	"slices"
	"sort"

	"gonum.org/v1/gonum/stat"

	"segmenter/internal/domain"
	"segmenter/internal/palette"
	"segmenter/internal/vector"
)

// Editor owns the lines and regions of one page, the selection and the tool
// state machine. It is single-threaded: every method must be called from the
// host's event loop.
type Editor struct {
	opts    Options
	surface Surface
	log     *slog.Logger
	colors  palette.Pair

	lines   []*Line
	regions []*Region
	nextID  int

	sel    selection
	events emitter
	g      gesture

	mode            Mode
	cutting         bool
	showMasks       bool
	showLineNumbers bool
	avgHeight       float64
}

// New creates an editor drawing into surface. A nil surface gets a fresh
// in-memory scene.
func New(surface Surface, opts Options) *Editor {
	opts = opts.withDefaults()
	if surface == nil {
		surface = vector.NewScene()
	}
	e := &Editor{
		opts:    opts,
		surface: surface,
		log:     opts.Logger,
		colors:  palette.ForImage(opts.Image),
	}
	e.log.Debug("editor created", "main", e.colors.Main, "secondary", e.colors.Secondary, "scale", opts.Scale)
	return e
}

func (e *Editor) Surface() Surface      { return e.surface }
func (e *Editor) Options() Options      { return e.opts }
func (e *Editor) Colors() palette.Pair  { return e.colors }
func (e *Editor) Mode() Mode            { return e.mode }
func (e *Editor) Cutting() bool         { return e.cutting }
func (e *Editor) MasksVisible() bool    { return e.showMasks }
func (e *Editor) OrderingVisible() bool { return e.showLineNumbers }

// Lines returns the lines in model order.
func (e *Editor) Lines() []*Line { return slices.Clone(e.lines) }

// Regions returns the regions in model order.
func (e *Editor) Regions() []*Region { return slices.Clone(e.regions) }

// SetDisableBindings toggles keyboard shortcuts, e.g. while a text widget
// has focus.
func (e *Editor) SetDisableBindings(v bool) { e.opts.DisableBindings = v }

func (e *Editor) allocID() int {
	e.nextID++
	return e.nextID
}

// MaxOrder returns the highest line order, or -1 without lines.
func (e *Editor) MaxOrder() int {
	m := -1
	for _, l := range e.lines {
		m = max(m, l.order)
	}
	return m
}

func (e *Editor) context(ctx map[string]any) map[string]any {
	if ctx == nil {
		ctx = map[string]any{}
	}
	if e.opts.IDField != "" {
		if _, ok := ctx[e.opts.IDField]; !ok {
			ctx[e.opts.IDField] = nil
		}
	}
	return ctx
}

// CreateLine adds a committed line. A nil order takes MaxOrder()+1. The
// baseline is rounded and stored left to right; a nil baseline makes a
// mask-only line.
func (e *Editor) CreateLine(order *int, baseline, mask []vector.Pt, ctx map[string]any) *Line {
	l := e.newLine(order, baseline, mask, ctx)
	l.normalize()
	l.baseline = vector.RoundAll(l.baselinePoints())
	l.mask = vector.RoundAll(l.maskPoints())
	if l.maskPath != 0 {
		e.surface.SetPoints(l.maskPath, l.mask)
	}
	if l.baselinePath != 0 {
		e.surface.SetPoints(l.baselinePath, l.baseline)
	}
	l.refresh()
	return l
}

// newLine creates the line and its paths without committing geometry, so
// that the first UpdateFromSurface reports it.
func (e *Editor) newLine(order *int, baseline, mask []vector.Pt, ctx map[string]any) *Line {
	o := e.MaxOrder() + 1
	if order != nil {
		o = *order
	}
	l := &Line{
		ed:            e,
		id:            e.allocID(),
		order:         o,
		TextDirection: e.opts.DefaultTextDirection,
		ctx:           e.context(ctx),
	}
	if baseline != nil {
		l.baselinePath = e.surface.CreatePath(vector.RoundAll(baseline), false, e.baselineStyle())
	}
	if len(mask) > 0 {
		l.setMaskPoints(mask)
	}
	e.lines = append(e.lines, l)
	return l
}

// CreateRegion adds a committed region.
func (e *Editor) CreateRegion(order *int, polygon []vector.Pt, ctx map[string]any) *Region {
	r := e.newRegion(order, polygon, ctx)
	r.polygon = vector.RoundAll(polygon)
	e.surface.SetPoints(r.path, r.polygon)
	return r
}

func (e *Editor) newRegion(order *int, polygon []vector.Pt, ctx map[string]any) *Region {
	r := &Region{ed: e, id: e.allocID(), order: order, ctx: e.context(ctx)}
	r.path = e.surface.CreatePath(polygon, true, e.regionStyle())
	e.regions = append(e.regions, r)
	return r
}

func (e *Editor) dropLine(l *Line) {
	e.lines = slices.DeleteFunc(e.lines, func(o *Line) bool { return o == l })
}

func (e *Editor) dropRegion(r *Region) {
	e.regions = slices.DeleteFunc(e.regions, func(o *Region) bool { return o == r })
}

// Load converts a payload into entities. Lines without a baseline force the
// masks visible. Line orders come from the payload or the payload position.
func (e *Editor) Load(p domain.Payload) {
	for i, lp := range p.Lines {
		ctx := map[string]any{}
		if e.opts.IDField != "" {
			ctx[e.opts.IDField] = lp.ID
		}
		if lp.Baseline == nil {
			e.ToggleMasks(true)
		}
		order := i
		if lp.Order != nil {
			order = *lp.Order
		}
		l := e.CreateLine(&order, fromPolyline(lp.Baseline), fromPolyline(lp.Mask), ctx)
		if lp.TextDirection == string(RightToLeft) {
			l.TextDirection = RightToLeft
		}
	}
	for _, rp := range p.Regions {
		ctx := map[string]any{}
		if e.opts.IDField != "" {
			ctx[e.opts.IDField] = rp.ID
		}
		e.CreateRegion(rp.Order, fromPolyline(rp.Box), ctx)
	}
	e.avgHeight = 0
	for _, l := range e.lines {
		l.refresh()
	}
	e.log.Info("payload loaded", "lines", len(p.Lines), "regions", len(p.Regions))
}

// LoadJSON decodes, validates and loads a JSON payload. Nothing is loaded
// when decoding fails.
func (e *Editor) LoadJSON(data []byte) error {
	p, err := domain.Decode(data, e.opts.IDField)
	if err != nil {
		return err
	}
	e.Load(p)
	return nil
}

// Export returns the committed geometry in model order.
func (e *Editor) Export() domain.Export {
	out := domain.Export{
		Regions: make([]domain.Polyline, 0, len(e.regions)),
		Lines:   make([]domain.ExportLine, 0, len(e.lines)),
	}
	for _, r := range e.regions {
		out.Regions = append(out.Regions, toPolyline(r.polygon))
	}
	for _, l := range e.lines {
		out.Lines = append(out.Lines, domain.ExportLine{Baseline: toPolyline(l.baseline), Mask: toPolyline(l.mask)})
	}
	return out
}

// Payload returns the model in load format, including orders and
// correlation ids.
func (e *Editor) Payload() domain.Payload {
	var p domain.Payload
	for _, l := range e.lines {
		o := l.order
		p.Lines = append(p.Lines, domain.LinePayload{
			Baseline:      toPolyline(l.baseline),
			Mask:          toPolyline(l.mask),
			Order:         &o,
			TextDirection: string(l.TextDirection),
			ID:            e.CorrelationID(l),
		})
	}
	for _, r := range e.regions {
		p.Regions = append(p.Regions, domain.RegionPayload{Box: toPolyline(r.polygon), Order: r.order, ID: e.CorrelationID(r)})
	}
	return p
}

// Reset removes every entity without notifications, e.g. when the page
// image changes. Ids keep increasing.
func (e *Editor) Reset() {
	e.cancelGesture()
	e.PurgeSelection(nil)
	for i := len(e.lines) - 1; i >= 0; i-- {
		e.lines[i].Remove()
	}
	for i := len(e.regions) - 1; i >= 0; i-- {
		e.regions[i].Remove()
	}
	e.avgHeight = 0
	e.log.Info("editor reset")
}

// CorrelationID returns the persisted id of ent, or nil.
func (e *Editor) CorrelationID(ent Entity) any {
	if e.opts.IDField == "" {
		return nil
	}
	return ent.Context()[e.opts.IDField]
}

// SetCorrelationID records the id assigned by the persistence layer.
func (e *Editor) SetCorrelationID(ent Entity, id any) {
	if e.opts.IDField == "" {
		return
	}
	ent.Context()[e.opts.IDField] = id
}

// averageLineHeight is the mean vertical distance between the first
// baseline points of consecutive lines, in order. The value is cached until
// the next load or reset.
func (e *Editor) averageLineHeight() float64 {
	if e.avgHeight > 0 {
		return e.avgHeight
	}
	ls := slices.Clone(e.lines)
	sort.SliceStable(ls, func(i, j int) bool { return ls[i].order < ls[j].order })
	var firsts []vector.Pt
	for _, l := range ls {
		if pts := l.baselinePoints(); len(pts) > 0 {
			firsts = append(firsts, pts[0])
		}
	}
	if len(firsts) < 2 {
		return 0
	}
	gaps := make([]float64, 0, len(firsts)-1)
	for i := 1; i < len(firsts); i++ {
		gaps = append(gaps, math.Abs(firsts[i].Y-firsts[i-1].Y))
	}
	e.avgHeight = math.Round(stat.Mean(gaps, nil))
	return e.avgHeight
}

// ToggleMasks flips mask visibility; force keeps them shown.
func (e *Editor) ToggleMasks(force bool) {
	e.showMasks = force || !e.showMasks
	for _, l := range e.lines {
		if l.maskPath == 0 {
			continue
		}
		visible := e.showMasks || l.baselinePath == 0
		e.surface.SetVisible(l.maskPath, visible)
		if !visible {
			e.removeSegmentsOf(l.maskPath)
			e.surface.SetSelected(l.maskPath, false)
		} else if l.selected {
			e.surface.SetSelected(l.maskPath, true)
		}
	}
}

// ToggleOrdering flips the visibility of the order badges.
func (e *Editor) ToggleOrdering() {
	e.showLineNumbers = !e.showLineNumbers
	for _, l := range e.lines {
		if l.badge != 0 {
			e.surface.SetVisible(l.badge, e.showLineNumbers)
		}
	}
}

// ToggleRegionMode switches between line and region editing.
func (e *Editor) ToggleRegionMode() {
	e.PurgeSelection(nil)
	if e.mode == LinesMode {
		e.mode = RegionsMode
	} else {
		e.mode = LinesMode
	}
	for _, r := range e.regions {
		r.restyle()
	}
}

// ToggleCutting flips cut mode: plain presses then start a cut rectangle.
func (e *Editor) ToggleCutting() { e.cutting = !e.cutting }

// SelectAll selects every entity of the current mode.
func (e *Editor) SelectAll() {
	if e.mode == RegionsMode {
		for _, r := range e.regions {
			r.Select()
		}
		return
	}
	for _, l := range e.lines {
		l.Select()
	}
}

// RegenerateMask replaces the mask of l with one derived from its baseline
// and commits it.
func (e *Editor) RegenerateMask(l *Line) {
	mask := l.maskFromBaseline()
	if mask == nil {
		return
	}
	l.setMaskPoints(mask)
	l.refresh()
	l.UpdateFromSurface()
}

// clamp keeps p inside the natural image, in model coordinates.
func (e *Editor) clamp(p vector.Pt) vector.Pt {
	p.X = math.Max(0, p.X)
	p.Y = math.Max(0, p.Y)
	if w := e.opts.ImageWidth; w > 0 {
		p.X = math.Min(p.X, w/e.opts.Scale)
	}
	if h := e.opts.ImageHeight; h > 0 {
		p.Y = math.Min(p.Y, h/e.opts.Scale)
	}
	return p
}

// ownerOf returns the entity owning path h.
func (e *Editor) ownerOf(h vector.Handle) Entity {
	for _, l := range e.lines {
		if l.baselinePath == h || l.maskPath == h {
			return l
		}
	}
	for _, r := range e.regions {
		if r.path == h {
			return r
		}
	}
	return nil
}

func (e *Editor) baselineStyle() vector.Style {
	return vector.Style{
		Stroke:        vector.Stroke{Color: e.colors.Main, Width: math.Max(3, 7/e.opts.Scale), Cap: vector.CapButt, Enabled: true},
		Opacity:       0.5,
		SelectedColor: vector.Black,
	}
}

func (e *Editor) maskStyle() vector.Style {
	return vector.Style{
		Fill:          vector.Fill{Color: e.colors.Main, Enabled: true},
		Opacity:       0.1,
		SelectedColor: e.colors.Secondary,
	}
}

func (e *Editor) hintStyle() vector.Style {
	return vector.Style{
		Stroke:  vector.Stroke{Color: e.colors.Main, Width: math.Max(2, 4/e.opts.Scale), Enabled: true},
		Opacity: 0.5,
	}
}

func (e *Editor) badgeStyle() vector.Style {
	return vector.Style{
		Fill:   vector.Fill{Color: vector.Yellow, Enabled: true},
		Stroke: vector.Stroke{Color: vector.Black, Width: 1, Enabled: true},
	}
}

func (e *Editor) regionStyle() vector.Style {
	st := vector.Style{
		Stroke:  vector.Stroke{Color: e.colors.Main, Width: 1, Enabled: true},
		Opacity: 0.2,
	}
	if e.mode == RegionsMode {
		st.Fill = vector.Fill{Color: e.colors.Secondary, Enabled: true}
	}
	return st
}

func (e *Editor) helperStyle() vector.Style {
	return vector.Style{Stroke: vector.Stroke{Color: vector.Grey, Width: math.Max(2, 2/e.opts.Scale), Enabled: true}}
}

func (e *Editor) markerStyle() vector.Style {
	return vector.Style{
		Fill:   vector.Fill{Color: vector.Red, Enabled: true},
		Stroke: vector.Stroke{Color: vector.Red, Width: 2, Enabled: true},
	}
}
