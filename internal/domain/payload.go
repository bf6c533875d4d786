/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

// Load and export payloads exchanged with the host. Baselines and masks are
// decoded leniently: a malformed or missing value becomes nil so the line is
// kept as a mask-only (or empty) line instead of failing the whole load.

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	gojsonschema "github.com/xeipuuv/gojsonschema"
)

//go:embed payload.schema.json
var schemaJSON []byte

// ErrInvalidPayload is returned when a payload is not valid JSON or does not
// match the payload schema.
var ErrInvalidPayload = errors.New("invalid payload")

// Point is an [x, y] pair.
type Point [2]float64

// Polyline is an ordered list of points.
type Polyline []Point

// LinePayload is one line of a load payload. ID is the correlation id under
// the configured id field; nil means "not yet persisted".
type LinePayload struct {
	Baseline      Polyline
	Mask          Polyline
	Order         *int
	TextDirection string
	ID            any
}

// RegionPayload is one region of a load payload.
type RegionPayload struct {
	Box   Polyline
	Order *int
	ID    any
}

// Payload is a full lines/regions document.
type Payload struct {
	Lines   []LinePayload
	Regions []RegionPayload
}

// HasMasklessLines reports whether any line lacks a baseline.
func (p Payload) HasMasklessLines() bool {
	for _, l := range p.Lines {
		if l.Baseline == nil {
			return true
		}
	}
	return false
}

// Decode validates data against the payload schema and decodes it. idField
// names the correlation id member; empty disables id extraction.
func Decode(data []byte, idField string) (Payload, error) {
	res, err := gojsonschema.Validate(gojsonschema.NewBytesLoader(schemaJSON), gojsonschema.NewBytesLoader(data))
	if err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}
	if !res.Valid() {
		msgs := make([]string, 0, len(res.Errors()))
		for _, e := range res.Errors() {
			msgs = append(msgs, e.String())
		}
		return Payload{}, fmt.Errorf("%w: %s", ErrInvalidPayload, strings.Join(msgs, "; "))
	}

	var raw struct {
		Lines   []map[string]json.RawMessage `json:"lines"`
		Regions []map[string]json.RawMessage `json:"regions"`
	}
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return Payload{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var p Payload
	for _, m := range raw.Lines {
		l := LinePayload{
			Baseline: lenientPolyline(m["baseline"]),
			Mask:     lenientPolyline(m["mask"]),
			Order:    optInt(m["order"]),
		}
		if s, ok := decodeString(m["text_direction"]); ok {
			l.TextDirection = s
		}
		if idField != "" {
			l.ID = decodeID(m[idField])
		}
		p.Lines = append(p.Lines, l)
	}
	for _, m := range raw.Regions {
		r := RegionPayload{Box: lenientPolyline(m["box"]), Order: optInt(m["order"])}
		if idField != "" {
			r.ID = decodeID(m[idField])
		}
		p.Regions = append(p.Regions, r)
	}
	return p, nil
}

func lenientPolyline(raw json.RawMessage) Polyline {
	if len(raw) == 0 {
		return nil
	}
	var pl Polyline
	if err := json.Unmarshal(raw, &pl); err != nil {
		return nil
	}
	if len(pl) == 0 {
		return nil
	}
	return pl
}

func optInt(raw json.RawMessage) *int {
	if len(raw) == 0 {
		return nil
	}
	var v *int
	if err := json.Unmarshal(raw, &v); err != nil {
		return nil
	}
	return v
}

func decodeString(raw json.RawMessage) (string, bool) {
	var s string
	if len(raw) == 0 || json.Unmarshal(raw, &s) != nil {
		return "", false
	}
	return s, true
}

// decodeID keeps numbers as json.Number and strings as string; null becomes nil.
func decodeID(raw json.RawMessage) any {
	if len(raw) == 0 {
		return nil
	}
	dec := json.NewDecoder(bytes.NewReader(raw))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil
	}
	return v
}

// IDInt64 converts a correlation id to an integer row id when possible.
func IDInt64(id any) (int64, bool) {
	switch v := id.(type) {
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case int64:
		return v, true
	case int:
		return int64(v), true
	case float64:
		return int64(v), v == float64(int64(v))
	case string:
		n, err := strconv.ParseInt(v, 10, 64)
		return n, err == nil
	}
	return 0, false
}

// Encode renders the payload back to the load format, writing ids under
// idField when it is set.
func (p Payload) Encode(idField string) ([]byte, error) {
	type obj = map[string]any
	out := obj{}
	lines := make([]obj, 0, len(p.Lines))
	for _, l := range p.Lines {
		o := obj{"baseline": l.Baseline, "mask": l.Mask}
		if l.Order != nil {
			o["order"] = *l.Order
		}
		if l.TextDirection != "" {
			o["text_direction"] = l.TextDirection
		}
		if idField != "" {
			o[idField] = l.ID
		}
		lines = append(lines, o)
	}
	regions := make([]obj, 0, len(p.Regions))
	for _, r := range p.Regions {
		o := obj{"box": r.Box}
		if r.Order != nil {
			o["order"] = *r.Order
		}
		if idField != "" {
			o[idField] = r.ID
		}
		regions = append(regions, o)
	}
	out["lines"] = lines
	out["regions"] = regions
	return json.MarshalIndent(out, "", "  ")
}

// ExportLine is one line of an export document.
type ExportLine struct {
	Baseline Polyline `json:"baseline"`
	Mask     Polyline `json:"mask"`
}

// Export is the document produced by the editor: region polygons and lines
// in model order.
type Export struct {
	Regions []Polyline   `json:"regions"`
	Lines   []ExportLine `json:"lines"`
}
