/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package domain

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeLinesAndRegions(t *testing.T) {
	data := []byte(`{
		"lines": [
			{"baseline": [[0,0],[100,0]], "mask": [[0,-10],[100,-10],[100,5],[0,5]], "pk": 12},
			{"baseline": null, "mask": [[0,0],[1,0],[1,1]], "pk": null}
		],
		"regions": [{"box": [[0,0],[10,0],[10,10]], "order": 3, "pk": "r-7"}]
	}`)
	p, err := Decode(data, "pk")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(p.Lines) != 2 || len(p.Regions) != 1 {
		t.Fatalf("counts: %d lines, %d regions", len(p.Lines), len(p.Regions))
	}
	if diff := cmp.Diff(Polyline{{0, 0}, {100, 0}}, p.Lines[0].Baseline); diff != "" {
		t.Fatalf("baseline mismatch (-want +got):\n%s", diff)
	}
	if p.Lines[0].ID != json.Number("12") {
		t.Fatalf("id = %#v", p.Lines[0].ID)
	}
	if p.Lines[1].Baseline != nil || p.Lines[1].ID != nil {
		t.Fatalf("second line should be maskless without id: %+v", p.Lines[1])
	}
	if !p.HasMasklessLines() {
		t.Fatalf("expected maskless line detection")
	}
	if p.Regions[0].Order == nil || *p.Regions[0].Order != 3 || p.Regions[0].ID != "r-7" {
		t.Fatalf("region: %+v", p.Regions[0])
	}
}

func TestDecodeMalformedBaselineIsLenient(t *testing.T) {
	p, err := Decode([]byte(`{"lines":[{"baseline":"oops","mask":[[0,0],[1,0],[1,1]]}]}`), "id")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if p.Lines[0].Baseline != nil || len(p.Lines[0].Mask) != 3 {
		t.Fatalf("unexpected line: %+v", p.Lines[0])
	}
}

func TestDecodeRejectsInvalidStructure(t *testing.T) {
	cases := []string{
		`not json`,
		`{"regions":[{"box":[[0,0],[1,1]]}]}`,
		`{"lines":"nope"}`,
	}
	for _, c := range cases {
		if _, err := Decode([]byte(c), "id"); !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("%s: expected ErrInvalidPayload, got %v", c, err)
		}
	}
}

func TestEncodeDecodeKeepsIDs(t *testing.T) {
	one := 1
	p := Payload{
		Lines:   []LinePayload{{Baseline: Polyline{{1, 2}, {3, 4}}, Order: &one, ID: json.Number("5")}},
		Regions: []RegionPayload{{Box: Polyline{{0, 0}, {5, 0}, {5, 5}}}},
	}
	data, err := p.Encode("id")
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	back, err := Decode(data, "id")
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if diff := cmp.Diff(p, back); diff != "" {
		t.Fatalf("payload mismatch (-want +got):\n%s", diff)
	}
}

func TestIDInt64(t *testing.T) {
	if n, ok := IDInt64(json.Number("42")); !ok || n != 42 {
		t.Fatalf("json.Number: %d %v", n, ok)
	}
	if _, ok := IDInt64(nil); ok {
		t.Fatalf("nil must not convert")
	}
	if n, ok := IDInt64("7"); !ok || n != 7 {
		t.Fatalf("string: %d %v", n, ok)
	}
}
