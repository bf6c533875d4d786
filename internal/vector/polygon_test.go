/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package vector

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCentroidAndArea(t *testing.T) {
	sq := R(0, 0, 10, 20).Corners()
	if c := Centroid(sq); math.Abs(c.X-5) > 1e-9 || math.Abs(c.Y-10) > 1e-9 {
		t.Fatalf("centroid = %+v", c)
	}
	flat := []Pt{{0, 0}, {10, 0}, {20, 0}}
	if Area(flat) != 0 {
		t.Fatalf("collinear ring has area %v", Area(flat))
	}
	if c := Centroid(flat); c != (Pt{10, 0}) {
		t.Fatalf("degenerate centroid = %+v", c)
	}
}

func TestContainsAndInteriorPoint(t *testing.T) {
	// U shape whose centroid lies outside
	u := []Pt{{0, 0}, {10, 0}, {10, 100}, {90, 100}, {90, 0}, {100, 0}, {100, 110}, {0, 110}}
	ip := InteriorPoint(u)
	if !ContainsPoint(u, ip) {
		t.Fatalf("interior point %+v outside polygon", ip)
	}
	if ContainsPoint(u, Pt{50, 50}) {
		t.Fatalf("notch must be outside")
	}
	if ContainsPoint([]Pt{{0, 0}, {10, 0}}, Pt{5, 0}) {
		t.Fatalf("a two-point ring contains nothing")
	}
}

func TestDifferenceSplitsAcrossQuad(t *testing.T) {
	mask := R(0, -20, 100, 30).Corners()
	quad := ClipQuad(Pt{40, 0}, Pt{0, 1}, Pt{60, 0}, Pt{0, 1}, 50)
	pieces, err := Difference(mask, quad)
	if err != nil {
		t.Fatalf("difference: %v", err)
	}
	if len(pieces) != 2 {
		t.Fatalf("want 2 pieces, got %d: %v", len(pieces), pieces)
	}
	var got []Rect
	for _, p := range pieces {
		b := Bounds(RoundAll(p))
		got = append(got, b)
	}
	want := []Rect{{X: 0, Y: -20, W: 40, H: 30}, {X: 60, Y: -20, W: 40, H: 30}}
	if got[0].X > got[1].X {
		got[0], got[1] = got[1], got[0]
	}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("pieces mismatch (-want +got):\n%s", diff)
	}
	total := Area(pieces[0]) + Area(pieces[1])
	if math.Abs(total-2400) > 1e-6 {
		t.Fatalf("areas do not add up: %v", total)
	}
}

func TestDifferenceOutsideKeepsSubject(t *testing.T) {
	mask := R(0, 0, 100, 30).Corners()
	pieces, err := Difference(mask, ClipQuad(Pt{200, 15}, Pt{0, 1}, Pt{220, 15}, Pt{0, 1}, 50))
	if err != nil {
		t.Fatalf("difference: %v", err)
	}
	if len(pieces) != 1 || math.Abs(Area(pieces[0])-3000) > 1e-6 {
		t.Fatalf("pieces = %v", pieces)
	}
}

func TestDifferenceRejectsDegenerateInput(t *testing.T) {
	if _, err := Difference([]Pt{{0, 0}, {1, 1}}, R(0, 0, 1, 1).Corners()); !errors.Is(err, ErrDegenerate) {
		t.Fatalf("err = %v, want ErrDegenerate", err)
	}
	bowtie := []Pt{{0, 0}, {10, 10}, {10, 0}, {0, 10}}
	if _, err := Difference(R(0, 0, 20, 20).Corners(), bowtie); err == nil {
		t.Fatalf("self-intersecting clip accepted")
	}
}
