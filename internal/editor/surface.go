/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "segmenter/internal/vector"

// Surface is the drawing backend the editor renders into and queries for
// geometry. Entities only keep opaque handles into it. *vector.Scene is the
// in-process implementation.
type Surface interface {
	CreatePath(pts []vector.Pt, closed bool, st vector.Style) vector.Handle
	CreateBadge(at vector.Pt, radius float64, label string, st vector.Style) vector.Handle
	Remove(h vector.Handle)
	Exists(h vector.Handle) bool

	Points(h vector.Handle) []vector.Pt
	SetPoints(h vector.Handle, pts []vector.Pt)
	MovePoint(h vector.Handle, i int, p vector.Pt)
	InsertPoint(h vector.Handle, i int, p vector.Pt)
	RemovePoint(h vector.Handle, i int)
	SetBadge(h vector.Handle, at vector.Pt, label string)

	Style(h vector.Handle) vector.Style
	SetStyle(h vector.Handle, st vector.Style)
	Visible(h vector.Handle) bool
	SetVisible(h vector.Handle, v bool)
	SetSelected(h vector.Handle, v bool)
	SetPointSelected(h vector.Handle, i int, v bool)
	PointSelected(h vector.Handle, i int) bool
	BringToFront(h vector.Handle)
	SendToBack(h vector.Handle)

	HitPath(h vector.Handle, p vector.Pt, tol float64) bool
	HitPoint(h vector.Handle, p vector.Pt, tol float64) int
	NearestLocation(h vector.Handle, p vector.Pt) vector.Location
	Intersections(a, b vector.Handle) []vector.Location
	NormalAt(h vector.Handle, loc vector.Location) vector.Pt
	Contains(h vector.Handle, p vector.Pt) bool
	Length(h vector.Handle) float64
	Bounds(h vector.Handle) vector.Rect
}

var _ Surface = (*vector.Scene)(nil)
