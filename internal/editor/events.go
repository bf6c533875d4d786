/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */

package editor

import "segmenter/internal/domain"

// EventType names an outbound notification.
type EventType string

const (
	EventUpdate       EventType = "update"
	EventDeleteLine   EventType = "delete-line"
	EventDeleteRegion EventType = "delete-region"
	EventSelection    EventType = "selection"
)

// Geometry is the stored geometry of an entity before a change.
type Geometry struct {
	Baseline domain.Polyline
	Mask     domain.Polyline
	Polygon  domain.Polyline
}

// Event is delivered synchronously to subscribers after a committed change.
// Previous holds the geometry of Lines (then Regions) before the change, in
// the same order.
type Event struct {
	Type      EventType
	Lines     []*Line
	Regions   []*Region
	Previous  []Geometry
	Target    Entity
	Selection Snapshot
}

// Handler receives editor events.
type Handler func(Event)

type emitter struct {
	next     int
	handlers map[int]Handler
	order    []int
}

// Subscribe registers h and returns a function that removes it.
func (e *Editor) Subscribe(h Handler) (unsubscribe func()) {
	em := &e.events
	if em.handlers == nil {
		em.handlers = map[int]Handler{}
	}
	em.next++
	id := em.next
	em.handlers[id] = h
	em.order = append(em.order, id)
	return func() {
		delete(em.handlers, id)
		for i, o := range em.order {
			if o == id {
				em.order = append(em.order[:i], em.order[i+1:]...)
				break
			}
		}
	}
}

func (e *Editor) emit(ev Event) {
	for _, id := range append([]int(nil), e.events.order...) {
		if h, ok := e.events.handlers[id]; ok {
			h(ev)
		}
	}
}
