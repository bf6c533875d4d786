/*
 * Copyright (c) 2025 by Alexander Drost, Oldenburg, Germany.
 * This file is licensed to you under the Apache License, Version 2.0 (the "License"); you may not use this file except in compliance with the License.  You may obtain a copy of the License at
 *   http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software distributed under the License is distributed on an
 * "AS IS" BASIS, WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.  See the License for the specific language governing permissions and limitations under the License.
 */


package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"segmenter/internal/domain"
	"segmenter/internal/editor"
	applog "segmenter/internal/log"
)

// ErrNoIDField is returned by Attach when the editor does not track
// correlation ids.
var ErrNoIDField = errors.New("storage: editor has no correlation id field")

const syncTimeout = 5 * time.Second

// Sync mirrors the edits of one editor into one stored document. Failures
// are not retried: they are logged and handed to OnError.
type Sync struct {
	store *Store
	key   string
	docID int64
	log   *slog.Logger

	ed          *editor.Editor
	unsubscribe func()

	// OnError, when set, receives every persistence failure.
	OnError func(error)
}

// NewSync prepares a sync for document key, creating the document when
// missing.
func NewSync(ctx context.Context, store *Store, key string) (*Sync, error) {
	docID, err := store.EnsureDocument(ctx, key, 0, 0)
	if err != nil {
		return nil, err
	}
	return &Sync{
		store: store,
		key:   key,
		docID: docID,
		log:   applog.WithComponent("sync"),
	}, nil
}

// DocumentID returns the id of the synced document.
func (s *Sync) DocumentID() int64 { return s.docID }

// Attach subscribes to ed. A sync follows one editor at a time; attaching
// again detaches from the previous one.
func (s *Sync) Attach(ed *editor.Editor) error {
	if ed.Options().IDField == "" {
		return ErrNoIDField
	}
	s.Detach()
	s.ed = ed
	s.unsubscribe = ed.Subscribe(s.handle)
	s.log.Debug("attached", slog.String("document", s.key))
	return nil
}

// Detach stops following the editor.
func (s *Sync) Detach() {
	if s.unsubscribe != nil {
		s.unsubscribe()
		s.unsubscribe = nil
		s.log.Debug("detached")
	}
	s.ed = nil
}

func (s *Sync) handle(ev editor.Event) {
	ctx, cancel := context.WithTimeout(applog.ContextWithDocument(context.Background(), s.key), syncTimeout)
	defer cancel()
	switch ev.Type {
	case editor.EventUpdate:
		for _, l := range ev.Lines {
			s.saveLine(ctx, l)
		}
		for _, r := range ev.Regions {
			s.saveRegion(ctx, r)
		}
	case editor.EventDeleteLine:
		for _, l := range ev.Lines {
			if id, ok := s.id(l); ok {
				s.report(ctx, ignoreMissing(s.store.DeleteLine(ctx, id)))
			}
		}
	case editor.EventDeleteRegion:
		for _, r := range ev.Regions {
			if id, ok := s.id(r); ok {
				s.report(ctx, ignoreMissing(s.store.DeleteRegion(ctx, id)))
			}
		}
	}
}

func (s *Sync) id(ent editor.Entity) (int64, bool) {
	return domain.IDInt64(s.ed.CorrelationID(ent))
}

func (s *Sync) saveLine(ctx context.Context, l *editor.Line) {
	g := l.Geometry()
	rec := LineRecord{Order: l.Order(), Baseline: g.Baseline, Mask: g.Mask, Direction: string(l.TextDirection)}
	rec.ID, _ = s.id(l)
	id, err := s.store.SaveLine(ctx, s.docID, rec)
	if errors.Is(err, ErrNotFound) {
		// the row was removed behind our back; store the line afresh
		s.log.WarnContext(ctx, "line row missing, inserting", slog.Int64("id", rec.ID))
		rec.ID = 0
		id, err = s.store.SaveLine(ctx, s.docID, rec)
	}
	if err != nil {
		s.report(ctx, fmt.Errorf("save line %d: %w", l.ID(), err))
		return
	}
	if id != rec.ID {
		s.ed.SetCorrelationID(l, id)
	}
}

func (s *Sync) saveRegion(ctx context.Context, r *editor.Region) {
	rec := RegionRecord{Box: r.Geometry().Polygon}
	if o, ok := r.Order(); ok {
		rec.Order = &o
	}
	rec.ID, _ = s.id(r)
	id, err := s.store.SaveRegion(ctx, s.docID, rec)
	if errors.Is(err, ErrNotFound) {
		s.log.WarnContext(ctx, "region row missing, inserting", slog.Int64("id", rec.ID))
		rec.ID = 0
		id, err = s.store.SaveRegion(ctx, s.docID, rec)
	}
	if err != nil {
		s.report(ctx, fmt.Errorf("save region %d: %w", r.ID(), err))
		return
	}
	if id != rec.ID {
		s.ed.SetCorrelationID(r, id)
	}
}

func (s *Sync) report(ctx context.Context, err error) {
	if err == nil {
		return
	}
	s.log.ErrorContext(ctx, "persistence failed", slog.Any("err", err))
	if s.OnError != nil {
		s.OnError(err)
	}
}

// ignoreMissing treats deleting an already deleted row as success.
func ignoreMissing(err error) error {
	if errors.Is(err, ErrNotFound) {
		return nil
	}
	return err
}
