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
	"fmt"
	"log/slog"

	"segmenter/internal/domain"
	applog "segmenter/internal/log"
)

// LoadPayload returns a stored document in load format. Row ids become the
// correlation ids.
func (s *Store) LoadPayload(ctx context.Context, key string) (domain.Payload, error) {
	var p domain.Payload
	docID, err := s.DocumentID(ctx, key)
	if err != nil {
		return p, err
	}
	lines, err := s.Lines(ctx, docID)
	if err != nil {
		return p, err
	}
	regions, err := s.Regions(ctx, docID)
	if err != nil {
		return p, err
	}
	for _, rec := range lines {
		o := rec.Order
		p.Lines = append(p.Lines, domain.LinePayload{
			Baseline:      rec.Baseline,
			Mask:          rec.Mask,
			Order:         &o,
			TextDirection: rec.Direction,
			ID:            rec.ID,
		})
	}
	for _, rec := range regions {
		p.Regions = append(p.Regions, domain.RegionPayload{Box: rec.Box, Order: rec.Order, ID: rec.ID})
	}
	return p, nil
}

// ImportPayload replaces the content of document key with p in a single
// transaction. Lines without an order take their payload position.
func (s *Store) ImportPayload(ctx context.Context, key string, p domain.Payload) (lines, regions int, err error) {
	l := applog.WithOperation(s.log, "import").With(slog.String("document", key))
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return 0, 0, fmt.Errorf("begin import: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
			l.Error("import failed", slog.Any("err", err))
		}
	}()

	docID, err := ensureDocument(ctx, tx, key, 0, 0)
	if err != nil {
		return 0, 0, err
	}
	for _, q := range []string{`DELETE FROM lines WHERE document_id = ?`, `DELETE FROM regions WHERE document_id = ?`} {
		if _, err = tx.ExecContext(ctx, q, docID); err != nil {
			return 0, 0, fmt.Errorf("clear document: %w", err)
		}
	}
	for i, lp := range p.Lines {
		rec := LineRecord{Order: i, Baseline: lp.Baseline, Mask: lp.Mask, Direction: lp.TextDirection}
		if lp.Order != nil {
			rec.Order = *lp.Order
		}
		if _, err = saveLine(ctx, tx, docID, rec); err != nil {
			return 0, 0, err
		}
	}
	for _, rp := range p.Regions {
		if _, err = saveRegion(ctx, tx, docID, RegionRecord{Order: rp.Order, Box: rp.Box}); err != nil {
			return 0, 0, err
		}
	}
	if err = tx.Commit(); err != nil {
		return 0, 0, fmt.Errorf("commit import: %w", err)
	}
	l.Info("document imported", slog.Int("lines", len(p.Lines)), slog.Int("regions", len(p.Regions)))
	return len(p.Lines), len(p.Regions), nil
}
