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
	"database/sql"
	"encoding/json"
	"fmt"

	"segmenter/internal/domain"
)

// language=SQL
// dialect=SQLite
const insertLineSQL = `INSERT INTO lines(document_id, ord, baseline, mask, direction) VALUES (?, ?, ?, ?, ?)`

// language=SQL
// dialect=SQLite
const updateLineSQL = `UPDATE lines SET ord = ?, baseline = ?, mask = ?, direction = ? WHERE id = ? AND document_id = ?`

// language=SQL
// dialect=SQLite
const selectLinesSQL = `SELECT id, ord, baseline, mask, direction FROM lines WHERE document_id = ? ORDER BY ord, id`

// language=SQL
// dialect=SQLite
const insertRegionSQL = `INSERT INTO regions(document_id, ord, box) VALUES (?, ?, ?)`

// language=SQL
// dialect=SQLite
const updateRegionSQL = `UPDATE regions SET ord = ?, box = ? WHERE id = ? AND document_id = ?`

// language=SQL
// dialect=SQLite
const selectRegionsSQL = `SELECT id, ord, box FROM regions WHERE document_id = ? ORDER BY id`

// LineRecord is a stored line. ID 0 means not yet stored.
type LineRecord struct {
	ID        int64
	Order     int
	Baseline  domain.Polyline
	Mask      domain.Polyline
	Direction string
}

// RegionRecord is a stored region. ID 0 means not yet stored.
type RegionRecord struct {
	ID    int64
	Order *int
	Box   domain.Polyline
}

// SaveLine inserts rec when its ID is 0 and updates it otherwise. It returns
// the row id. Updating a missing row yields ErrNotFound.
func (s *Store) SaveLine(ctx context.Context, docID int64, rec LineRecord) (int64, error) {
	return saveLine(ctx, s.db, docID, rec)
}

func saveLine(ctx context.Context, q queryer, docID int64, rec LineRecord) (int64, error) {
	baseline, err := encodePolyline(rec.Baseline)
	if err != nil {
		return 0, err
	}
	mask, err := encodePolyline(rec.Mask)
	if err != nil {
		return 0, err
	}
	dir := rec.Direction
	if dir == "" {
		dir = "lr"
	}
	if rec.ID == 0 {
		res, err := q.ExecContext(ctx, insertLineSQL, docID, rec.Order, baseline, mask, dir)
		if err != nil {
			return 0, fmt.Errorf("insert line: %w", err)
		}
		return res.LastInsertId()
	}
	res, err := q.ExecContext(ctx, updateLineSQL, rec.Order, baseline, mask, dir, rec.ID, docID)
	if err != nil {
		return 0, fmt.Errorf("update line %d: %w", rec.ID, err)
	}
	return rec.ID, affected(res, fmt.Sprintf("line %d", rec.ID))
}

// DeleteLine removes a line row.
func (s *Store) DeleteLine(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM lines WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete line %d: %w", id, err)
	}
	return affected(res, fmt.Sprintf("line %d", id))
}

// Lines returns the lines of a document by order.
func (s *Store) Lines(ctx context.Context, docID int64) ([]LineRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectLinesSQL, docID)
	if err != nil {
		return nil, fmt.Errorf("list lines: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []LineRecord
	for rows.Next() {
		var rec LineRecord
		var baseline, mask sql.NullString
		if err := rows.Scan(&rec.ID, &rec.Order, &baseline, &mask, &rec.Direction); err != nil {
			return nil, err
		}
		if rec.Baseline, err = decodePolyline(baseline); err != nil {
			return nil, fmt.Errorf("line %d baseline: %w", rec.ID, err)
		}
		if rec.Mask, err = decodePolyline(mask); err != nil {
			return nil, fmt.Errorf("line %d mask: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// SaveRegion is the region counterpart of SaveLine.
func (s *Store) SaveRegion(ctx context.Context, docID int64, rec RegionRecord) (int64, error) {
	return saveRegion(ctx, s.db, docID, rec)
}

func saveRegion(ctx context.Context, q queryer, docID int64, rec RegionRecord) (int64, error) {
	box, err := encodePolyline(rec.Box)
	if err != nil {
		return 0, err
	}
	if rec.ID == 0 {
		res, err := q.ExecContext(ctx, insertRegionSQL, docID, rec.Order, box)
		if err != nil {
			return 0, fmt.Errorf("insert region: %w", err)
		}
		return res.LastInsertId()
	}
	res, err := q.ExecContext(ctx, updateRegionSQL, rec.Order, box, rec.ID, docID)
	if err != nil {
		return 0, fmt.Errorf("update region %d: %w", rec.ID, err)
	}
	return rec.ID, affected(res, fmt.Sprintf("region %d", rec.ID))
}

// DeleteRegion removes a region row.
func (s *Store) DeleteRegion(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM regions WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete region %d: %w", id, err)
	}
	return affected(res, fmt.Sprintf("region %d", id))
}

// Regions returns the regions of a document in insertion order.
func (s *Store) Regions(ctx context.Context, docID int64) ([]RegionRecord, error) {
	rows, err := s.db.QueryContext(ctx, selectRegionsSQL, docID)
	if err != nil {
		return nil, fmt.Errorf("list regions: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []RegionRecord
	for rows.Next() {
		var rec RegionRecord
		var ord sql.NullInt64
		var box sql.NullString
		if err := rows.Scan(&rec.ID, &ord, &box); err != nil {
			return nil, err
		}
		if ord.Valid {
			o := int(ord.Int64)
			rec.Order = &o
		}
		if rec.Box, err = decodePolyline(box); err != nil {
			return nil, fmt.Errorf("region %d box: %w", rec.ID, err)
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

// encodePolyline stores nil as SQL NULL and anything else as a JSON array.
func encodePolyline(pl domain.Polyline) (any, error) {
	if pl == nil {
		return nil, nil
	}
	b, err := json.Marshal(pl)
	if err != nil {
		return nil, fmt.Errorf("encode polyline: %w", err)
	}
	return string(b), nil
}

func decodePolyline(v sql.NullString) (domain.Polyline, error) {
	if !v.Valid {
		return nil, nil
	}
	var pl domain.Polyline
	if err := json.Unmarshal([]byte(v.String), &pl); err != nil {
		return nil, err
	}
	return pl, nil
}
