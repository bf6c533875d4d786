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
	"errors"
	"fmt"
)

// language=SQL
// dialect=SQLite
const upsertDocumentSQL = `INSERT INTO documents(key, width, height) VALUES (?, ?, ?)
	ON CONFLICT(key) DO UPDATE SET
		width  = CASE WHEN excluded.width  > 0 THEN excluded.width  ELSE documents.width  END,
		height = CASE WHEN excluded.height > 0 THEN excluded.height ELSE documents.height END`

// language=SQL
// dialect=SQLite
const listDocumentsSQL = `SELECT d.id, d.key, d.width, d.height,
	(SELECT COUNT(*) FROM lines l WHERE l.document_id = d.id),
	(SELECT COUNT(*) FROM regions r WHERE r.document_id = d.id)
	FROM documents d ORDER BY d.key`

// Document is a stored page.
type Document struct {
	ID      int64
	Key     string
	Width   int
	Height  int
	Lines   int
	Regions int
}

// EnsureDocument creates the document key when missing and returns its id.
// Non-zero dimensions replace the stored ones.
func (s *Store) EnsureDocument(ctx context.Context, key string, width, height int) (int64, error) {
	return ensureDocument(ctx, s.db, key, width, height)
}

func ensureDocument(ctx context.Context, q queryer, key string, width, height int) (int64, error) {
	if key == "" {
		return 0, errors.New("document key is required")
	}
	if _, err := q.ExecContext(ctx, upsertDocumentSQL, key, width, height); err != nil {
		return 0, fmt.Errorf("upsert document %q: %w", key, err)
	}
	return documentID(ctx, q, key)
}

// DocumentID returns the id of key, or ErrNotFound.
func (s *Store) DocumentID(ctx context.Context, key string) (int64, error) {
	return documentID(ctx, s.db, key)
}

func documentID(ctx context.Context, q queryer, key string) (int64, error) {
	var id int64
	err := q.QueryRowContext(ctx, `SELECT id FROM documents WHERE key = ?`, key).Scan(&id)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, fmt.Errorf("document %q: %w", key, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("read document %q: %w", key, err)
	}
	return id, nil
}

// Documents lists every stored page with its row counts.
func (s *Store) Documents(ctx context.Context) ([]Document, error) {
	rows, err := s.db.QueryContext(ctx, listDocumentsSQL)
	if err != nil {
		return nil, fmt.Errorf("list documents: %w", err)
	}
	defer func() { _ = rows.Close() }()
	var out []Document
	for rows.Next() {
		var d Document
		if err := rows.Scan(&d.ID, &d.Key, &d.Width, &d.Height, &d.Lines, &d.Regions); err != nil {
			return nil, err
		}
		out = append(out, d)
	}
	return out, rows.Err()
}

// DeleteDocument removes a page and its rows.
func (s *Store) DeleteDocument(ctx context.Context, key string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM documents WHERE key = ?`, key)
	if err != nil {
		return fmt.Errorf("delete document %q: %w", key, err)
	}
	return affected(res, "document "+key)
}

// queryer is satisfied by *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func affected(res sql.Result, what string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	return nil
}
