// ABOUTME: Record storage operations for SQLite
// ABOUTME: Imports, lists and resolves syllabus records and their chapter contents
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/harper/docchat/internal/models"
)

// RecordSummary lists a record's key and chapter names without their contents
type RecordSummary struct {
	Board    string    `json:"board" yaml:"board"`
	Class    string    `json:"class" yaml:"class"`
	Subject  string    `json:"subject" yaml:"subject"`
	Chapters []string  `json:"chapters" yaml:"chapters"`
	Updated  time.Time `json:"updated_at" yaml:"updated_at"`
}

// Key returns "board/class/subject"
func (s RecordSummary) Key() string {
	return s.Board + "/" + s.Class + "/" + s.Subject
}

// RecordStore handles record persistence
type RecordStore struct {
	db *DB
}

// NewRecordStore creates a new RecordStore
func NewRecordStore(db *DB) *RecordStore {
	return &RecordStore{db: db}
}

// ImportRecords upserts records in one transaction. An existing record with the
// same key has its chapters replaced.
func (s *RecordStore) ImportRecords(ctx context.Context, records []models.Record) (int, error) {
	for i, rec := range records {
		if err := validateRecord(rec); err != nil {
			return 0, fmt.Errorf("record %d: %w", i+1, err)
		}
	}

	tx, err := s.db.BeginTx(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	now := time.Now().UTC()
	for _, rec := range records {
		var id int64
		err := tx.QueryRowContext(ctx, `
			INSERT INTO records (board, class, subject, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?)
			ON CONFLICT(board, class, subject) DO UPDATE SET updated_at = excluded.updated_at
			RETURNING id
		`, strings.TrimSpace(rec.Board), strings.TrimSpace(rec.Class), strings.TrimSpace(rec.Subject), now, now).Scan(&id)
		if err != nil {
			return 0, fmt.Errorf("failed to upsert %s: %w", rec.Key(), err)
		}

		if _, err := tx.ExecContext(ctx, `DELETE FROM chapters WHERE record_id = ?`, id); err != nil {
			return 0, fmt.Errorf("failed to clear chapters of %s: %w", rec.Key(), err)
		}
		for pos, c := range rec.Contents {
			_, err := tx.ExecContext(ctx, `
				INSERT INTO chapters (record_id, position, chapter, content)
				VALUES (?, ?, ?, ?)
			`, id, pos, strings.TrimSpace(c.Chapter), c.Content)
			if err != nil {
				return 0, fmt.Errorf("failed to insert chapter %q of %s: %w", c.Chapter, rec.Key(), err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit import: %w", err)
	}
	return len(records), nil
}

// ListRecords returns every record ordered by board, class and subject
func (s *RecordStore) ListRecords(ctx context.Context) ([]RecordSummary, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT r.board, r.class, r.subject, r.updated_at, c.chapter
		FROM records r
		LEFT JOIN chapters c ON c.record_id = r.id
		ORDER BY r.board, r.class, r.subject, c.position
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list records: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var out []RecordSummary
	for rows.Next() {
		var (
			board, class, subject string
			updated               time.Time
			chapter               sql.NullString
		)
		if err := rows.Scan(&board, &class, &subject, &updated, &chapter); err != nil {
			return nil, err
		}

		n := len(out)
		if n == 0 || out[n-1].Board != board || out[n-1].Class != class || out[n-1].Subject != subject {
			out = append(out, RecordSummary{Board: board, Class: class, Subject: subject, Chapters: []string{}, Updated: updated})
			n++
		}
		if chapter.Valid {
			out[n-1].Chapters = append(out[n-1].Chapters, chapter.String)
		}
	}
	return out, rows.Err()
}

// GetRecord loads one record with its chapters. Keys match case-insensitively.
func (s *RecordStore) GetRecord(ctx context.Context, board, class, subject string) (*models.Record, error) {
	var (
		id  int64
		rec models.Record
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT id, board, class, subject FROM records
		WHERE board = ? AND class = ? AND subject = ?
	`, strings.TrimSpace(board), strings.TrimSpace(class), strings.TrimSpace(subject)).Scan(&id, &rec.Board, &rec.Class, &rec.Subject)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: record %s/%s/%s", models.ErrNotFound, board, class, subject)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get record: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT chapter, content FROM chapters WHERE record_id = ? ORDER BY position
	`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to load chapters: %w", err)
	}
	defer func() { _ = rows.Close() }()

	for rows.Next() {
		var c models.ChapterContent
		if err := rows.Scan(&c.Chapter, &c.Content); err != nil {
			return nil, err
		}
		rec.Contents = append(rec.Contents, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return &rec, nil
}

// DeleteRecord removes a record and its chapters
func (s *RecordStore) DeleteRecord(ctx context.Context, board, class, subject string) error {
	res, err := s.db.conn.ExecContext(ctx, `
		DELETE FROM records WHERE board = ? AND class = ? AND subject = ?
	`, strings.TrimSpace(board), strings.TrimSpace(class), strings.TrimSpace(subject))
	if err != nil {
		return fmt.Errorf("failed to delete record: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: record %s/%s/%s", models.ErrNotFound, board, class, subject)
	}
	return nil
}

func validateRecord(rec models.Record) error {
	if strings.TrimSpace(rec.Board) == "" || strings.TrimSpace(rec.Class) == "" || strings.TrimSpace(rec.Subject) == "" {
		return fmt.Errorf("%w: board, class and subject are required", models.ErrInvalidInput)
	}
	seen := make(map[string]bool, len(rec.Contents))
	for _, c := range rec.Contents {
		name := strings.ToLower(strings.TrimSpace(c.Chapter))
		if name == "" {
			return fmt.Errorf("%w: %s has a chapter without a name", models.ErrInvalidInput, rec.Key())
		}
		if seen[name] {
			return fmt.Errorf("%w: %s lists chapter %q twice", models.ErrInvalidInput, rec.Key(), c.Chapter)
		}
		seen[name] = true
	}
	return nil
}
