package postgres

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/kirillkom/document-classifier/internal/core/domain"
)

// schemaLockID serializes bootstrap DDL across concurrently starting
// processes.
const schemaLockID int64 = 2026101501

// ClassificationJournal appends one row per successful classification.
type ClassificationJournal struct {
	db *sql.DB
}

func NewClassificationJournal(db *sql.DB) *ClassificationJournal {
	return &ClassificationJournal{db: db}
}

func (j *ClassificationJournal) EnsureSchema(ctx context.Context) error {
	tx, err := j.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema tx: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	if _, err := tx.ExecContext(ctx, `SELECT pg_advisory_xact_lock($1)`, schemaLockID); err != nil {
		return fmt.Errorf("acquire schema lock: %w", err)
	}

	const query = `
CREATE TABLE IF NOT EXISTS classification_journal (
	id BIGSERIAL PRIMARY KEY,
	document_id TEXT NOT NULL,
	category TEXT NOT NULL,
	route TEXT NOT NULL,
	model TEXT NOT NULL,
	classified_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_classification_journal_document ON classification_journal(document_id, classified_at DESC);
`
	if _, err := tx.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("execute schema ddl: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema tx: %w", err)
	}
	return nil
}

func (j *ClassificationJournal) Record(ctx context.Context, record domain.ClassificationRecord) error {
	_, err := j.db.ExecContext(ctx, `
INSERT INTO classification_journal (document_id, category, route, model, classified_at)
VALUES ($1, $2, $3, $4, $5)
`, record.DocumentID, record.Category, string(record.Route), record.Model, record.ClassifiedAt.UTC())
	if err != nil {
		return fmt.Errorf("insert classification: %w", err)
	}
	return nil
}

// History returns the journal entries of one document, newest first.
func (j *ClassificationJournal) History(ctx context.Context, documentID string) ([]domain.ClassificationRecord, error) {
	rows, err := j.db.QueryContext(ctx, `
SELECT id, document_id, category, route, model, classified_at
FROM classification_journal
WHERE document_id = $1
ORDER BY classified_at DESC, id DESC
`, documentID)
	if err != nil {
		return nil, fmt.Errorf("query classification history: %w", err)
	}
	defer rows.Close()

	records := make([]domain.ClassificationRecord, 0)
	for rows.Next() {
		var (
			rec   domain.ClassificationRecord
			route string
		)
		if err := rows.Scan(&rec.ID, &rec.DocumentID, &rec.Category, &route, &rec.Model, &rec.ClassifiedAt); err != nil {
			return nil, fmt.Errorf("scan classification: %w", err)
		}
		rec.Route = domain.ClassificationRoute(route)
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate classification history: %w", err)
	}
	return records, nil
}
