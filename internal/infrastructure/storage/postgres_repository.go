package storage

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"

	"HamptonCollector/internal/domain"
	"HamptonCollector/internal/ports"
)

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

// PostgresRepository persists collected records. Reruns are idempotent:
// records upsert on (source, external_id), so refetching a source overwrites
// its earlier snapshot instead of appending duplicates.
type PostgresRepository struct {
	db *sql.DB
}

var _ ports.RecordRepository = (*PostgresRepository)(nil)

// NewPostgresRepository wires a sql.DB implementation.
func NewPostgresRepository(db *sql.DB) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// AlreadySeen returns a map with the IDs from a source that already exist in
// storage.
func (r *PostgresRepository) AlreadySeen(ctx context.Context, source string, ids []string) (map[string]bool, error) {
	result := make(map[string]bool)
	if r.db == nil || len(ids) == 0 {
		return result, nil
	}

	query, args, err := psql.
		Select("external_id").
		From("collected_records").
		Where(sq.Eq{"source": source, "external_id": ids}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query seen records: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan id: %w", err)
		}
		result[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration: %w", err)
	}

	return result, nil
}

// SaveRecords upserts one run's records.
func (r *PostgresRepository) SaveRecords(ctx context.Context, runID string, records []domain.Record) error {
	if r.db == nil || len(records) == 0 {
		return nil
	}

	for _, rec := range records {
		query, args, err := psql.
			Insert("collected_records").
			Columns(
				"source", "external_id", "record_type", "document_type",
				"title", "description", "address", "jurisdiction",
				"url", "record_date", "run_id",
			).
			Values(
				rec.Source, rec.ID, string(rec.Type), rec.DocumentType,
				rec.Title, rec.Description, rec.Address, rec.Jurisdiction,
				rec.URL, nullableTime(rec), runID,
			).
			Suffix(`ON CONFLICT (source, external_id) DO UPDATE
                SET title = EXCLUDED.title,
                    description = EXCLUDED.description,
                    address = EXCLUDED.address,
                    jurisdiction = EXCLUDED.jurisdiction,
                    url = EXCLUDED.url,
                    record_date = EXCLUDED.record_date,
                    run_id = EXCLUDED.run_id,
                    updated_at = NOW()`).
			ToSql()
		if err != nil {
			return fmt.Errorf("build upsert for %s: %w", rec.ID, err)
		}

		if _, err := r.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("upsert record %s: %w", rec.ID, err)
		}
	}

	return nil
}

func nullableTime(rec domain.Record) any {
	if rec.Date.IsZero() {
		return nil
	}
	return rec.Date
}
