package repositories

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/desertthunder/tidalctl/internal/shared"
)

// RunRecord is one row of run history.
type RunRecord struct {
	ID         string
	Command    string
	Added      int
	Blocked    int
	Skipped    int
	Duplicates int
	Excluded   int
	Removed    int
	Rotated    int
	Liked      int
	StartedAt  time.Time
	FinishedAt time.Time
}

// RunRepository stores and lists run history records.
type RunRepository struct {
	db *sql.DB
}

// NewRunRepository creates a RunRepository with the given database connection
func NewRunRepository(db *sql.DB) *RunRepository {
	return &RunRepository{db: db}
}

// Record inserts a run record, assigning it a generated ID.
func (r *RunRepository) Record(record *RunRecord) error {
	record.ID = shared.GenerateID()
	if record.FinishedAt.IsZero() {
		record.FinishedAt = time.Now().UTC()
	}

	query := `
		INSERT INTO runs (
			id, command, added, blocked, skipped, duplicates,
			excluded, removed, rotated, liked, started_at, finished_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.Exec(query,
		record.ID,
		record.Command,
		record.Added,
		record.Blocked,
		record.Skipped,
		record.Duplicates,
		record.Excluded,
		record.Removed,
		record.Rotated,
		record.Liked,
		record.StartedAt,
		record.FinishedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert run record: %w", err)
	}

	return nil
}

// Recent returns the latest runs, newest first.
func (r *RunRepository) Recent(limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}

	query := `
		SELECT id, command, added, blocked, skipped, duplicates,
		       excluded, removed, rotated, liked, started_at, finished_at
		FROM runs
		ORDER BY started_at DESC
		LIMIT ?
	`

	rows, err := r.db.Query(query, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query run history: %w", err)
	}
	defer rows.Close()

	var records []RunRecord
	for rows.Next() {
		var record RunRecord
		err := rows.Scan(
			&record.ID,
			&record.Command,
			&record.Added,
			&record.Blocked,
			&record.Skipped,
			&record.Duplicates,
			&record.Excluded,
			&record.Removed,
			&record.Rotated,
			&record.Liked,
			&record.StartedAt,
			&record.FinishedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan run record: %w", err)
		}
		records = append(records, record)
	}

	return records, rows.Err()
}
