package database

import (
	"fmt"
	"time"
)

// SQLiteWatermarkRepository handles database operations for contribution watermarks
type SQLiteWatermarkRepository struct {
	db *DB
}

func NewWatermarkRepository(db *DB) *SQLiteWatermarkRepository {
	return &SQLiteWatermarkRepository{db: db}
}

// GetAllWatermarks returns every persisted watermark. Used once on
// startup to warm the in-memory freshness state.
func (r *SQLiteWatermarkRepository) GetAllWatermarks() ([]Watermark, error) {
	rows, err := r.db.Query(`
		SELECT author, permlink, reviewed_at, updated_at
		FROM contribution_watermarks
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to get watermarks: %w", err)
	}
	defer rows.Close()

	var watermarks []Watermark
	for rows.Next() {
		var w Watermark
		if err := rows.Scan(&w.Author, &w.Permlink, &w.ReviewedAt, &w.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan watermark row: %w", err)
		}
		watermarks = append(watermarks, w)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating watermark rows: %w", err)
	}

	return watermarks, nil
}

// UpsertWatermark stores the latest review time for a content item.
// Never moves a stored watermark backwards.
func (r *SQLiteWatermarkRepository) UpsertWatermark(author, permlink string, reviewedAt time.Time) error {
	_, err := r.db.Exec(`
		INSERT INTO contribution_watermarks (author, permlink, reviewed_at, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (author, permlink) DO UPDATE SET
			reviewed_at = excluded.reviewed_at,
			updated_at = CURRENT_TIMESTAMP
		WHERE excluded.reviewed_at > contribution_watermarks.reviewed_at
	`, author, permlink, reviewedAt.UTC())

	if err != nil {
		return fmt.Errorf("failed to upsert watermark: %w", err)
	}

	return nil
}

// GetWatermarkCount returns the number of tracked content items
func (r *SQLiteWatermarkRepository) GetWatermarkCount() (int, error) {
	var count int
	err := r.db.QueryRow("SELECT COUNT(*) FROM contribution_watermarks").Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to get watermark count: %w", err)
	}
	return count, nil
}
