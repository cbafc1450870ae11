package database

import (
	"fmt"
)

// SQLiteNotificationRepository handles database operations for delivered notifications
type SQLiteNotificationRepository struct {
	db *DB
}

func NewNotificationRepository(db *DB) *SQLiteNotificationRepository {
	return &SQLiteNotificationRepository{db: db}
}

// RecordNotification appends a delivery record
func (r *SQLiteNotificationRepository) RecordNotification(kind, author, permlink string) error {
	_, err := r.db.Exec(`
		INSERT INTO notifications (kind, author, permlink)
		VALUES (?, ?, ?)
	`, kind, author, permlink)

	if err != nil {
		return fmt.Errorf("failed to record notification: %w", err)
	}

	return nil
}

// GetNotificationCount returns the number of delivered notifications,
// optionally narrowed to one kind. An empty kind counts everything.
func (r *SQLiteNotificationRepository) GetNotificationCount(kind string) (int, error) {
	var count int
	var err error

	if kind == "" {
		err = r.db.QueryRow("SELECT COUNT(*) FROM notifications").Scan(&count)
	} else {
		err = r.db.QueryRow("SELECT COUNT(*) FROM notifications WHERE kind = ?", kind).Scan(&count)
	}

	if err != nil {
		return 0, fmt.Errorf("failed to get notification count: %w", err)
	}

	return count, nil
}
