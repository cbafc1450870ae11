package database

import (
	"time"
)

// Watermark is a persisted freshness mark for a reviewed contribution,
// keyed by author and permlink. Loaded on startup so a restart does not
// replay notifications for contributions already announced.
type Watermark struct {
	Author     string
	Permlink   string
	ReviewedAt time.Time
	UpdatedAt  time.Time
}

// Notification is a record of a delivered notification. Kept for
// de-duplication bookkeeping and operational stats, not for redelivery.
type Notification struct {
	ID        int64
	Kind      string // task, contribution, help, missing_status
	Author    string
	Permlink  string
	CreatedAt time.Time
}
