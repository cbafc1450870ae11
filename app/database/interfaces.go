package database

import (
	"time"
)

type WatermarkRepository interface {
	GetAllWatermarks() ([]Watermark, error)
	UpsertWatermark(author, permlink string, reviewedAt time.Time) error
	GetWatermarkCount() (int, error)
}

type NotificationRepository interface {
	RecordNotification(kind, author, permlink string) error
	GetNotificationCount(kind string) (int, error)
}
