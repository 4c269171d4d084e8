package models

import (
	"database/sql"
	"time"
)

// OutboxEntry is a notification write queued inside the booking transaction
// and delivered to the notification store by the dispatcher.
type OutboxEntry struct {
	ID          int64
	UserID      int64
	Content     string
	Status      string
	RetryCount  int
	LastError   string
	CreatedAt   time.Time
	ProcessedAt sql.NullTime
	NextRetryAt sql.NullTime
}
