package models

import "time"

const (
	// CancelWindow is how far ahead of the scheduled date a cancellation
	// must happen.
	CancelWindow = 2 * time.Hour

	// AppointmentsPageSize is the fixed page size of the listing endpoint.
	AppointmentsPageSize = 20

	// NotificationsTTL is how long undelivered notification documents live
	// in the store.
	NotificationsTTL = 30 * 24 * time.Hour

	// OutboxBatchSize is how many pending outbox rows the dispatcher claims
	// per poll.
	OutboxBatchSize = 50
)

const (
	OutboxStatusPending = "pending"
	OutboxStatusRetry   = "retry"
	OutboxStatusDone    = "done"
	OutboxStatusFailed  = "failed"
)
