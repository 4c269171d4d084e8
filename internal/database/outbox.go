package database

import (
	"context"
	"fmt"
	"time"

	"agendei/internal/models"
)

// GetPendingOutbox returns outbox rows ready for delivery, oldest first.
func (db *DB) GetPendingOutbox(ctx context.Context, limit int) ([]models.OutboxEntry, error) {
	query := `SELECT id, user_id, content, status, retry_count, last_error, created_at, processed_at, next_retry_at
              FROM notification_outbox
              WHERE status IN ('pending', 'retry') AND (next_retry_at IS NULL OR next_retry_at <= ?)
              ORDER BY created_at ASC LIMIT ?`
	rows, err := db.QueryContext(ctx, query, time.Now(), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get pending outbox rows: %w", err)
	}
	defer rows.Close()

	var entries []models.OutboxEntry
	for rows.Next() {
		var e models.OutboxEntry
		err := rows.Scan(
			&e.ID, &e.UserID, &e.Content, &e.Status, &e.RetryCount,
			&e.LastError, &e.CreatedAt, &e.ProcessedAt, &e.NextRetryAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan outbox row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (db *DB) MarkOutboxDone(ctx context.Context, id int64) error {
	query := `UPDATE notification_outbox SET status = ?, processed_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, models.OutboxStatusDone, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox row done: %w", err)
	}
	return nil
}

func (db *DB) MarkOutboxRetry(ctx context.Context, id int64, lastError string, nextRetryAt time.Time) error {
	query := `UPDATE notification_outbox
              SET status = ?, retry_count = retry_count + 1, last_error = ?, next_retry_at = ?
              WHERE id = ?`
	_, err := db.ExecContext(ctx, query, models.OutboxStatusRetry, lastError, nextRetryAt, id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox row for retry: %w", err)
	}
	return nil
}

func (db *DB) MarkOutboxFailed(ctx context.Context, id int64, lastError string) error {
	query := `UPDATE notification_outbox SET status = ?, last_error = ?, processed_at = ? WHERE id = ?`
	_, err := db.ExecContext(ctx, query, models.OutboxStatusFailed, lastError, time.Now(), id)
	if err != nil {
		return fmt.Errorf("failed to mark outbox row failed: %w", err)
	}
	return nil
}
