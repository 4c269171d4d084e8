package worker

import (
	"context"
	"time"

	"agendei/internal/domain"
	"agendei/internal/metrics"
	"agendei/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Dispatcher drains the notification outbox into the notification store.
// Delivery is at-least-once: a row is only marked done after the store
// accepted it, failures are retried with backoff until MaxRetries.
type Dispatcher struct {
	outbox   domain.OutboxRepository
	store    domain.NotificationStore
	logger   *zerolog.Logger
	policy   RetryPolicy
	interval time.Duration
}

func NewDispatcher(outbox domain.OutboxRepository, store domain.NotificationStore, logger *zerolog.Logger) *Dispatcher {
	return &Dispatcher{
		outbox:   outbox,
		store:    store,
		logger:   logger,
		policy:   deliveryRetryPolicy(),
		interval: 2 * time.Second,
	}
}

// Run polls until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(d.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logger.Info().Msg("notification dispatcher stopped")
			return
		case <-ticker.C:
			d.drain(ctx)
		}
	}
}

func (d *Dispatcher) drain(ctx context.Context) {
	entries, err := d.outbox.GetPendingOutbox(ctx, models.OutboxBatchSize)
	if err != nil {
		d.logger.Error().Err(err).Msg("get pending outbox rows")
		return
	}

	for _, entry := range entries {
		d.deliver(ctx, entry)
	}
}

func (d *Dispatcher) deliver(ctx context.Context, entry models.OutboxEntry) {
	notification := &models.Notification{
		ID:        uuid.NewString(),
		UserID:    entry.UserID,
		Content:   entry.Content,
		CreatedAt: entry.CreatedAt,
	}

	if err := d.store.Create(ctx, notification); err != nil {
		attempt := entry.RetryCount + 1
		if attempt >= d.policy.MaxRetries {
			d.logger.Error().Err(err).Int64("outbox_id", entry.ID).Msg("notification delivery gave up")
			if markErr := d.outbox.MarkOutboxFailed(ctx, entry.ID, err.Error()); markErr != nil {
				d.logger.Error().Err(markErr).Int64("outbox_id", entry.ID).Msg("mark outbox failed")
			}
			return
		}

		nextRetry := time.Now().Add(d.policy.NextDelay(attempt))
		d.logger.Warn().Err(err).Int64("outbox_id", entry.ID).Int("attempt", attempt).
			Time("next_retry_at", nextRetry).Msg("notification delivery failed, will retry")
		if markErr := d.outbox.MarkOutboxRetry(ctx, entry.ID, err.Error(), nextRetry); markErr != nil {
			d.logger.Error().Err(markErr).Int64("outbox_id", entry.ID).Msg("mark outbox retry")
		}
		return
	}

	if err := d.outbox.MarkOutboxDone(ctx, entry.ID); err != nil {
		// The notification went out but the row stays pending, so the next
		// poll re-delivers it. At-least-once.
		d.logger.Error().Err(err).Int64("outbox_id", entry.ID).Msg("mark outbox done")
		return
	}

	metrics.IncNotificationsDelivered()
	d.logger.Debug().Int64("outbox_id", entry.ID).Int64("user_id", entry.UserID).Msg("notification delivered")
}
