package notification

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"time"

	"agendei/internal/database"
	"agendei/internal/domain"
	"agendei/internal/models"

	"github.com/rs/zerolog"
)

// FailoverStore routes to the primary store and falls back to a secondary
// when the primary errors, retrying the primary after a cooldown.
type FailoverStore struct {
	primary  domain.NotificationStore
	fallback domain.NotificationStore
	logger   *zerolog.Logger

	isDown atomic.Bool

	mu        sync.Mutex
	lastCheck time.Time
}

func NewFailoverStore(primary, fallback domain.NotificationStore, logger *zerolog.Logger) *FailoverStore {
	return &FailoverStore{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (f *FailoverStore) markDown(err error) {
	f.logger.Error().Err(err).Msg("primary notification store failed, falling back to memory")
	f.isDown.Store(true)
	f.mu.Lock()
	f.lastCheck = time.Now()
	f.mu.Unlock()
}

func (f *FailoverStore) shouldRecover() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	if time.Since(f.lastCheck) > time.Minute {
		f.lastCheck = time.Now()
		return true
	}
	return false
}

func (f *FailoverStore) Create(ctx context.Context, notification *models.Notification) error {
	if !f.isDown.Load() || f.shouldRecover() {
		err := f.primary.Create(ctx, notification)
		if err == nil {
			f.isDown.Store(false)
			return nil
		}
		f.markDown(err)
	}
	return f.fallback.Create(ctx, notification)
}

func (f *FailoverStore) ListForUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	if !f.isDown.Load() || f.shouldRecover() {
		notifications, err := f.primary.ListForUser(ctx, userID)
		if err == nil {
			f.isDown.Store(false)
			return notifications, nil
		}
		f.markDown(err)
	}
	return f.fallback.ListForUser(ctx, userID)
}

func (f *FailoverStore) MarkRead(ctx context.Context, userID int64, id string) (*models.Notification, error) {
	if !f.isDown.Load() || f.shouldRecover() {
		notification, err := f.primary.MarkRead(ctx, userID, id)
		if err == nil || errors.Is(err, database.ErrNotFound) {
			f.isDown.Store(false)
			return notification, err
		}
		f.markDown(err)
	}
	return f.fallback.MarkRead(ctx, userID, id)
}
