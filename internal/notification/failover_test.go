package notification

import (
	"context"
	"errors"
	"testing"
	"time"

	"agendei/internal/database"
	"agendei/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// flakyStore fails every call until healed.
type flakyStore struct {
	inner  *MemoryStore
	broken bool
}

var errStoreDown = errors.New("store down")

func (s *flakyStore) Create(ctx context.Context, n *models.Notification) error {
	if s.broken {
		return errStoreDown
	}
	return s.inner.Create(ctx, n)
}

func (s *flakyStore) ListForUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	if s.broken {
		return nil, errStoreDown
	}
	return s.inner.ListForUser(ctx, userID)
}

func (s *flakyStore) MarkRead(ctx context.Context, userID int64, id string) (*models.Notification, error) {
	if s.broken {
		return nil, errStoreDown
	}
	return s.inner.MarkRead(ctx, userID, id)
}

func newTestFailover(primaryBroken bool) (*FailoverStore, *flakyStore, *MemoryStore) {
	primary := &flakyStore{inner: NewMemoryStore(), broken: primaryBroken}
	fallback := NewMemoryStore()
	logger := zerolog.Nop()
	return NewFailoverStore(primary, fallback, &logger), primary, fallback
}

func TestFailover_UsesPrimaryWhenHealthy(t *testing.T) {
	store, primary, fallback := newTestFailover(false)
	ctx := context.Background()

	n := &models.Notification{ID: "n1", UserID: 7, Content: "a", CreatedAt: time.Now()}
	require.NoError(t, store.Create(ctx, n))

	got, err := primary.inner.ListForUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	got, err = fallback.ListForUser(ctx, 7)
	require.NoError(t, err)
	assert.Empty(t, got)
}

func TestFailover_FallsBackOnError(t *testing.T) {
	store, _, fallback := newTestFailover(true)
	ctx := context.Background()

	n := &models.Notification{ID: "n1", UserID: 7, Content: "a", CreatedAt: time.Now()}
	require.NoError(t, store.Create(ctx, n))

	got, err := fallback.ListForUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, got, 1)

	// Subsequent reads skip the broken primary inside the cooldown.
	listed, err := store.ListForUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestFailover_MarkReadMissWithoutFailover(t *testing.T) {
	store, _, _ := newTestFailover(false)

	// A not-found from a healthy primary is a semantic result, not an outage.
	_, err := store.MarkRead(context.Background(), 7, "ghost")
	assert.ErrorIs(t, err, database.ErrNotFound)
	assert.False(t, store.isDown.Load())
}

func TestFailover_RecoversPrimary(t *testing.T) {
	store, primary, _ := newTestFailover(true)
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.Notification{ID: "n1", UserID: 7, Content: "a", CreatedAt: time.Now()}))
	assert.True(t, store.isDown.Load())

	primary.broken = false
	// Age the cooldown so the next call probes the primary again.
	store.mu.Lock()
	store.lastCheck = time.Now().Add(-2 * time.Minute)
	store.mu.Unlock()

	require.NoError(t, store.Create(ctx, &models.Notification{ID: "n2", UserID: 7, Content: "b", CreatedAt: time.Now()}))
	assert.False(t, store.isDown.Load())

	got, err := primary.inner.ListForUser(ctx, 7)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}
