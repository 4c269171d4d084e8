package notification

import (
	"context"
	"testing"
	"time"

	"agendei/internal/database"
	"agendei/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_CreateAndList(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.Notification{ID: "n1", UserID: 7, Content: "a", CreatedAt: time.Now()}))
	require.NoError(t, store.Create(ctx, &models.Notification{ID: "n2", UserID: 8, Content: "b", CreatedAt: time.Now()}))

	notifications, err := store.ListForUser(ctx, 7)
	require.NoError(t, err)
	require.Len(t, notifications, 1)
	assert.Equal(t, "n1", notifications[0].ID)
}

func TestMemoryStore_MarkRead(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.Notification{ID: "n1", UserID: 7, Content: "a", CreatedAt: time.Now()}))

	updated, err := store.MarkRead(ctx, 7, "n1")
	require.NoError(t, err)
	assert.True(t, updated.Read)

	_, err = store.MarkRead(ctx, 7, "ghost")
	assert.ErrorIs(t, err, database.ErrNotFound)
}

func TestMemoryStore_ListCopies(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Create(ctx, &models.Notification{ID: "n1", UserID: 7, Content: "a", CreatedAt: time.Now()}))

	first, err := store.ListForUser(ctx, 7)
	require.NoError(t, err)
	first[0].Read = true

	// Mutating the returned slice does not touch the stored copy.
	second, err := store.ListForUser(ctx, 7)
	require.NoError(t, err)
	assert.False(t, second[0].Read)
}
