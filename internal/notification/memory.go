package notification

import (
	"context"
	"sort"
	"sync"

	"agendei/internal/database"
	"agendei/internal/models"
)

// MemoryStore is the in-process fallback used when Redis is unavailable
// (and in tests).
type MemoryStore struct {
	mu     sync.RWMutex
	byUser map[int64][]*models.Notification
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byUser: make(map[int64][]*models.Notification)}
}

func (m *MemoryStore) Create(ctx context.Context, notification *models.Notification) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	copied := *notification
	m.byUser[notification.UserID] = append(m.byUser[notification.UserID], &copied)
	return nil
}

func (m *MemoryStore) ListForUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	stored := m.byUser[userID]
	notifications := make([]*models.Notification, 0, len(stored))
	for _, n := range stored {
		copied := *n
		notifications = append(notifications, &copied)
	}
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (m *MemoryStore) MarkRead(ctx context.Context, userID int64, id string) (*models.Notification, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, n := range m.byUser[userID] {
		if n.ID == id {
			n.Read = true
			copied := *n
			return &copied, nil
		}
	}
	return nil, database.ErrNotFound
}
