package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"agendei/internal/config"
	"agendei/internal/database"
	"agendei/internal/models"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps notification documents in a per-user hash keyed by
// notification id.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisClient(cfg config.RedisConfig) *redis.Client {
	options := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,
		PoolSize: cfg.PoolSize,
	}

	return redis.NewClient(options)
}

func NewRedisStore(client *redis.Client, ttl time.Duration) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    ttl,
	}
}

func userKey(userID int64) string {
	return fmt.Sprintf("notifications:%d", userID)
}

func (r *RedisStore) Create(ctx context.Context, notification *models.Notification) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	data, err := json.Marshal(notification)
	if err != nil {
		return fmt.Errorf("failed to marshal notification: %w", err)
	}

	key := userKey(notification.UserID)
	if err := r.client.HSet(ctx, key, notification.ID, data).Err(); err != nil {
		return fmt.Errorf("failed to store notification in redis: %w", err)
	}
	if r.ttl > 0 {
		r.client.Expire(ctx, key, r.ttl)
	}
	return nil
}

func (r *RedisStore) ListForUser(ctx context.Context, userID int64) ([]*models.Notification, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	raw, err := r.client.HGetAll(ctx, userKey(userID)).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to list notifications from redis: %w", err)
	}

	notifications := make([]*models.Notification, 0, len(raw))
	for _, val := range raw {
		var n models.Notification
		if err := json.Unmarshal([]byte(val), &n); err != nil {
			return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
		}
		notifications = append(notifications, &n)
	}

	// Newest first.
	sort.Slice(notifications, func(i, j int) bool {
		return notifications[i].CreatedAt.After(notifications[j].CreatedAt)
	})
	return notifications, nil
}

func (r *RedisStore) MarkRead(ctx context.Context, userID int64, id string) (*models.Notification, error) {
	if r.client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	key := userKey(userID)
	val, err := r.client.HGet(ctx, key, id).Result()
	if err == redis.Nil {
		return nil, database.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get notification from redis: %w", err)
	}

	var n models.Notification
	if err := json.Unmarshal([]byte(val), &n); err != nil {
		return nil, fmt.Errorf("failed to unmarshal notification: %w", err)
	}

	n.Read = true
	data, err := json.Marshal(&n)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal notification: %w", err)
	}
	if err := r.client.HSet(ctx, key, id, data).Err(); err != nil {
		return nil, fmt.Errorf("failed to update notification in redis: %w", err)
	}
	return &n, nil
}

// Ping checks the connection to Redis.
func Ping(ctx context.Context, client *redis.Client) error {
	if _, err := client.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to ping Redis: %w", err)
	}
	return nil
}
