package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/bytedance/sonic"
	"github.com/google/uuid"
	redislib "github.com/redis/go-redis/v9"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

// maxQueued caps the per-user notification list.
const maxQueued = 100

type notificationRepository struct {
	client *redislib.Client
}

// NewNotificationRepository stores deadline warnings in per-user Redis lists.
func NewNotificationRepository(client *redislib.Client) repository.NotificationRepository {
	return &notificationRepository{client: client}
}

func (r *notificationRepository) Push(ctx context.Context, n *domain.Notification) error {
	if n == nil || n.UserID == "" {
		return domain.ErrInvalidPayload
	}
	if n.ID == "" {
		n.ID = uuid.NewString()
	}
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}

	payload, err := sonic.Marshal(n)
	if err != nil {
		return err
	}

	pipe := r.client.TxPipeline()
	pipe.LPush(ctx, queueKey(n.UserID), payload)
	pipe.LTrim(ctx, queueKey(n.UserID), 0, maxQueued-1)
	_, err = pipe.Exec(ctx)
	return err
}

func (r *notificationRepository) Drain(ctx context.Context, userID string) ([]domain.Notification, error) {
	pipe := r.client.TxPipeline()
	items := pipe.LRange(ctx, queueKey(userID), 0, -1)
	pipe.Del(ctx, queueKey(userID))
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, err
	}

	out := make([]domain.Notification, 0, len(items.Val()))
	for _, raw := range items.Val() {
		var n domain.Notification
		if err := sonic.UnmarshalString(raw, &n); err != nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (r *notificationRepository) MarkNotified(ctx context.Context, taskID string, minutesLeft int, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = 2 * time.Hour
	}
	return r.client.SetNX(ctx, notifiedKey(taskID, minutesLeft), 1, ttl).Result()
}

func queueKey(userID string) string {
	return "notifications:" + userID
}

func notifiedKey(taskID string, minutesLeft int) string {
	return fmt.Sprintf("notified:%s:%d", taskID, minutesLeft)
}
