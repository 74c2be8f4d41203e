package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskboard/domain"
)

type SessionRepository interface {
	Get(ctx context.Context, id string) (*domain.Session, error)
	Save(ctx context.Context, session *domain.Session) error
	Delete(ctx context.Context, id string) error
	Extend(ctx context.Context, id string, ttlSeconds int) error
}

// NotificationRepository queues deadline warnings until the owner fetches them.
type NotificationRepository interface {
	Push(ctx context.Context, n *domain.Notification) error
	// Drain returns and removes every queued notification of a user, newest first.
	Drain(ctx context.Context, userID string) ([]domain.Notification, error)
	// MarkNotified records that a warning was sent and reports whether it was new.
	MarkNotified(ctx context.Context, taskID string, minutesLeft int, ttl time.Duration) (bool, error)
}
