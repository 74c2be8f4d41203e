package notification

import (
	"context"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type UseCase struct {
	notifications repository.NotificationRepository
	logger        *zap.Logger
}

func New(notifications repository.NotificationRepository, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{notifications: notifications, logger: logger}
}

// Drain returns the user's pending deadline warnings, newest first, and clears the queue.
func (uc *UseCase) Drain(ctx context.Context, userID string) ([]domain.Notification, error) {
	items, err := uc.notifications.Drain(ctx, userID)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.Notification{}
	}
	if len(items) > 0 {
		uc.logger.Debug("notifications delivered", zap.String("user_id", userID), zap.Int("count", len(items)))
	}
	return items, nil
}
