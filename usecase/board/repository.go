package board

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	kanban "github.com/fastygo/taskboard/internal/board"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

// userBoard binds the shared task and column stores to one user so the reconciler only
// ever sees that user's board.
type userBoard struct {
	userID  string
	tasks   repository.TaskRepository
	columns repository.ColumnRepository
	buffer  usecase.OperationBuffer
	logger  *zap.Logger
}

var _ kanban.Repository = (*userBoard)(nil)

func (b *userBoard) GetTasks(ctx context.Context) ([]domain.Task, error) {
	return b.tasks.List(ctx, repository.TaskFilter{UserID: b.userID})
}

// GetColumns seeds the default lanes for a user that has none.
func (b *userBoard) GetColumns(ctx context.Context) ([]domain.Column, error) {
	columns, err := b.columns.List(ctx, b.userID)
	if err != nil || len(columns) > 0 {
		return columns, err
	}
	if err := b.columns.Init(ctx, b.userID, domain.DefaultColumns()); err != nil {
		return nil, fmt.Errorf("seed columns: %w", err)
	}
	b.logger.Info("default columns seeded", zap.String("user_id", b.userID))
	return b.columns.List(ctx, b.userID)
}

func (b *userBoard) SetTaskOrder(ctx context.Context, ids []string) error {
	return b.tasks.Reorder(ctx, b.userID, ids)
}

func (b *userBoard) SetColumnOrder(ctx context.Context, order []domain.Status) error {
	return b.columns.Reorder(ctx, b.userID, order)
}

// SetTaskStatus falls back to the write buffer when the store is unreachable, since a
// dropped task is the one write a gesture must not lose.
func (b *userBoard) SetTaskStatus(ctx context.Context, id string, status domain.Status, index int) error {
	err := b.tasks.Move(ctx, b.userID, id, status, index)
	if err == nil || b.buffer == nil || !usecase.Bufferable(err) {
		return err
	}
	task := &domain.Task{ID: id, UserID: b.userID, Status: status, Position: index}
	if bufErr := b.buffer.BufferTask(ctx, usecase.OperationMove, task); bufErr != nil {
		b.logger.Error("failed to buffer task move", zap.String("task_id", id), zap.Error(bufErr))
		return err
	}
	b.logger.Warn("task move buffered", zap.String("task_id", id), zap.Error(err))
	return nil
}

func (b *userBoard) ToggleColumnLock(ctx context.Context, status domain.Status) error {
	return b.columns.ToggleLock(ctx, b.userID, status)
}
