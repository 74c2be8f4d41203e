package repository

import (
	"context"
	"time"

	"github.com/fastygo/taskboard/domain"
)

type TaskFilter struct {
	UserID string
	Status domain.Status
	Limit  int
	Offset int
}

// TaskRepository persists tasks. Every read and write is scoped to the owning user; a task
// of another user behaves as if it did not exist.
type TaskRepository interface {
	GetByID(ctx context.Context, userID, id string) (*domain.Task, error)
	List(ctx context.Context, filter TaskFilter) ([]domain.Task, error)
	Create(ctx context.Context, task *domain.Task) (*domain.Task, error)
	Update(ctx context.Context, task *domain.Task) error
	Delete(ctx context.Context, userID, id string) error
	UpdateStatus(ctx context.Context, userID, id string, status domain.Status) error
	// Move sets the task status and places it at index of the user's full task order.
	Move(ctx context.Context, userID, id string, status domain.Status, index int) error
	// Reorder assigns positions in the order of ids. Tasks not listed keep their
	// relative order after the listed ones.
	Reorder(ctx context.Context, userID string, ids []string) error
	// ListForSweep returns tasks of every user whose deadline is before horizon or that
	// are deferred.
	ListForSweep(ctx context.Context, horizon time.Time) ([]domain.Task, error)
}

// ColumnRepository persists the ordered lanes of each user's board.
type ColumnRepository interface {
	List(ctx context.Context, userID string) ([]domain.Column, error)
	// Init seeds columns for a user that has none yet.
	Init(ctx context.Context, userID string, columns []domain.Column) error
	Reorder(ctx context.Context, userID string, order []domain.Status) error
	ToggleLock(ctx context.Context, userID string, status domain.Status) error
}
