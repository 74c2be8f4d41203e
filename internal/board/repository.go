package board

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// Repository is the persisted store of one user's board.
type Repository interface {
	GetTasks(ctx context.Context) ([]domain.Task, error)
	GetColumns(ctx context.Context) ([]domain.Column, error)
	SetTaskOrder(ctx context.Context, ids []string) error
	SetColumnOrder(ctx context.Context, order []domain.Status) error
	// SetTaskStatus stores the final status of a dragged task and moves it to index
	// within the user's full task order.
	SetTaskStatus(ctx context.Context, id string, status domain.Status, index int) error
	ToggleColumnLock(ctx context.Context, status domain.Status) error
}

// Call is a repository write produced by the reducer.
type Call interface {
	Apply(ctx context.Context, repo Repository) error
}

type SetTaskOrder struct {
	IDs []string
}

type SetColumnOrder struct {
	Order []domain.Status
}

type SetTaskStatus struct {
	ID     string
	Status domain.Status
	Index  int
}

type ToggleColumnLock struct {
	Status domain.Status
}

func (c SetTaskOrder) Apply(ctx context.Context, repo Repository) error {
	return repo.SetTaskOrder(ctx, c.IDs)
}

func (c SetColumnOrder) Apply(ctx context.Context, repo Repository) error {
	return repo.SetColumnOrder(ctx, c.Order)
}

func (c SetTaskStatus) Apply(ctx context.Context, repo Repository) error {
	return repo.SetTaskStatus(ctx, c.ID, c.Status, c.Index)
}

func (c ToggleColumnLock) Apply(ctx context.Context, repo Repository) error {
	return repo.ToggleColumnLock(ctx, c.Status)
}

// Load reads the persisted board into a fresh State.
func Load(ctx context.Context, repo Repository) (State, error) {
	columns, err := repo.GetColumns(ctx)
	if err != nil {
		return State{}, err
	}
	tasks, err := repo.GetTasks(ctx)
	if err != nil {
		return State{}, err
	}
	return NewState(columns, tasks), nil
}

// Flush applies calls in order and stops at the first failure.
func Flush(ctx context.Context, repo Repository, calls []Call) error {
	for _, call := range calls {
		if err := call.Apply(ctx, repo); err != nil {
			return err
		}
	}
	return nil
}
