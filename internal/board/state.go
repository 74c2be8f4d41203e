// Package board keeps a render-friendly mirror of a user's task and column order while a
// drag gesture is in flight and turns the finished gesture into repository writes.
//
// Reconcile is a pure reducer: it never touches storage. Intermediate DragOver events only
// change the returned State; DragEnd and ClickLock additionally return the Calls that must
// be applied to the Repository, so a gesture costs at most one write however many hover
// events it produced.
package board

import "github.com/fastygo/taskboard/domain"

// Kind distinguishes the two draggable things on a board.
type Kind string

const (
	KindTask   Kind = "task"
	KindColumn Kind = "column"
)

// Item identifies a draggable element or drop target. Column IDs are their statuses.
type Item struct {
	Kind Kind   `json:"kind"`
	ID   string `json:"id"`
}

// State is the local mirror owned by one gesture.
type State struct {
	Columns      []domain.Column `json:"columns"`
	Tasks        []domain.Task   `json:"tasks"`
	ActiveColumn *domain.Column  `json:"active_column,omitempty"`
	ActiveTask   *domain.Task    `json:"active_task,omitempty"`
}

// NewState builds a state from the persisted lists. The inputs are copied.
func NewState(columns []domain.Column, tasks []domain.Task) State {
	s := State{
		Columns: append([]domain.Column(nil), columns...),
		Tasks:   make([]domain.Task, len(tasks)),
	}
	for i, task := range tasks {
		s.Tasks[i] = task.Clone()
	}
	return s
}

// TaskIndex returns the index of the task with id, or -1.
func (s State) TaskIndex(id string) int {
	for i := range s.Tasks {
		if s.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// ColumnIndex returns the index of the column with status, or -1.
func (s State) ColumnIndex(status domain.Status) int {
	for i := range s.Columns {
		if s.Columns[i].Status == status {
			return i
		}
	}
	return -1
}

// TasksIn returns the tasks of one column in board order.
func (s State) TasksIn(status domain.Status) []domain.Task {
	var out []domain.Task
	for _, task := range s.Tasks {
		if task.Status == status {
			out = append(out, task)
		}
	}
	return out
}

// move relocates the element at from to position to, shifting the elements in between.
// Out-of-range indices leave a copy of the slice unchanged.
func move[T any](items []T, from, to int) []T {
	out := append([]T(nil), items...)
	if from < 0 || from >= len(out) || to < 0 || to >= len(out) || from == to {
		return out
	}
	item := out[from]
	if from < to {
		copy(out[from:to], out[from+1:to+1])
	} else {
		copy(out[to+1:from+1], out[to:from])
	}
	out[to] = item
	return out
}
