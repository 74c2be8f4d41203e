package domain

import (
	"encoding/json"
	"time"
)

// Status is the lifecycle state of a task. The first three are rendered as board columns.
type Status string

const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "inProgress"
	StatusDone       Status = "done"
	StatusDeferred   Status = "deferred"
	StatusExpired    Status = "expired"
)

// Valid reports whether s is a known status.
func (s Status) Valid() bool {
	switch s {
	case StatusTodo, StatusInProgress, StatusDone, StatusDeferred, StatusExpired:
		return true
	}
	return false
}

// IsColumn reports whether tasks with this status are rendered on the board.
func (s Status) IsColumn() bool {
	return s == StatusTodo || s == StatusInProgress || s == StatusDone
}

type Priority string

const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

func (p Priority) Valid() bool {
	return p == PriorityLow || p == PriorityMedium || p == PriorityHigh
}

// Rank orders priorities low < medium < high. Unknown values rank lowest.
func (p Priority) Rank() int {
	switch p {
	case PriorityLow:
		return 1
	case PriorityMedium:
		return 2
	case PriorityHigh:
		return 3
	}
	return 0
}

// Task represents a user-owned board item.
type Task struct {
	ID           string         `json:"id"`
	UserID       string         `json:"user_id"`
	Title        string         `json:"title"`
	Description  string         `json:"description,omitempty"`
	Tags         []string       `json:"tags"`
	Deadline     *time.Time     `json:"deadline,omitempty"`
	Priority     Priority       `json:"priority"`
	Status       Status         `json:"status"`
	DeferredDate *time.Time     `json:"deferred_date,omitempty"`
	Position     int            `json:"position"`
	History      []HistoryEntry `json:"history,omitempty"`
	CreatedAt    time.Time      `json:"created_at"`
	UpdatedAt    time.Time      `json:"updated_at"`
}

func (t *Task) IsCompleted() bool {
	return t != nil && t.Status == StatusDone
}

// HasTag reports whether the task carries tag.
func (t *Task) HasTag(tag string) bool {
	if t == nil {
		return false
	}
	for _, existing := range t.Tags {
		if existing == tag {
			return true
		}
	}
	return false
}

// Clone returns a deep copy so callers can mutate it without aliasing slices.
func (t Task) Clone() Task {
	out := t
	if t.Tags != nil {
		out.Tags = append([]string(nil), t.Tags...)
	}
	if t.Deadline != nil {
		d := *t.Deadline
		out.Deadline = &d
	}
	if t.DeferredDate != nil {
		d := *t.DeferredDate
		out.DeferredDate = &d
	}
	if t.History != nil {
		out.History = make([]HistoryEntry, len(t.History))
		for i, entry := range t.History {
			out.History[i] = HistoryEntry{
				Timestamp: entry.Timestamp,
				Changes:   append([]Change(nil), entry.Changes...),
			}
		}
	}
	return out
}

// HistoryEntry groups the field changes of one edit.
type HistoryEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Changes   []Change  `json:"changes"`
}

// Change records one field transition. Values are kept as JSON so strings,
// tag lists and timestamps round-trip without a textual encoding.
type Change struct {
	Field    string          `json:"field"`
	OldValue json.RawMessage `json:"old_value"`
	NewValue json.RawMessage `json:"new_value"`
}

// TaskPatch carries the proposed field updates of an edit. Nil fields are left untouched.
type TaskPatch struct {
	Title        *string
	Description  *string
	Tags         *[]string
	Deadline     *time.Time
	Priority     *Priority
	Status       *Status
	DeferredDate *time.Time
}

// DateOnly truncates t to midnight in its own location.
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}
