package buffer

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Buffered entities.
const (
	EntityProfile = "profile"
	EntityTask    = "task"
)

// Replay priorities. Higher replays first; a create must land before the moves that
// reference the task.
const (
	PriorityDefault = 3
	PriorityEdit    = 4
	PriorityCreate  = 5

	maxPriority = 5
)

// Item is one board write held back while the primary store is unreachable.
type Item struct {
	ID        string          `json:"id"`
	UserID    string          `json:"user_id"`
	Entity    string          `json:"entity"`
	Operation string          `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Priority  int             `json:"priority"`
	Retries   int             `json:"retries"`
	Timestamp time.Time       `json:"timestamp"`

	bucketKey []byte
}

// Expired reports whether the item was queued before cutoff.
func (i Item) Expired(cutoff time.Time) bool {
	return i.Timestamp.Before(cutoff)
}

func (i *Item) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Priority <= 0 || i.Priority > maxPriority {
		i.Priority = PriorityDefault
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
