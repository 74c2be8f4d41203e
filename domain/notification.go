package domain

import "time"

// Notification warns a user that a task deadline is close.
type Notification struct {
	ID          string    `json:"id"`
	UserID      string    `json:"user_id"`
	TaskID      string    `json:"task_id"`
	MinutesLeft int       `json:"minutes_left"`
	Message     string    `json:"message"`
	CreatedAt   time.Time `json:"created_at"`
}
