// Package taskquery derives filtered and sorted views of a task list. All functions are
// pure and return new slices.
package taskquery

import (
	"fmt"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// Deadline is a named horizon measured from the evaluation time.
type Deadline string

const (
	DeadlineDay     Deadline = "1 day"
	DeadlineWeek    Deadline = "7 days"
	DeadlineMonthly Deadline = "monthly"
)

// Criteria selects tasks. Zero-valued fields do not filter.
type Criteria struct {
	Tags     []string
	Deadline Deadline
	Priority domain.Priority
}

// IsZero reports whether c filters nothing.
func (c Criteria) IsZero() bool {
	return len(c.Tags) == 0 && c.Deadline == "" && c.Priority == ""
}

// ParseDeadline validates a deadline horizon from a query string.
func ParseDeadline(raw string) (Deadline, error) {
	switch d := Deadline(raw); d {
	case "", DeadlineDay, DeadlineWeek, DeadlineMonthly:
		return d, nil
	}
	return "", fmt.Errorf("unknown deadline filter %q", raw)
}

// Limit returns the exclusive upper bound of the horizon relative to now.
func (d Deadline) Limit(now time.Time) time.Time {
	switch d {
	case DeadlineDay:
		return now.Add(24 * time.Hour)
	case DeadlineWeek:
		return now.Add(7 * 24 * time.Hour)
	case DeadlineMonthly:
		return now.AddDate(0, 1, 0)
	}
	return now
}

// Filter returns the tasks matching every criterion, in input order.
func Filter(tasks []domain.Task, c Criteria, now time.Time) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	var limit time.Time
	if c.Deadline != "" {
		limit = c.Deadline.Limit(now)
	}

	for _, task := range tasks {
		if !hasAllTags(task, c.Tags) {
			continue
		}
		if c.Priority != "" && task.Priority != c.Priority {
			continue
		}
		if c.Deadline != "" && (task.Deadline == nil || !task.Deadline.Before(limit)) {
			continue
		}
		out = append(out, task)
	}
	return out
}

func hasAllTags(task domain.Task, tags []string) bool {
	for _, tag := range tags {
		if !task.HasTag(tag) {
			return false
		}
	}
	return true
}
