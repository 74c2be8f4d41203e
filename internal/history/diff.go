// Package history computes the field-level changes of a task edit and records them in the
// task's append-only history.
package history

import (
	"encoding/json"
	"slices"
	"strings"
	"time"

	"github.com/fastygo/taskboard/domain"
)

// Field names as they appear in history records.
const (
	FieldTitle        = "title"
	FieldDescription  = "description"
	FieldTags         = "tags"
	FieldDeadline     = "deadline"
	FieldPriority     = "priority"
	FieldStatus       = "status"
	FieldDeferredDate = "deferred_date"
)

// Apply writes every effective change of patch into task and appends one history entry
// stamped at when at least one field changed. Blank strings, empty tag lists and zero
// times count as "no value" and never overwrite the current field.
func Apply(task *domain.Task, patch domain.TaskPatch, at time.Time) bool {
	if task == nil {
		return false
	}
	changes := apply(task, patch)
	if len(changes) == 0 {
		return false
	}
	task.History = append(task.History, domain.HistoryEntry{Timestamp: at, Changes: changes})
	return true
}

// Diff returns the changes patch would make to task without modifying it.
func Diff(task domain.Task, patch domain.TaskPatch) []domain.Change {
	scratch := task.Clone()
	return apply(&scratch, patch)
}

func apply(task *domain.Task, patch domain.TaskPatch) []domain.Change {
	var changes []domain.Change

	if v := patch.Title; v != nil && strings.TrimSpace(*v) != "" && *v != task.Title {
		changes = append(changes, change(FieldTitle, task.Title, *v))
		task.Title = *v
	}
	if v := patch.Description; v != nil && strings.TrimSpace(*v) != "" && *v != task.Description {
		changes = append(changes, change(FieldDescription, task.Description, *v))
		task.Description = *v
	}
	if v := patch.Tags; v != nil && len(*v) > 0 && !slices.Equal(*v, task.Tags) {
		next := append([]string(nil), (*v)...)
		changes = append(changes, change(FieldTags, tagsValue(task.Tags), next))
		task.Tags = next
	}
	if v := patch.Deadline; v != nil && !v.IsZero() && !sameTime(task.Deadline, *v) {
		next := *v
		changes = append(changes, change(FieldDeadline, task.Deadline, next))
		task.Deadline = &next
	}
	if v := patch.Priority; v != nil && *v != "" && *v != task.Priority {
		changes = append(changes, change(FieldPriority, task.Priority, *v))
		task.Priority = *v
	}
	if v := patch.Status; v != nil && *v != "" && *v != task.Status {
		changes = append(changes, change(FieldStatus, task.Status, *v))
		task.Status = *v
	}
	if v := patch.DeferredDate; v != nil && !v.IsZero() && !sameTime(task.DeferredDate, *v) {
		next := *v
		changes = append(changes, change(FieldDeferredDate, task.DeferredDate, next))
		task.DeferredDate = &next
	}

	return changes
}

func change(field string, oldValue, newValue interface{}) domain.Change {
	return domain.Change{
		Field:    field,
		OldValue: encode(oldValue),
		NewValue: encode(newValue),
	}
}

func encode(v interface{}) json.RawMessage {
	b, err := json.Marshal(v)
	if err != nil {
		return json.RawMessage("null")
	}
	return b
}

func tagsValue(tags []string) []string {
	if tags == nil {
		return []string{}
	}
	return tags
}

func sameTime(current *time.Time, next time.Time) bool {
	return current != nil && current.Equal(next)
}
