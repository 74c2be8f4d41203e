package task

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/history"
	"github.com/fastygo/taskboard/internal/locale"
	"github.com/fastygo/taskboard/internal/taskquery"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

// CreateInput carries the fields of a new task.
type CreateInput struct {
	Title        string
	Description  string
	Tags         []string
	Deadline     *time.Time
	Priority     domain.Priority
	DeferredDate *time.Time
}

// ListQuery selects a view of the board. An empty Status lists the board columns.
type ListQuery struct {
	Status   domain.Status
	Criteria taskquery.Criteria
	Order    taskquery.Order
}

// ChangeView is one localized history change.
type ChangeView struct {
	Field    string   `json:"field"`
	Label    string   `json:"label"`
	OldValue []string `json:"old_value"`
	NewValue []string `json:"new_value"`
}

// EntryView is one localized history entry.
type EntryView struct {
	Timestamp string       `json:"timestamp"`
	Changes   []ChangeView `json:"changes"`
}

type UseCase struct {
	tasks    repository.TaskRepository
	buffer   usecase.OperationBuffer
	locales  *locale.Bundle
	location *time.Location
	logger   *zap.Logger
	now      func() time.Time
}

func New(
	tasks repository.TaskRepository,
	buffer usecase.OperationBuffer,
	locales *locale.Bundle,
	location *time.Location,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if location == nil {
		location = time.UTC
	}
	return &UseCase{
		tasks:    tasks,
		buffer:   buffer,
		locales:  locales,
		location: location,
		logger:   logger,
		now:      time.Now,
	}
}

// List returns one view of the user's tasks, filtered and sorted.
func (uc *UseCase) List(ctx context.Context, userID string, q ListQuery) ([]domain.Task, error) {
	if q.Status != "" && !q.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	tasks, err := uc.tasks.List(ctx, repository.TaskFilter{UserID: userID, Status: q.Status})
	if err != nil {
		return nil, err
	}
	if q.Status == "" {
		tasks = boardTasks(tasks)
	}
	tasks = taskquery.Filter(tasks, q.Criteria, uc.now())
	return taskquery.Sort(tasks, q.Order), nil
}

func (uc *UseCase) Get(ctx context.Context, userID, id string) (*domain.Task, error) {
	return uc.tasks.GetByID(ctx, userID, id)
}

// Create stores a new task. A deferred date parks it in the deferred view.
func (uc *UseCase) Create(ctx context.Context, userID string, in CreateInput) (*domain.Task, error) {
	if strings.TrimSpace(in.Title) == "" {
		return nil, domain.ErrTitleRequired
	}
	if in.Priority == "" {
		in.Priority = domain.PriorityMedium
	}
	if !in.Priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}

	now := uc.now()
	task := &domain.Task{
		ID:           uuid.NewString(),
		UserID:       userID,
		Title:        strings.TrimSpace(in.Title),
		Description:  in.Description,
		Tags:         cleanTags(in.Tags),
		Deadline:     in.Deadline,
		Priority:     in.Priority,
		Status:       domain.StatusTodo,
		DeferredDate: in.DeferredDate,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if task.DeferredDate != nil {
		task.Status = domain.StatusDeferred
	}

	created, err := uc.tasks.Create(ctx, task)
	if err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationCreate, task, err) {
			return task, nil
		}
		return nil, err
	}
	return created, nil
}

// Edit applies patch and records the changed fields in the task history.
func (uc *UseCase) Edit(ctx context.Context, userID, id string, patch domain.TaskPatch) (*domain.Task, error) {
	if patch.Priority != nil && *patch.Priority != "" && !patch.Priority.Valid() {
		return nil, domain.ErrInvalidPriority
	}
	if patch.Status != nil && *patch.Status != "" && !patch.Status.Valid() {
		return nil, domain.ErrInvalidStatus
	}
	if patch.Tags != nil {
		tags := cleanTags(*patch.Tags)
		patch.Tags = &tags
	}

	task, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !history.Apply(task, patch, uc.now()) {
		return task, nil
	}

	if err := uc.tasks.Update(ctx, task); err != nil {
		if uc.shouldBuffer(ctx, usecase.OperationUpdate, task, err) {
			return task, nil
		}
		return nil, err
	}
	return task, nil
}

func (uc *UseCase) Delete(ctx context.Context, userID, id string) error {
	if err := uc.tasks.Delete(ctx, userID, id); err != nil {
		task := &domain.Task{ID: id, UserID: userID}
		if uc.shouldBuffer(ctx, usecase.OperationDelete, task, err) {
			return nil
		}
		return err
	}
	return nil
}

// SetStatus moves a task to status without touching its position.
func (uc *UseCase) SetStatus(ctx context.Context, userID, id string, status domain.Status) error {
	if !status.Valid() {
		return domain.ErrInvalidStatus
	}
	if err := uc.tasks.UpdateStatus(ctx, userID, id, status); err != nil {
		task := &domain.Task{ID: id, UserID: userID, Status: status}
		if uc.shouldBuffer(ctx, usecase.OperationStatus, task, err) {
			return nil
		}
		return err
	}
	return nil
}

// Restore brings a deferred task back to the todo column.
func (uc *UseCase) Restore(ctx context.Context, userID, id string) (*domain.Task, error) {
	task, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if task.Status != domain.StatusDeferred {
		return nil, domain.Invalidf("task %s is %s, only deferred tasks can be restored", id, task.Status)
	}
	if err := uc.SetStatus(ctx, userID, id, domain.StatusTodo); err != nil {
		return nil, err
	}
	task.Status = domain.StatusTodo
	return task, nil
}

// Reorder stores ids as the leading part of the user's task order.
func (uc *UseCase) Reorder(ctx context.Context, userID string, ids []string) error {
	if len(ids) == 0 {
		return domain.Invalidf("task order is empty")
	}
	return uc.tasks.Reorder(ctx, userID, ids)
}

// History renders the task's change log in language lang, newest entry last.
func (uc *UseCase) History(ctx context.Context, userID, id, lang string) ([]EntryView, error) {
	task, err := uc.tasks.GetByID(ctx, userID, id)
	if err != nil {
		return nil, err
	}

	printer := uc.locales.Printer(lang)
	out := make([]EntryView, 0, len(task.History))
	for _, entry := range task.History {
		view := EntryView{
			Timestamp: entry.Timestamp.In(uc.location).Format(history.DisplayLayout),
			Changes:   make([]ChangeView, 0, len(entry.Changes)),
		}
		for _, change := range entry.Changes {
			view.Changes = append(view.Changes, ChangeView{
				Field:    change.Field,
				Label:    printer.ChangeLabel(change.Field),
				OldValue: uc.localize(printer, change.Field, history.Values(change.OldValue, uc.location)),
				NewValue: uc.localize(printer, change.Field, history.Values(change.NewValue, uc.location)),
			})
		}
		out = append(out, view)
	}
	return out, nil
}

func (uc *UseCase) localize(printer *locale.Printer, field string, values []string) []string {
	switch field {
	case history.FieldPriority, history.FieldStatus, history.FieldTags:
	default:
		return values
	}
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = printer.Value(v)
	}
	return out
}

func (uc *UseCase) shouldBuffer(ctx context.Context, operation string, task *domain.Task, cause error) bool {
	if uc.buffer == nil || !usecase.Bufferable(cause) {
		return false
	}
	if err := uc.buffer.BufferTask(ctx, operation, task); err != nil {
		uc.logger.Error("failed to buffer task operation", zap.String("operation", operation), zap.Error(err))
		return false
	}
	uc.logger.Warn("task operation buffered",
		zap.String("operation", operation),
		zap.String("task_id", task.ID),
		zap.Error(cause),
	)
	return true
}

func boardTasks(tasks []domain.Task) []domain.Task {
	out := make([]domain.Task, 0, len(tasks))
	for _, task := range tasks {
		if task.Status.IsColumn() {
			out = append(out, task)
		}
	}
	return out
}

func cleanTags(tags []string) []string {
	out := make([]string, 0, len(tags))
	seen := make(map[string]struct{}, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		if _, ok := seen[tag]; ok {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	return out
}
