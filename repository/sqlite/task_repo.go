package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type taskRepository struct {
	db *gorm.DB
}

// NewTaskRepository returns a gorm-backed implementation of TaskRepository.
func NewTaskRepository(db *gorm.DB) repository.TaskRepository {
	return &taskRepository{db: db}
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	var rec taskRecord
	if err := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).First(&rec).Error; err != nil {
		return nil, notFound(err, domain.ErrTaskNotFound)
	}
	task := rec.toDomain()
	return &task, nil
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	q := r.db.WithContext(ctx).Model(&taskRecord{})
	if filter.UserID != "" {
		q = q.Where("user_id = ?", filter.UserID)
	}
	if filter.Status != "" {
		q = q.Where("status = ?", string(filter.Status))
	}
	if filter.Limit > 0 {
		q = q.Limit(filter.Limit)
	}
	if filter.Offset > 0 {
		q = q.Offset(filter.Offset)
	}

	var recs []taskRecord
	if err := q.Order("position ASC, created_at ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	return toTasks(recs), nil
}

func (r *taskRepository) ListForSweep(ctx context.Context, horizon time.Time) ([]domain.Task, error) {
	var recs []taskRecord
	err := r.db.WithContext(ctx).
		Where("(deadline IS NOT NULL AND deadline < ? AND status NOT IN ?) OR status = ?",
			horizon, []string{string(domain.StatusDone), string(domain.StatusExpired)}, string(domain.StatusDeferred)).
		Order("user_id, position").
		Find(&recs).Error
	if err != nil {
		return nil, err
	}
	return toTasks(recs), nil
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var next int
		if err := tx.Model(&taskRecord{}).
			Where("user_id = ?", task.UserID).
			Select("COALESCE(MAX(position) + 1, 0)").
			Scan(&next).Error; err != nil {
			return err
		}
		task.Position = next

		rec := toTaskRecord(task)
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("create task: %w", err)
		}
		task.CreatedAt = rec.CreatedAt
		task.UpdatedAt = rec.UpdatedAt
		return nil
	})
	if err != nil {
		return nil, err
	}
	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	rec := toTaskRecord(task)
	rec.UpdatedAt = time.Now()
	res := r.db.WithContext(ctx).
		Model(&taskRecord{}).
		Where("id = ? AND user_id = ?", task.ID, task.UserID).
		Select("title", "description", "tags", "deadline", "priority", "status", "deferred_date", "history", "updated_at").
		Updates(&rec)
	if res.Error != nil {
		return fmt.Errorf("update task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	task.UpdatedAt = rec.UpdatedAt
	return nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	res := r.db.WithContext(ctx).Where("id = ? AND user_id = ?", id, userID).Delete(&taskRecord{})
	if res.Error != nil {
		return fmt.Errorf("delete task: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, userID, id string, status domain.Status) error {
	return setStatus(r.db.WithContext(ctx), userID, id, status)
}

func (r *taskRepository) Move(ctx context.Context, userID, id string, status domain.Status, index int) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := taskOrder(tx, userID)
		if err != nil {
			return err
		}
		order, ok := repository.PlaceAt(current, id, index)
		if !ok {
			return domain.ErrTaskNotFound
		}
		if err := setStatus(tx, userID, id, status); err != nil {
			return err
		}
		return writeTaskOrder(tx, userID, order)
	})
}

func (r *taskRepository) Reorder(ctx context.Context, userID string, ids []string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		current, err := taskOrder(tx, userID)
		if err != nil {
			return err
		}
		return writeTaskOrder(tx, userID, repository.MergeOrder(current, ids))
	})
}

func setStatus(db *gorm.DB, userID, id string, status domain.Status) error {
	res := db.Model(&taskRecord{}).
		Where("id = ? AND user_id = ?", id, userID).
		Updates(map[string]interface{}{"status": string(status), "updated_at": time.Now()})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func taskOrder(tx *gorm.DB, userID string) ([]string, error) {
	var ids []string
	err := tx.Model(&taskRecord{}).
		Where("user_id = ?", userID).
		Order("position ASC, created_at ASC").
		Pluck("id", &ids).Error
	return ids, err
}

func writeTaskOrder(tx *gorm.DB, userID string, order []string) error {
	for i, id := range order {
		if err := tx.Model(&taskRecord{}).
			Where("id = ? AND user_id = ?", id, userID).
			UpdateColumn("position", i).Error; err != nil {
			return err
		}
	}
	return nil
}

func toTasks(recs []taskRecord) []domain.Task {
	tasks := make([]domain.Task, 0, len(recs))
	for _, rec := range recs {
		tasks = append(tasks, rec.toDomain())
	}
	return tasks
}
