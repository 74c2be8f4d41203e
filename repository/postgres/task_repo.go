package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

const taskColumns = `id, user_id, title, description, tags, deadline, priority, status, deferred_date, position, history, created_at, updated_at`

type taskRepository struct {
	pool *pgxpool.Pool
}

// NewTaskRepository returns a Postgres-backed implementation of TaskRepository.
func NewTaskRepository(pool *pgxpool.Pool) repository.TaskRepository {
	return &taskRepository{pool: pool}
}

func (r *taskRepository) GetByID(ctx context.Context, userID, id string) (*domain.Task, error) {
	query := `SELECT ` + taskColumns + ` FROM tasks WHERE id = $1 AND user_id = $2`
	row := r.pool.QueryRow(ctx, query, id, userID)
	return scanTask(row)
}

func (r *taskRepository) List(ctx context.Context, filter repository.TaskFilter) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE ($1 = '' OR user_id = $1)
	  AND ($2 = '' OR status = $2)
	ORDER BY position ASC, created_at ASC
	LIMIT NULLIF($3, 0) OFFSET $4
	`
	rows, err := r.pool.Query(ctx, query, filter.UserID, string(filter.Status), clampLimit(filter.Limit), filter.Offset)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *taskRepository) ListForSweep(ctx context.Context, horizon time.Time) ([]domain.Task, error) {
	query := `
	SELECT ` + taskColumns + `
	FROM tasks
	WHERE (deadline IS NOT NULL AND deadline < $1 AND status NOT IN ('done', 'expired'))
	   OR status = 'deferred'
	ORDER BY user_id, position
	`
	rows, err := r.pool.Query(ctx, query, horizon)
	if err != nil {
		return nil, err
	}
	return collectTasks(rows)
}

func (r *taskRepository) Create(ctx context.Context, task *domain.Task) (*domain.Task, error) {
	if task == nil {
		return nil, domain.ErrInvalidPayload
	}
	if task.ID == "" {
		task.ID = uuid.NewString()
	}

	history, err := marshalHistory(task.History)
	if err != nil {
		return nil, err
	}

	const query = `
	INSERT INTO tasks (id, user_id, title, description, tags, deadline, priority, status, deferred_date, position, history)
	VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9,
		COALESCE((SELECT MAX(position) + 1 FROM tasks WHERE user_id = $2), 0), $10)
	RETURNING position, created_at, updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		tagsOrEmpty(task.Tags),
		nullTimePtr(task.Deadline),
		string(task.Priority),
		string(task.Status),
		nullTimePtr(task.DeferredDate),
		history,
	).Scan(&task.Position, &task.CreatedAt, &task.UpdatedAt); err != nil {
		return nil, err
	}

	return task, nil
}

func (r *taskRepository) Update(ctx context.Context, task *domain.Task) error {
	if task == nil {
		return domain.ErrInvalidPayload
	}

	history, err := marshalHistory(task.History)
	if err != nil {
		return err
	}

	const query = `
	UPDATE tasks
	SET title = $3,
		description = $4,
		tags = $5,
		deadline = $6,
		priority = $7,
		status = $8,
		deferred_date = $9,
		history = $10,
		updated_at = NOW()
	WHERE id = $1 AND user_id = $2
	RETURNING updated_at
	`
	if err := r.pool.QueryRow(ctx, query,
		task.ID,
		task.UserID,
		task.Title,
		task.Description,
		tagsOrEmpty(task.Tags),
		nullTimePtr(task.Deadline),
		string(task.Priority),
		string(task.Status),
		nullTimePtr(task.DeferredDate),
		history,
	).Scan(&task.UpdatedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrTaskNotFound
		}
		return err
	}

	return nil
}

func (r *taskRepository) Delete(ctx context.Context, userID, id string) error {
	const query = `DELETE FROM tasks WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) UpdateStatus(ctx context.Context, userID, id string, status domain.Status) error {
	const query = `UPDATE tasks SET status = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`
	tag, err := r.pool.Exec(ctx, query, id, userID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrTaskNotFound
	}
	return nil
}

func (r *taskRepository) Move(ctx context.Context, userID, id string, status domain.Status, index int) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := lockTaskOrder(ctx, tx, userID)
		if err != nil {
			return err
		}
		order, ok := repository.PlaceAt(current, id, index)
		if !ok {
			return domain.ErrTaskNotFound
		}
		if _, err := tx.Exec(ctx,
			`UPDATE tasks SET status = $3, updated_at = NOW() WHERE id = $1 AND user_id = $2`,
			id, userID, string(status),
		); err != nil {
			return err
		}
		return writeTaskOrder(ctx, tx, userID, order)
	})
}

func (r *taskRepository) Reorder(ctx context.Context, userID string, ids []string) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		current, err := lockTaskOrder(ctx, tx, userID)
		if err != nil {
			return err
		}
		return writeTaskOrder(ctx, tx, userID, repository.MergeOrder(current, ids))
	})
}

func lockTaskOrder(ctx context.Context, tx pgx.Tx, userID string) ([]string, error) {
	rows, err := tx.Query(ctx,
		`SELECT id FROM tasks WHERE user_id = $1 ORDER BY position ASC, created_at ASC FOR UPDATE`,
		userID,
	)
	if err != nil {
		return nil, err
	}
	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, fmt.Errorf("load task order: %w", err)
	}
	return ids, nil
}

func writeTaskOrder(ctx context.Context, tx pgx.Tx, userID string, order []string) error {
	const query = `
	UPDATE tasks AS t
	SET position = o.ord - 1
	FROM unnest($2::text[]) WITH ORDINALITY AS o(id, ord)
	WHERE t.id = o.id AND t.user_id = $1
	`
	_, err := tx.Exec(ctx, query, userID, order)
	return err
}

func collectTasks(rows pgx.Rows) ([]domain.Task, error) {
	defer rows.Close()

	var tasks []domain.Task
	for rows.Next() {
		task, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		tasks = append(tasks, *task)
	}
	return tasks, rows.Err()
}

func scanTask(row interface {
	Scan(dest ...interface{}) error
}) (*domain.Task, error) {
	var task domain.Task
	var (
		priority, status string
		history          []byte
	)

	if err := row.Scan(
		&task.ID,
		&task.UserID,
		&task.Title,
		&task.Description,
		&task.Tags,
		&task.Deadline,
		&priority,
		&status,
		&task.DeferredDate,
		&task.Position,
		&history,
		&task.CreatedAt,
		&task.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrTaskNotFound
		}
		return nil, err
	}

	task.Priority = domain.Priority(priority)
	task.Status = domain.Status(status)
	entries, err := unmarshalHistory(history)
	if err != nil {
		return nil, fmt.Errorf("decode history of task %s: %w", task.ID, err)
	}
	task.History = entries

	return &task, nil
}

func clampLimit(limit int) int {
	if limit < 0 {
		return 0
	}
	return limit
}
