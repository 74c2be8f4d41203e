package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type columnRepository struct {
	pool *pgxpool.Pool
}

// NewColumnRepository returns a Postgres-backed implementation of ColumnRepository.
func NewColumnRepository(pool *pgxpool.Pool) repository.ColumnRepository {
	return &columnRepository{pool: pool}
}

func (r *columnRepository) List(ctx context.Context, userID string) ([]domain.Column, error) {
	const query = `
	SELECT status, title, is_lock, position
	FROM columns
	WHERE user_id = $1
	ORDER BY position ASC
	`
	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var columns []domain.Column
	for rows.Next() {
		var (
			column domain.Column
			status string
		)
		if err := rows.Scan(&status, &column.Title, &column.IsLock, &column.Position); err != nil {
			return nil, err
		}
		column.Status = domain.Status(status)
		columns = append(columns, column)
	}
	return columns, rows.Err()
}

func (r *columnRepository) Init(ctx context.Context, userID string, columns []domain.Column) error {
	const query = `
	INSERT INTO columns (user_id, status, title, is_lock, position)
	VALUES ($1, $2, $3, $4, $5)
	ON CONFLICT (user_id, status) DO NOTHING
	`
	batch := &pgx.Batch{}
	for _, column := range columns {
		batch.Queue(query, userID, string(column.Status), column.Title, column.IsLock, column.Position)
	}
	return r.pool.SendBatch(ctx, batch).Close()
}

func (r *columnRepository) Reorder(ctx context.Context, userID string, order []domain.Status) error {
	return pgx.BeginFunc(ctx, r.pool, func(tx pgx.Tx) error {
		rows, err := tx.Query(ctx,
			`SELECT status FROM columns WHERE user_id = $1 ORDER BY position ASC FOR UPDATE`,
			userID,
		)
		if err != nil {
			return err
		}
		current, err := pgx.CollectRows(rows, pgx.RowTo[string])
		if err != nil {
			return err
		}

		requested := make([]string, len(order))
		for i, status := range order {
			requested[i] = string(status)
		}

		const update = `
		UPDATE columns AS c
		SET position = o.ord - 1
		FROM unnest($2::text[]) WITH ORDINALITY AS o(status, ord)
		WHERE c.status = o.status AND c.user_id = $1
		`
		_, err = tx.Exec(ctx, update, userID, repository.MergeOrder(current, requested))
		return err
	})
}

func (r *columnRepository) ToggleLock(ctx context.Context, userID string, status domain.Status) error {
	const query = `UPDATE columns SET is_lock = NOT is_lock WHERE user_id = $1 AND status = $2`
	tag, err := r.pool.Exec(ctx, query, userID, string(status))
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrColumnNotFound
	}
	return nil
}
