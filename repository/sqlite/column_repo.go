package sqlite

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type columnRepository struct {
	db *gorm.DB
}

// NewColumnRepository returns a gorm-backed implementation of ColumnRepository.
func NewColumnRepository(db *gorm.DB) repository.ColumnRepository {
	return &columnRepository{db: db}
}

func (r *columnRepository) List(ctx context.Context, userID string) ([]domain.Column, error) {
	var recs []columnRecord
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).Order("position ASC").Find(&recs).Error; err != nil {
		return nil, err
	}
	columns := make([]domain.Column, 0, len(recs))
	for _, rec := range recs {
		columns = append(columns, domain.Column{
			Status:   domain.Status(rec.Status),
			Title:    rec.Title,
			IsLock:   rec.IsLock,
			Position: rec.Position,
		})
	}
	return columns, nil
}

func (r *columnRepository) Init(ctx context.Context, userID string, columns []domain.Column) error {
	if len(columns) == 0 {
		return nil
	}
	recs := make([]columnRecord, 0, len(columns))
	for _, column := range columns {
		recs = append(recs, columnRecord{
			UserID:   userID,
			Status:   string(column.Status),
			Title:    column.Title,
			IsLock:   column.IsLock,
			Position: column.Position,
		})
	}
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&recs).Error
}

func (r *columnRepository) Reorder(ctx context.Context, userID string, order []domain.Status) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var current []string
		if err := tx.Model(&columnRecord{}).Where("user_id = ?", userID).Order("position ASC").Pluck("status", &current).Error; err != nil {
			return err
		}
		requested := make([]string, len(order))
		for i, status := range order {
			requested[i] = string(status)
		}
		for i, status := range repository.MergeOrder(current, requested) {
			if err := tx.Model(&columnRecord{}).
				Where("user_id = ? AND status = ?", userID, status).
				UpdateColumn("position", i).Error; err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *columnRepository) ToggleLock(ctx context.Context, userID string, status domain.Status) error {
	res := r.db.WithContext(ctx).Model(&columnRecord{}).
		Where("user_id = ? AND status = ?", userID, string(status)).
		UpdateColumn("is_lock", gorm.Expr("NOT is_lock"))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return domain.ErrColumnNotFound
	}
	return nil
}
