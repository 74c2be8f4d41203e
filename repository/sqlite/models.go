package sqlite

import (
	"time"

	"github.com/fastygo/taskboard/domain"
)

type userRecord struct {
	ID           string `gorm:"primaryKey"`
	Email        string `gorm:"uniqueIndex"`
	Name         string
	PasswordHash string
	Role         string
	Status       string
	Theme        string
	Language     string
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (userRecord) TableName() string { return "users" }

type columnRecord struct {
	UserID   string `gorm:"primaryKey"`
	Status   string `gorm:"primaryKey"`
	Title    string
	IsLock   bool
	Position int
}

func (columnRecord) TableName() string { return "columns" }

type taskRecord struct {
	ID           string `gorm:"primaryKey"`
	UserID       string `gorm:"index:idx_tasks_user_position,priority:1"`
	Title        string
	Description  string
	Tags         []string `gorm:"serializer:json"`
	Deadline     *time.Time
	Priority     string
	Status       string `gorm:"index"`
	DeferredDate *time.Time
	Position     int                   `gorm:"index:idx_tasks_user_position,priority:2"`
	History      []domain.HistoryEntry `gorm:"serializer:json"`
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

func (taskRecord) TableName() string { return "tasks" }

func toUserRecord(u *domain.User) userRecord {
	return userRecord{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
		Status:       u.Status,
		Theme:        u.Theme,
		Language:     u.Language,
		CreatedAt:    u.CreatedAt,
		UpdatedAt:    u.UpdatedAt,
	}
}

func (r userRecord) toDomain() *domain.User {
	return &domain.User{
		ID:           r.ID,
		Email:        r.Email,
		Name:         r.Name,
		PasswordHash: r.PasswordHash,
		Role:         r.Role,
		Status:       r.Status,
		Theme:        r.Theme,
		Language:     r.Language,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}

func toTaskRecord(t *domain.Task) taskRecord {
	tags := t.Tags
	if tags == nil {
		tags = []string{}
	}
	return taskRecord{
		ID:           t.ID,
		UserID:       t.UserID,
		Title:        t.Title,
		Description:  t.Description,
		Tags:         tags,
		Deadline:     t.Deadline,
		Priority:     string(t.Priority),
		Status:       string(t.Status),
		DeferredDate: t.DeferredDate,
		Position:     t.Position,
		History:      t.History,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

func (r taskRecord) toDomain() domain.Task {
	history := r.History
	if len(history) == 0 {
		history = nil
	}
	return domain.Task{
		ID:           r.ID,
		UserID:       r.UserID,
		Title:        r.Title,
		Description:  r.Description,
		Tags:         r.Tags,
		Deadline:     r.Deadline,
		Priority:     domain.Priority(r.Priority),
		Status:       domain.Status(r.Status),
		DeferredDate: r.DeferredDate,
		Position:     r.Position,
		History:      history,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
	}
}
