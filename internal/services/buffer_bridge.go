package services

import (
	"context"

	"github.com/bytedance/sonic"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/infrastructure/buffer"
	"github.com/fastygo/taskboard/usecase"
)

type BufferBridge struct {
	processor *BufferProcessor
}

func NewBufferBridge(processor *BufferProcessor) *BufferBridge {
	return &BufferBridge{processor: processor}
}

func (b *BufferBridge) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	if b.processor == nil || user == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := sonic.Marshal(profileRecord{User: *user, PasswordHash: user.PasswordHash})
	if err != nil {
		return err
	}
	item := buffer.Item{
		UserID:    user.ID,
		Entity:    buffer.EntityProfile,
		Operation: operation,
		Data:      payload,
		Priority:  buffer.PriorityDefault,
	}
	return b.processor.BufferOperation(ctx, item)
}

func (b *BufferBridge) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	if b.processor == nil || task == nil {
		return domain.ErrInvalidPayload
	}
	payload, err := sonic.Marshal(task)
	if err != nil {
		return err
	}
	item := buffer.Item{
		UserID:    task.UserID,
		Entity:    buffer.EntityTask,
		Operation: operation,
		Data:      payload,
		Priority:  taskPriority(operation),
	}
	return b.processor.BufferOperation(ctx, item)
}

// profileRecord keeps the password hash, which domain.User hides from JSON.
type profileRecord struct {
	domain.User
	PasswordHash string `json:"password_hash"`
}

// Creates replay before the moves and edits that may reference them.
func taskPriority(operation string) int {
	switch operation {
	case usecase.OperationCreate:
		return buffer.PriorityCreate
	case usecase.OperationDelete:
		return buffer.PriorityDefault
	default:
		return buffer.PriorityEdit
	}
}

var _ usecase.OperationBuffer = (*BufferBridge)(nil)
