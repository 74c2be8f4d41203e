package usecase

import (
	"context"

	"github.com/fastygo/taskboard/domain"
)

// Buffered operations. Move and status carry their target in Task.Status and, for move,
// the destination index in Task.Position.
const (
	OperationCreate = "create"
	OperationUpdate = "update"
	OperationDelete = "delete"
	OperationStatus = "status"
	OperationMove   = "move"
)

// OperationBuffer abstracts the buffer processor so use cases stay storage-agnostic.
type OperationBuffer interface {
	BufferProfile(ctx context.Context, operation string, user *domain.User) error
	BufferTask(ctx context.Context, operation string, task *domain.Task) error
}

// Bufferable reports whether a failed write may be retried later. Domain errors describe a
// request that will never succeed and are returned to the caller instead.
func Bufferable(err error) bool {
	if err == nil {
		return false
	}
	for _, code := range []domain.ErrorCode{
		domain.ErrCodeNotFound,
		domain.ErrCodeInvalid,
		domain.ErrCodeConflict,
		domain.ErrCodeForbidden,
		domain.ErrCodeUnauthorized,
	} {
		if domain.IsDomainError(err, code) {
			return false
		}
	}
	return true
}
