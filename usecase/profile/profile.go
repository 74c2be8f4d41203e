package profile

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/locale"
	"github.com/fastygo/taskboard/repository"
	"github.com/fastygo/taskboard/usecase"
)

// Profile is a user together with the palette of their theme.
type Profile struct {
	*domain.User
	Palette domain.Palette `json:"palette"`
}

// Update carries the editable preferences. Nil fields are left untouched.
type Update struct {
	Name     *string
	Theme    *string
	Language *string
}

type UseCase struct {
	users  repository.UserRepository
	buffer usecase.OperationBuffer
	logger *zap.Logger
}

func New(users repository.UserRepository, buffer usecase.OperationBuffer, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		users:  users,
		buffer: buffer,
		logger: logger,
	}
}

func (uc *UseCase) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return newProfile(user), nil
}

func (uc *UseCase) UpdateProfile(ctx context.Context, userID string, in Update) (*Profile, error) {
	if in.Theme != nil && !domain.ValidTheme(*in.Theme) {
		return nil, domain.Invalidf("unknown theme %q", *in.Theme)
	}
	if in.Language != nil && !locale.Supported(*in.Language) {
		return nil, domain.Invalidf("unsupported language %q", *in.Language)
	}

	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	if in.Name != nil {
		user.Name = strings.TrimSpace(*in.Name)
	}
	if in.Theme != nil {
		user.Theme = *in.Theme
	}
	if in.Language != nil {
		user.Language = *in.Language
	}

	if err := uc.users.Upsert(ctx, user); err != nil {
		if uc.buffer != nil && usecase.Bufferable(err) {
			if bufErr := uc.buffer.BufferProfile(ctx, usecase.OperationUpdate, user); bufErr != nil {
				uc.logger.Error("failed to buffer profile update", zap.Error(bufErr))
				return nil, err
			}
			uc.logger.Warn("profile update buffered due to repository error", zap.Error(err))
			return newProfile(user), nil
		}
		return nil, err
	}
	return newProfile(user), nil
}

func newProfile(user *domain.User) *Profile {
	return &Profile{User: user, Palette: domain.ThemePalette(user.Theme)}
}
