package profile

import (
	"context"
	"errors"
	"testing"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type memUsers struct {
	repository.UserRepository
	user      domain.User
	upsertErr error
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if id != m.user.ID {
		return nil, domain.ErrUserNotFound
	}
	copied := m.user
	return &copied, nil
}

func (m *memUsers) Upsert(ctx context.Context, user *domain.User) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.user = *user
	return nil
}

type countingBuffer struct {
	profiles int
}

func (b *countingBuffer) BufferProfile(ctx context.Context, operation string, user *domain.User) error {
	b.profiles++
	return nil
}

func (b *countingBuffer) BufferTask(ctx context.Context, operation string, task *domain.Task) error {
	return nil
}

func strPtr(s string) *string { return &s }

func TestGetProfileIncludesPalette(t *testing.T) {
	users := &memUsers{user: domain.User{ID: "u1", Theme: domain.ThemeDark}}
	uc := New(users, nil, nil)

	p, err := uc.GetProfile(context.Background(), "u1")
	if err != nil {
		t.Fatalf("get profile: %v", err)
	}
	if p.Palette.Mode != domain.ThemeDark || p.Palette.Background != "#333" {
		t.Fatalf("unexpected palette %+v", p.Palette)
	}
}

func TestUpdateProfile(t *testing.T) {
	users := &memUsers{user: domain.User{ID: "u1", Name: "Old", Theme: domain.ThemeLight, Language: "en"}}
	uc := New(users, nil, nil)
	ctx := context.Background()

	p, err := uc.UpdateProfile(ctx, "u1", Update{Name: strPtr(" New "), Theme: strPtr(domain.ThemeDark), Language: strPtr("ukr")})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if p.Name != "New" || p.Theme != domain.ThemeDark || p.Language != "ukr" || p.Palette.Mode != domain.ThemeDark {
		t.Fatalf("unexpected profile %+v", p)
	}
	if users.user.Language != "ukr" {
		t.Fatalf("update not persisted: %+v", users.user)
	}

	if _, err := uc.UpdateProfile(ctx, "u1", Update{Theme: strPtr("blue")}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected invalid theme, got %v", err)
	}
	if _, err := uc.UpdateProfile(ctx, "u1", Update{Language: strPtr("de")}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected invalid language, got %v", err)
	}
}

func TestUpdateProfileBuffersOnStoreFailure(t *testing.T) {
	users := &memUsers{user: domain.User{ID: "u1", Theme: domain.ThemeLight}, upsertErr: errors.New("connection reset")}
	buf := &countingBuffer{}
	uc := New(users, buf, nil)

	p, err := uc.UpdateProfile(context.Background(), "u1", Update{Theme: strPtr(domain.ThemeDark)})
	if err != nil {
		t.Fatalf("expected buffered update, got %v", err)
	}
	if buf.profiles != 1 || p.Theme != domain.ThemeDark {
		t.Fatalf("buffer=%d profile=%+v", buf.profiles, p)
	}

	users.upsertErr = domain.ErrEmailTaken
	if _, err := uc.UpdateProfile(context.Background(), "u1", Update{Theme: strPtr(domain.ThemeDark)}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("domain errors must not be buffered, got %v", err)
	}
	if buf.profiles != 1 {
		t.Fatalf("unexpected buffer count %d", buf.profiles)
	}
}
