package auth

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/repository"
)

type memUsers struct {
	repository.UserRepository
	byID map[string]*domain.User
}

func (m *memUsers) Create(ctx context.Context, user *domain.User) error {
	for _, existing := range m.byID {
		if existing.Email == user.Email {
			return domain.ErrEmailTaken
		}
	}
	copied := *user
	m.byID[user.ID] = &copied
	return nil
}

func (m *memUsers) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	for _, user := range m.byID {
		if user.Email == email {
			copied := *user
			return &copied, nil
		}
	}
	return nil, domain.ErrUserNotFound
}

func (m *memUsers) GetByID(ctx context.Context, id string) (*domain.User, error) {
	user, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	copied := *user
	return &copied, nil
}

type memSessions struct {
	byID map[string]*domain.Session
}

func (m *memSessions) Get(ctx context.Context, id string) (*domain.Session, error) {
	s, ok := m.byID[id]
	if !ok {
		return nil, domain.ErrSessionNotFound
	}
	copied := *s
	return &copied, nil
}

func (m *memSessions) Save(ctx context.Context, s *domain.Session) error {
	copied := *s
	m.byID[s.ID] = &copied
	return nil
}

func (m *memSessions) Delete(ctx context.Context, id string) error {
	delete(m.byID, id)
	return nil
}

func (m *memSessions) Extend(ctx context.Context, id string, ttlSeconds int) error {
	s, ok := m.byID[id]
	if !ok {
		return domain.ErrSessionNotFound
	}
	s.ExpiresAt = time.Now().Add(time.Duration(ttlSeconds) * time.Second)
	return nil
}

type memColumns struct {
	repository.ColumnRepository
	seeded  map[string][]domain.Column
	initErr error
}

func (m *memColumns) Init(ctx context.Context, userID string, columns []domain.Column) error {
	if m.initErr != nil {
		return m.initErr
	}
	m.seeded[userID] = columns
	return nil
}

func newUseCase() (*UseCase, *memSessions, *memColumns) {
	sessions := &memSessions{byID: map[string]*domain.Session{}}
	columns := &memColumns{seeded: map[string][]domain.Column{}}
	uc := New(&memUsers{byID: map[string]*domain.User{}}, sessions, columns, Config{
		Secret:     "test-secret",
		Issuer:     "taskboard-test",
		TokenTTL:   time.Hour,
		BcryptCost: bcrypt.MinCost,
	}, nil)
	return uc, sessions, columns
}

func TestRegisterLoginAuthenticate(t *testing.T) {
	uc, _, columns := newUseCase()
	ctx := context.Background()

	user, err := uc.Register(ctx, RegisterInput{Email: " Ann@Example.com", Password: "secret1", Name: "Ann"})
	if err != nil {
		t.Fatalf("register: %v", err)
	}
	if user.Email != "ann@example.com" || user.Theme != domain.ThemeLight || user.Language != "en" {
		t.Fatalf("unexpected user %+v", user)
	}
	if len(columns.seeded[user.ID]) != 3 {
		t.Fatalf("default columns not seeded: %+v", columns.seeded)
	}

	token, err := uc.Login(ctx, "ann@example.com", "secret1", "test-agent")
	if err != nil {
		t.Fatalf("login: %v", err)
	}
	id, err := uc.Authenticate(ctx, token.Token)
	if err != nil {
		t.Fatalf("authenticate: %v", err)
	}
	if id.UserID != user.ID || id.SessionID == "" {
		t.Fatalf("unexpected identity %+v", id)
	}

	refreshed, err := uc.Refresh(ctx, id)
	if err != nil {
		t.Fatalf("refresh: %v", err)
	}
	if _, err := uc.Authenticate(ctx, refreshed.Token); err != nil {
		t.Fatalf("refreshed token rejected: %v", err)
	}

	if err := uc.Logout(ctx, id.SessionID); err != nil {
		t.Fatalf("logout: %v", err)
	}
	if _, err := uc.Authenticate(ctx, token.Token); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
		t.Fatalf("revoked session must be rejected, got %v", err)
	}
}

func TestRegisterValidation(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()

	if _, err := uc.Register(ctx, RegisterInput{Email: "not-an-email", Password: "secret1"}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected invalid email, got %v", err)
	}
	if _, err := uc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "123"}); !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("expected short password error, got %v", err)
	}
	if _, err := uc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}
	if _, err := uc.Register(ctx, RegisterInput{Email: "A@B.co", Password: "secret1"}); !errors.Is(err, domain.ErrEmailTaken) {
		t.Fatalf("expected ErrEmailTaken, got %v", err)
	}
}

func TestLoginRejectsBadCredentials(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()
	if _, err := uc.Register(ctx, RegisterInput{Email: "a@b.co", Password: "secret1"}); err != nil {
		t.Fatalf("register: %v", err)
	}

	for _, tc := range []struct{ email, password string }{
		{"a@b.co", "wrong-pass"},
		{"missing@b.co", "secret1"},
	} {
		if _, err := uc.Login(ctx, tc.email, tc.password, ""); !errors.Is(err, domain.ErrInvalidCredentials) {
			t.Fatalf("Login(%s) = %v, want ErrInvalidCredentials", tc.email, err)
		}
	}
}

func TestAuthenticateRejectsForeignTokens(t *testing.T) {
	uc, sessions, _ := newUseCase()
	ctx := context.Background()
	sessions.byID["s1"] = &domain.Session{ID: "s1", UserID: "u1", ExpiresAt: time.Now().Add(time.Hour)}

	sign := func(method jwt.SigningMethod, key interface{}, issuer string) string {
		claims := Claims{UserID: "u1", SessionID: "s1", RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    issuer,
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Hour)),
		}}
		signed, err := jwt.NewWithClaims(method, claims).SignedString(key)
		if err != nil {
			t.Fatalf("sign: %v", err)
		}
		return signed
	}

	cases := map[string]string{
		"wrong secret": sign(jwt.SigningMethodHS256, []byte("other"), "taskboard-test"),
		"wrong issuer": sign(jwt.SigningMethodHS256, []byte("test-secret"), "someone-else"),
		"hs512":        sign(jwt.SigningMethodHS512, []byte("test-secret"), "taskboard-test"),
		"garbage":      "not.a.token",
	}
	for name, raw := range cases {
		if _, err := uc.Authenticate(ctx, raw); !domain.IsDomainError(err, domain.ErrCodeUnauthorized) {
			t.Fatalf("%s: expected unauthorized, got %v", name, err)
		}
	}

	if _, err := uc.Authenticate(ctx, sign(jwt.SigningMethodHS256, []byte("test-secret"), "taskboard-test")); err != nil {
		t.Fatalf("valid token rejected: %v", err)
	}
}

func TestRegisterSurvivesColumnSeedFailure(t *testing.T) {
	uc, _, columns := newUseCase()
	columns.initErr = errors.New("store blip")
	ctx := context.Background()

	user, err := uc.Register(ctx, RegisterInput{Email: "bo@example.com", Password: "secret1"})
	if err != nil {
		t.Fatalf("register should succeed without seeded columns: %v", err)
	}
	if len(columns.seeded) != 0 {
		t.Fatalf("unexpected seed %+v", columns.seeded)
	}
	if _, err := uc.Login(ctx, "bo@example.com", "secret1", ""); err != nil {
		t.Fatalf("login: %v", err)
	}
	if user.ID == "" {
		t.Fatal("user id not assigned")
	}
}

func TestRegisterRejectsUnsupportedLanguage(t *testing.T) {
	uc, _, _ := newUseCase()
	ctx := context.Background()

	_, err := uc.Register(ctx, RegisterInput{Email: "kl@example.com", Password: "secret1", Language: "klingon"})
	if !domain.IsDomainError(err, domain.ErrCodeInvalid) {
		t.Fatalf("klingon err = %v", err)
	}
	user, err := uc.Register(ctx, RegisterInput{Email: "uk@example.com", Password: "secret1", Language: "ukr"})
	if err != nil || user.Language != "ukr" {
		t.Fatalf("ukr user = %+v, err = %v", user, err)
	}
}
