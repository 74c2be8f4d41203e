package auth

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v4"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/fastygo/taskboard/domain"
	"github.com/fastygo/taskboard/internal/locale"
	"github.com/fastygo/taskboard/repository"
)

const minPasswordLength = 6

// Config controls token issuing.
type Config struct {
	Secret          string
	Issuer          string
	TokenTTL        time.Duration
	BcryptCost      int
	DefaultLanguage string
}

// Claims is the JWT payload.
type Claims struct {
	UserID    string `json:"user_id"`
	SessionID string `json:"sid"`
	jwt.RegisteredClaims
}

// Token is an issued access token.
type Token struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *domain.User `json:"user,omitempty"`
}

// Identity is what a valid token proves.
type Identity struct {
	UserID    string
	SessionID string
}

// RegisterInput carries a sign-up request.
type RegisterInput struct {
	Email    string
	Password string
	Name     string
	Language string
}

type UseCase struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	columns  repository.ColumnRepository
	cfg      Config
	secret   []byte
	logger   *zap.Logger
	now      func() time.Time
}

func New(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	columns repository.ColumnRepository,
	cfg Config,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.TokenTTL <= 0 {
		cfg.TokenTTL = 24 * time.Hour
	}
	if cfg.BcryptCost == 0 {
		cfg.BcryptCost = bcrypt.DefaultCost
	}
	if cfg.Issuer == "" {
		cfg.Issuer = "taskboard"
	}
	if cfg.DefaultLanguage == "" {
		cfg.DefaultLanguage = "en"
	}
	secret := cfg.Secret
	if secret == "" {
		logger.Warn("JWT secret not configured, tokens will not survive a restart")
		secret = uuid.NewString()
	}
	return &UseCase{
		users:    users,
		sessions: sessions,
		columns:  columns,
		cfg:      cfg,
		secret:   []byte(secret),
		logger:   logger,
		now:      time.Now,
	}
}

// Register creates an account and seeds its board columns.
func (uc *UseCase) Register(ctx context.Context, in RegisterInput) (*domain.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, domain.Invalidf("invalid email %q", in.Email)
	}
	if len(in.Password) < minPasswordLength {
		return nil, domain.Invalidf("password must be at least %d characters", minPasswordLength)
	}
	if in.Language != "" && !locale.Supported(in.Language) {
		return nil, domain.Invalidf("unsupported language %q", in.Language)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), uc.cfg.BcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	language := in.Language
	if language == "" {
		language = uc.cfg.DefaultLanguage
	}
	user := &domain.User{
		ID:           uuid.NewString(),
		Email:        email,
		Name:         strings.TrimSpace(in.Name),
		PasswordHash: string(hash),
		Role:         domain.RoleMember,
		Status:       domain.UserStatusActive,
		Theme:        domain.ThemeLight,
		Language:     language,
	}
	if err := uc.users.Create(ctx, user); err != nil {
		return nil, err
	}

	// The account exists once Create returns; missing columns are seeded on first board load.
	if err := uc.columns.Init(ctx, user.ID, domain.DefaultColumns()); err != nil {
		uc.logger.Warn("default columns not seeded", zap.String("user_id", user.ID), zap.Error(err))
	}

	uc.logger.Info("user registered", zap.String("user_id", user.ID))
	return user, nil
}

// Login checks credentials and opens a session.
func (uc *UseCase) Login(ctx context.Context, email, password, userAgent string) (*Token, error) {
	user, err := uc.users.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrInvalidCredentials
		}
		return nil, err
	}
	if !user.IsActive() {
		return nil, domain.ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, domain.ErrInvalidCredentials
	}

	now := uc.now()
	session := &domain.Session{
		ID:        uuid.NewString(),
		UserID:    user.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(uc.cfg.TokenTTL),
		UserAgent: userAgent,
	}
	if err := uc.sessions.Save(ctx, session); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	token, err := uc.issue(user.ID, session.ID, session.ExpiresAt)
	if err != nil {
		return nil, err
	}
	token.User = user
	return token, nil
}

// Verify returns the user behind a session.
func (uc *UseCase) Verify(ctx context.Context, userID string) (*domain.User, error) {
	user, err := uc.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	return user, nil
}

// Refresh extends the session and issues a new token for it.
func (uc *UseCase) Refresh(ctx context.Context, id Identity) (*Token, error) {
	if _, err := uc.session(ctx, id.SessionID); err != nil {
		return nil, err
	}
	if err := uc.sessions.Extend(ctx, id.SessionID, int(uc.cfg.TokenTTL.Seconds())); err != nil {
		return nil, err
	}
	return uc.issue(id.UserID, id.SessionID, uc.now().Add(uc.cfg.TokenTTL))
}

// Logout revokes the session so outstanding tokens stop working.
func (uc *UseCase) Logout(ctx context.Context, sessionID string) error {
	return uc.sessions.Delete(ctx, sessionID)
}

// Authenticate validates an HS256 token and its backing session.
func (uc *UseCase) Authenticate(ctx context.Context, raw string) (Identity, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(raw, claims, func(token *jwt.Token) (interface{}, error) {
		if token.Method != jwt.SigningMethodHS256 {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return uc.secret, nil
	})
	if err != nil || !token.Valid {
		return Identity{}, domain.WrapError(domain.ErrCodeUnauthorized, "invalid token", err)
	}
	if claims.Issuer != uc.cfg.Issuer || claims.UserID == "" || claims.SessionID == "" {
		return Identity{}, domain.ErrUnauthorized
	}

	session, err := uc.session(ctx, claims.SessionID)
	if err != nil {
		return Identity{}, err
	}
	if session.UserID != claims.UserID {
		return Identity{}, domain.ErrUnauthorized
	}
	return Identity{UserID: claims.UserID, SessionID: claims.SessionID}, nil
}

func (uc *UseCase) session(ctx context.Context, sessionID string) (*domain.Session, error) {
	session, err := uc.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, domain.ErrSessionNotFound) {
			return nil, domain.ErrUnauthorized
		}
		return nil, err
	}
	if session.IsExpired(uc.now()) {
		_ = uc.sessions.Delete(ctx, sessionID)
		return nil, domain.ErrUnauthorized
	}
	return session, nil
}

func (uc *UseCase) issue(userID, sessionID string, expiresAt time.Time) (*Token, error) {
	claims := Claims{
		UserID:    userID,
		SessionID: sessionID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    uc.cfg.Issuer,
			Subject:   userID,
			IssuedAt:  jwt.NewNumericDate(uc.now()),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(uc.secret)
	if err != nil {
		return nil, fmt.Errorf("sign token: %w", err)
	}
	return &Token{Token: signed, ExpiresAt: expiresAt}, nil
}
