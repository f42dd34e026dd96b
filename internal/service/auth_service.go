package service

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/spec-kit/erp-ticket-service/internal/auth"
	"github.com/spec-kit/erp-ticket-service/internal/config"
	"github.com/spec-kit/erp-ticket-service/internal/domain"
	"github.com/spec-kit/erp-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/erp-ticket-service/pkg/util/errorutil"
)

const minPasswordLength = 6

var usernamePattern = regexp.MustCompile(`^[A-Za-z0-9_]+$`)

// AuthService coordinates registration, login and token checks.
type AuthService struct {
	users           repository.UserRepository
	tokenMgr        *auth.TokenManager
	bcryptCost      int
	mutationTimeout time.Duration

	dummyOnce sync.Once
	dummyHash string
}

// RegisterInput is the self-registration payload. Role is accepted only to be ignored.
type RegisterInput struct {
	Username string
	Password string
	FullName string
	Role     string
}

// NewAuthService builds the service.
func NewAuthService(cfg config.Config, users repository.UserRepository) *AuthService {
	return &AuthService{
		users:           users,
		tokenMgr:        auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.AccessTokenTTLMinutes),
		bcryptCost:      cfg.Auth.BcryptCost,
		mutationTimeout: cfg.App.MutationTimeout(),
	}
}

// Register creates a self-service account. The first account ever becomes
// Admin; every later one is a Manager whatever role was requested.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.Session, error) {
	username := strings.TrimSpace(input.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, apperrors.NewValidationError("full_name is required", map[string]any{"field": "full_name"})
	}

	hash, err := auth.HashPassword(input.Password, s.bcryptCost)
	if err != nil {
		return nil, err
	}

	user := &domain.User{
		Username:     username,
		PasswordHash: hash,
		FullName:     fullName,
		CreatedBy:    domain.SelfRegistration,
	}

	ctx, cancel := detach(ctx, s.mutationTimeout)
	defer cancel()
	if err := s.users.Register(ctx, user, bootstrapRole); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewUsernameTaken(username)
		}
		return nil, err
	}
	return s.issue(user)
}

func bootstrapRole(existingUsers int64) domain.Role {
	if existingUsers == 0 {
		return domain.RoleAdmin
	}
	return domain.RoleManager
}

// Login verifies credentials and returns a fresh token.
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.Session, error) {
	user, err := s.users.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if !errors.Is(err, repository.ErrNotFound) {
			return nil, err
		}
		// compare anyway so unknown usernames cost the same as wrong passwords
		_ = auth.ComparePassword(s.placeholderHash(), password)
		return nil, invalidCredentials()
	}
	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, invalidCredentials()
	}
	return s.issue(user)
}

// Authenticate resolves a bearer token to the stored account.
func (s *AuthService) Authenticate(ctx context.Context, token string) (*domain.User, error) {
	claims, err := s.tokenMgr.ParseToken(token)
	if err != nil {
		if errors.Is(err, auth.ErrTokenExpired) {
			return nil, apperrors.NewAuthExpired("token expired")
		}
		return nil, apperrors.NewUnauthorized("invalid token")
	}
	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, apperrors.NewUnauthorized("account no longer exists")
		}
		return nil, err
	}
	return user, nil
}

// ChangePassword updates the caller's own password after checking the current one.
func (s *AuthService) ChangePassword(ctx context.Context, actor *domain.User, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	ctx, cancel := detach(ctx, s.mutationTimeout)
	defer cancel()
	_, err = s.users.Update(ctx, actor.Username, func(u *domain.User) error {
		if err := auth.ComparePassword(u.PasswordHash, currentPassword); err != nil {
			return invalidCredentials()
		}
		u.PasswordHash = hash
		return nil
	})
	return notFound(err, "user", actor.Username)
}

func (s *AuthService) issue(user *domain.User) (*domain.Session, error) {
	token, exp, err := s.tokenMgr.GenerateToken(user.Username, user.Role)
	if err != nil {
		return nil, err
	}
	return &domain.Session{Token: token, ExpiresAt: exp, User: user}, nil
}

func (s *AuthService) placeholderHash() string {
	s.dummyOnce.Do(func() {
		s.dummyHash, _ = auth.HashPassword("placeholder-password", s.bcryptCost)
	})
	return s.dummyHash
}

// TokenManager exposes the underlying token manager.
func (s *AuthService) TokenManager() *auth.TokenManager {
	return s.tokenMgr
}

func invalidCredentials() error {
	return apperrors.NewUnauthorized("invalid username or password")
}

func validateUsername(username string) error {
	if !usernamePattern.MatchString(username) {
		return apperrors.NewInvalidUsername("username may only contain letters, digits and underscores")
	}
	return nil
}

func validatePassword(password string) error {
	if len(password) < minPasswordLength {
		return apperrors.NewWeakPassword("password must be at least 6 characters")
	}
	return nil
}
