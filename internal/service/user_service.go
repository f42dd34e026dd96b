package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/spec-kit/erp-ticket-service/internal/auth"
	"github.com/spec-kit/erp-ticket-service/internal/config"
	"github.com/spec-kit/erp-ticket-service/internal/domain"
	"github.com/spec-kit/erp-ticket-service/internal/policy"
	"github.com/spec-kit/erp-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/erp-ticket-service/pkg/util/errorutil"
)

// UserService implements admin account management.
type UserService struct {
	users           repository.UserRepository
	policy          *policy.Policy
	bcryptCost      int
	mutationTimeout time.Duration
}

// CreateUserInput is the admin-initiated account payload.
type CreateUserInput struct {
	Username string
	Password string
	FullName string
	Role     string
}

// NewUserService constructs the service.
func NewUserService(cfg config.Config, users repository.UserRepository, p *policy.Policy) *UserService {
	return &UserService{
		users:           users,
		policy:          p,
		bcryptCost:      cfg.Auth.BcryptCost,
		mutationTimeout: cfg.App.MutationTimeout(),
	}
}

// List returns every account.
func (s *UserService) List(ctx context.Context, actor *domain.User) ([]domain.User, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	return s.users.List(ctx)
}

// Create adds an account with an explicitly chosen role.
func (s *UserService) Create(ctx context.Context, actor *domain.User, input CreateUserInput) (*domain.User, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	username := strings.TrimSpace(input.Username)
	if err := validateUsername(username); err != nil {
		return nil, err
	}
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}
	role, err := parseRole(input.Role)
	if err != nil {
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
		Role:         role,
		CreatedBy:    actor.Username,
	}

	ctx, cancel := detach(ctx, s.mutationTimeout)
	defer cancel()
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrConflict) {
			return nil, apperrors.NewUsernameTaken(username)
		}
		return nil, err
	}
	return user, nil
}

// UpdateRole changes another account's role.
func (s *UserService) UpdateRole(ctx context.Context, actor *domain.User, username, roleName string) (*domain.User, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	if actor.Username == username {
		return nil, apperrors.NewForbiddenSelfAction("cannot change your own role")
	}
	role, err := parseRole(roleName)
	if err != nil {
		return nil, err
	}

	ctx, cancel := detach(ctx, s.mutationTimeout)
	defer cancel()
	guard := s.adminGuard(actor.Username, username, role != domain.RoleAdmin)
	user, err := s.users.UpdateGuarded(ctx, username, guard, func(u *domain.User) error {
		u.Role = role
		return nil
	})
	if err != nil {
		return nil, notFound(err, "user", username)
	}
	return user, nil
}

// Delete removes another account.
func (s *UserService) Delete(ctx context.Context, actor *domain.User, username string) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	if actor.Username == username {
		return apperrors.NewForbiddenSelfAction("cannot delete your own account")
	}

	ctx, cancel := detach(ctx, s.mutationTimeout)
	defer cancel()
	return notFound(s.users.Delete(ctx, username, s.adminGuard(actor.Username, username, true)), "user", username)
}

// ResetPassword sets a new password on any account.
func (s *UserService) ResetPassword(ctx context.Context, actor *domain.User, username, newPassword string) error {
	if err := s.authorize(actor); err != nil {
		return err
	}
	if err := validatePassword(newPassword); err != nil {
		return err
	}
	hash, err := auth.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return err
	}

	ctx, cancel := detach(ctx, s.mutationTimeout)
	defer cancel()
	_, err = s.users.Update(ctx, username, func(u *domain.User) error {
		u.PasswordHash = hash
		return nil
	})
	return notFound(err, "user", username)
}

// adminGuard re-checks the actor against the locked account set, since its role
// may have changed since the token was authenticated, and refuses to remove
// the last Admin.
func (s *UserService) adminGuard(actor, target string, removesAdmin bool) repository.UserGuard {
	return func(users []domain.User) error {
		admins := 0
		actorAllowed, targetIsAdmin := false, false
		for i := range users {
			u := &users[i]
			if u.Username == actor {
				actorAllowed = s.policy.Can(u.Role, policy.ActionManageUsers)
			}
			if u.Role != domain.RoleAdmin {
				continue
			}
			admins++
			if u.Username == target {
				targetIsAdmin = true
			}
		}
		if !actorAllowed {
			return apperrors.NewForbidden("only admins can manage users")
		}
		if removesAdmin && targetIsAdmin && admins <= 1 {
			return apperrors.NewLastAdmin(target)
		}
		return nil
	}
}

func (s *UserService) authorize(actor *domain.User) error {
	if actor == nil || !s.policy.Can(actor.Role, policy.ActionManageUsers) {
		return apperrors.NewForbidden("only admins can manage users")
	}
	return nil
}

func parseRole(value string) (domain.Role, error) {
	role, ok := domain.ParseRole(value)
	if !ok {
		return "", apperrors.NewValidationError("invalid role", map[string]any{"field": "role", "allowed": domain.Roles()})
	}
	return role, nil
}
