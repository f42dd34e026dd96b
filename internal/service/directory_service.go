package service

import (
	"context"
	"errors"
	"sort"
	"strings"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
	"github.com/spec-kit/erp-ticket-service/internal/policy"
	"github.com/spec-kit/erp-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/erp-ticket-service/pkg/util/errorutil"
)

// DirectoryService answers who owns each ERP module.
type DirectoryService struct {
	repo   repository.DirectoryRepository
	policy *policy.Policy
}

// NewDirectoryService constructs the service.
func NewDirectoryService(repo repository.DirectoryRepository, p *policy.Policy) *DirectoryService {
	return &DirectoryService{repo: repo, policy: p}
}

// Seed loads entries when the directory is still empty.
func (s *DirectoryService) Seed(ctx context.Context, entries []domain.ModuleAssignment) (int, error) {
	return s.repo.SeedIfEmpty(ctx, entries)
}

// ListModules returns module names in sorted order.
func (s *DirectoryService) ListModules(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, func(a domain.ModuleAssignment) string { return a.Module })
}

// ListDevelopers returns the distinct developer names.
func (s *DirectoryService) ListDevelopers(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, func(a domain.ModuleAssignment) string { return a.Developer })
}

// ListSupportEngineers returns the distinct support engineer names.
func (s *DirectoryService) ListSupportEngineers(ctx context.Context) ([]string, error) {
	return s.distinct(ctx, func(a domain.ModuleAssignment) string { return a.SupportEngineer })
}

func (s *DirectoryService) distinct(ctx context.Context, pick func(domain.ModuleAssignment) string) ([]string, error) {
	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(entries))
	result := make([]string, 0, len(entries))
	for _, entry := range entries {
		name := pick(entry)
		if name == "" {
			continue
		}
		if _, ok := seen[name]; ok {
			continue
		}
		seen[name] = struct{}{}
		result = append(result, name)
	}
	sort.Strings(result)
	return result, nil
}

// Resolve finds the assignment for module, falling back to a case-insensitive match.
func (s *DirectoryService) Resolve(ctx context.Context, module string) (*domain.ModuleAssignment, error) {
	module = strings.TrimSpace(module)
	if module == "" {
		return nil, apperrors.NewUnknownModule(module)
	}
	assignment, err := s.repo.Get(ctx, module)
	if err == nil {
		return assignment, nil
	}
	if !errors.Is(err, repository.ErrNotFound) {
		return nil, err
	}

	entries, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		if strings.EqualFold(entries[i].Module, module) {
			return &entries[i], nil
		}
	}
	return nil, apperrors.NewUnknownModule(module)
}

// ListAssignments returns the full directory.
func (s *DirectoryService) ListAssignments(ctx context.Context, actor *domain.User) ([]domain.ModuleAssignment, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	return s.repo.List(ctx)
}

// UpsertAssignment creates or replaces the owners of a module. A name matching
// an existing module case-insensitively updates that module. Tickets already
// created keep the names captured at creation.
func (s *DirectoryService) UpsertAssignment(ctx context.Context, actor *domain.User, a domain.ModuleAssignment) (*domain.ModuleAssignment, error) {
	if err := s.authorize(actor); err != nil {
		return nil, err
	}
	a.Module = strings.TrimSpace(a.Module)
	a.SupportEngineer = strings.TrimSpace(a.SupportEngineer)
	a.Developer = strings.TrimSpace(a.Developer)
	a.DeveloperEmail = strings.TrimSpace(a.DeveloperEmail)
	for field, value := range map[string]string{
		"module":           a.Module,
		"support_engineer": a.SupportEngineer,
		"developer":        a.Developer,
	} {
		if value == "" {
			return nil, apperrors.NewValidationError(field+" is required", map[string]any{"field": field})
		}
	}
	existing, err := s.Resolve(ctx, a.Module)
	switch {
	case err == nil:
		a.Module = existing.Module
	case !apperrors.HasCode(err, apperrors.CodeUnknownModule):
		return nil, err
	}
	if err := s.repo.Upsert(ctx, a); err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *DirectoryService) authorize(actor *domain.User) error {
	if actor == nil || !s.policy.Can(actor.Role, policy.ActionManageDirectory) {
		return apperrors.NewForbidden("only admins can manage the module directory")
	}
	return nil
}
