package service

import (
	"context"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
	"github.com/spec-kit/erp-ticket-service/internal/policy"
	"github.com/spec-kit/erp-ticket-service/internal/repository"
	apperrors "github.com/spec-kit/erp-ticket-service/pkg/util/errorutil"
)

// DashboardService aggregates ticket counts.
type DashboardService struct {
	tickets repository.TicketRepository
	policy  *policy.Policy
}

// NewDashboardService constructs the service.
func NewDashboardService(tickets repository.TicketRepository, p *policy.Policy) *DashboardService {
	return &DashboardService{tickets: tickets, policy: p}
}

// ComputeStats aggregates a single list read so every count describes the same snapshot.
func (s *DashboardService) ComputeStats(ctx context.Context, actor *domain.User) (*domain.DashboardStats, error) {
	if actor == nil || !s.policy.Can(actor.Role, policy.ActionView) {
		return nil, apperrors.NewForbidden("your role cannot view the dashboard")
	}
	tickets, err := s.tickets.List(ctx, repository.TicketFilter{})
	if err != nil {
		return nil, err
	}
	return Aggregate(tickets), nil
}

// Aggregate computes dashboard counts. Every status appears in status_counts;
// pending maps only hold groups with at least one open ticket.
func Aggregate(tickets []domain.Ticket) *domain.DashboardStats {
	stats := &domain.DashboardStats{
		TotalTickets:     len(tickets),
		StatusCounts:     make(map[string]int),
		IssueTypeCounts:  make(map[string]int),
		CRTypeCounts:     make(map[string]int),
		ModulePending:    make(map[string]int),
		DeveloperPending: make(map[string]int),
		SEPending:        make(map[string]int),
	}
	for _, status := range domain.TicketStatuses() {
		stats.StatusCounts[string(status)] = 0
	}

	for i := range tickets {
		t := &tickets[i]
		stats.StatusCounts[string(t.Status)]++
		if t.IssueType != "" {
			stats.IssueTypeCounts[t.IssueType]++
		}
		if t.CRType != "" {
			stats.CRTypeCounts[string(t.CRType)]++
		}
		if !t.Status.Open() {
			continue
		}
		if t.Module != "" {
			stats.ModulePending[t.Module]++
		}
		if t.Developer != "" {
			stats.DeveloperPending[t.Developer]++
		}
		if t.SEName != "" {
			stats.SEPending[t.SEName]++
		}
	}
	return stats
}
