package repository

import (
	"context"
	"strings"
	"sync"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

type memoryTicketRepository struct {
	mu       sync.RWMutex
	order    []string
	tickets  map[string]*domain.Ticket
	counters map[int]int64
}

// NewMemoryTicketRepository returns a process-local ticket store.
func NewMemoryTicketRepository() TicketRepository {
	return &memoryTicketRepository{
		tickets:  make(map[string]*domain.Ticket),
		counters: make(map[int]int64),
	}
}

func (r *memoryTicketRepository) Create(_ context.Context, ticket *domain.Ticket) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	year := ticket.CreatedAt.Year()
	r.counters[year]++
	ticket.TicketNumber = FormatTicketNumber(year, r.counters[year])
	if _, exists := r.tickets[ticket.TicketNumber]; exists {
		return ErrConflict
	}
	r.tickets[ticket.TicketNumber] = ticket.Clone()
	r.order = append(r.order, ticket.TicketNumber)
	return nil
}

func (r *memoryTicketRepository) Get(_ context.Context, ticketNumber string) (*domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ticket, ok := r.tickets[ticketNumber]
	if !ok {
		return nil, ErrNotFound
	}
	return ticket.Clone(), nil
}

func (r *memoryTicketRepository) Update(_ context.Context, ticketNumber string, mutate func(*domain.Ticket) error) (*domain.Ticket, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	current, ok := r.tickets[ticketNumber]
	if !ok {
		return nil, ErrNotFound
	}
	working := current.Clone()
	if err := mutate(working); err != nil {
		return nil, err
	}
	working.TicketNumber = ticketNumber
	r.tickets[ticketNumber] = working
	return working.Clone(), nil
}

func (r *memoryTicketRepository) List(_ context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := []domain.Ticket{}
	for _, number := range r.order {
		ticket := r.tickets[number]
		if filter.matches(ticket) {
			result = append(result, *ticket.Clone())
		}
	}
	return result, nil
}

func (f TicketFilter) matches(t *domain.Ticket) bool {
	if f.Status != "" && t.Status != f.Status {
		return false
	}
	if f.Module != "" && t.Module != f.Module {
		return false
	}
	if f.Developer != "" && t.Developer != f.Developer {
		return false
	}
	if f.SEName != "" && t.SEName != f.SEName {
		return false
	}
	if f.CRType != "" && t.CRType != f.CRType {
		return false
	}
	if f.IssueType != "" && t.IssueType != f.IssueType {
		return false
	}
	if f.Customer != "" && !strings.Contains(strings.ToLower(t.Customer), strings.ToLower(f.Customer)) {
		return false
	}
	if f.FromDate != "" && t.CRDate < f.FromDate {
		return false
	}
	if f.ToDate != "" && t.CRDate > f.ToDate {
		return false
	}
	return true
}
