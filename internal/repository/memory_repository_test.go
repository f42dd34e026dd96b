package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/erp-ticket-service/internal/domain"
)

func newTicket(customer, module string, created time.Time) *domain.Ticket {
	return &domain.Ticket{
		Customer:    customer,
		Module:      module,
		CRType:      domain.CRTypeCustomer,
		IssueType:   "Bug",
		Description: "something broke",
		Priority:    domain.TicketPriorityMedium,
		Status:      domain.TicketStatusNew,
		CRDate:      created.Format(domain.DateLayout),
		CRTime:      created.Format(domain.TimeLayout),
		CreatedAt:   created,
		UpdatedAt:   created,
	}
}

func TestFormatTicketNumber(t *testing.T) {
	assert.Equal(t, "2026-00001", FormatTicketNumber(2026, 1))
	assert.Equal(t, "2026-12345", FormatTicketNumber(2026, 12345))
	assert.Equal(t, "2026-123456", FormatTicketNumber(2026, 123456))
}

func TestMemoryTicketNumbersUniqueUnderConcurrency(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	now := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)

	const workers = 50
	numbers := make(chan string, workers)
	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			ticket := newTicket(fmt.Sprintf("cust-%d", i), "PO", now)
			assert.NoError(t, repo.Create(ctx, ticket))
			numbers <- ticket.TicketNumber
		}(i)
	}
	wg.Wait()
	close(numbers)

	seen := map[string]bool{}
	for n := range numbers {
		assert.False(t, seen[n], "duplicate ticket number %s", n)
		seen[n] = true
	}
	assert.Len(t, seen, workers)
	assert.True(t, seen["2026-00001"])
	assert.True(t, seen[FormatTicketNumber(2026, workers)])
}

func TestMemoryTicketCounterPerYear(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	a := newTicket("A", "PO", time.Date(2025, 12, 31, 23, 0, 0, 0, time.UTC))
	b := newTicket("B", "PO", time.Date(2026, 1, 1, 1, 0, 0, 0, time.UTC))
	require.NoError(t, repo.Create(ctx, a))
	require.NoError(t, repo.Create(ctx, b))
	assert.Equal(t, "2025-00001", a.TicketNumber)
	assert.Equal(t, "2026-00001", b.TicketNumber)
}

func TestMemoryTicketUpdateIsAllOrNothing(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	ticket := newTicket("Acme", "PO", time.Now())
	require.NoError(t, repo.Create(ctx, ticket))

	boom := errors.New("boom")
	_, err := repo.Update(ctx, ticket.TicketNumber, func(t *domain.Ticket) error {
		t.Customer = "changed"
		return boom
	})
	require.ErrorIs(t, err, boom)

	stored, err := repo.Get(ctx, ticket.TicketNumber)
	require.NoError(t, err)
	assert.Equal(t, "Acme", stored.Customer)

	_, err = repo.Update(ctx, "2026-99999", func(*domain.Ticket) error { return nil })
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryTicketReturnsCopies(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	remarks := "initial"
	ticket := newTicket("Acme", "PO", time.Now())
	ticket.Remarks = &remarks
	require.NoError(t, repo.Create(ctx, ticket))

	got, err := repo.Get(ctx, ticket.TicketNumber)
	require.NoError(t, err)
	*got.Remarks = "mutated"
	got.Customer = "mutated"

	again, err := repo.Get(ctx, ticket.TicketNumber)
	require.NoError(t, err)
	assert.Equal(t, "initial", *again.Remarks)
	assert.Equal(t, "Acme", again.Customer)
}

func TestMemoryTicketConcurrentUpdatesDoNotInterleave(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()
	ticket := newTicket("Acme", "PO", time.Now())
	require.NoError(t, repo.Create(ctx, ticket))

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			tag := fmt.Sprintf("writer-%d", i)
			_, err := repo.Update(ctx, ticket.TicketNumber, func(t *domain.Ticket) error {
				t.Customer = tag
				t.IssueType = tag
				return nil
			})
			assert.NoError(t, err)
		}(i)
	}
	wg.Wait()

	final, err := repo.Get(ctx, ticket.TicketNumber)
	require.NoError(t, err)
	assert.Equal(t, final.Customer, final.IssueType)
}

func TestMemoryTicketFilters(t *testing.T) {
	repo := NewMemoryTicketRepository()
	ctx := context.Background()

	day := func(d int) time.Time { return time.Date(2026, 5, d, 9, 0, 0, 0, time.UTC) }
	t1 := newTicket("Acme Textiles", "PO", day(1))
	t1.Developer, t1.SEName = "Mariyaiya", "Seenivasan"
	t2 := newTicket("Beta Mills", "PPC", day(2))
	t2.Developer, t2.SEName = "Annamalai", "Vignesh"
	t2.CRType = domain.CRTypeInternal
	t3 := newTicket("acme paper", "Payroll", day(3))
	t3.Developer, t3.SEName = "Sasi", "Palanivel"
	t3.Status = domain.TicketStatusCompleted
	t3.IssueType = "Enhancement"
	for _, tk := range []*domain.Ticket{t1, t2, t3} {
		require.NoError(t, repo.Create(ctx, tk))
	}

	numbers := func(filter TicketFilter) []string {
		list, err := repo.List(ctx, filter)
		require.NoError(t, err)
		out := []string{}
		for _, tk := range list {
			out = append(out, tk.Customer)
		}
		return out
	}

	assert.Equal(t, []string{"Acme Textiles", "Beta Mills", "acme paper"}, numbers(TicketFilter{}))
	assert.Equal(t, []string{"Acme Textiles", "acme paper"}, numbers(TicketFilter{Customer: "ACME"}))
	assert.Equal(t, []string{"acme paper"}, numbers(TicketFilter{Customer: "acme", Status: domain.TicketStatusCompleted}))
	assert.Equal(t, []string{"Beta Mills"}, numbers(TicketFilter{CRType: domain.CRTypeInternal}))
	assert.Equal(t, []string{"Beta Mills"}, numbers(TicketFilter{Developer: "Annamalai", SEName: "Vignesh"}))
	assert.Equal(t, []string{"acme paper"}, numbers(TicketFilter{IssueType: "Enhancement"}))
	assert.Equal(t, []string{"Acme Textiles"}, numbers(TicketFilter{Module: "PO"}))
	assert.Equal(t, []string{"Beta Mills", "acme paper"}, numbers(TicketFilter{FromDate: "2026-05-02"}))
	assert.Equal(t, []string{"Acme Textiles", "Beta Mills"}, numbers(TicketFilter{ToDate: "2026-05-02"}))
	assert.Equal(t, []string{"Beta Mills"}, numbers(TicketFilter{FromDate: "2026-05-02", ToDate: "2026-05-02"}))
	assert.Empty(t, numbers(TicketFilter{Module: "QC"}))
}

func TestMemoryUserRegisterBootstrap(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()

	assign := func(existing int64) domain.Role {
		if existing == 0 {
			return domain.RoleAdmin
		}
		return domain.RoleManager
	}

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			user := &domain.User{Username: fmt.Sprintf("user_%d", i), CreatedBy: domain.SelfRegistration}
			assert.NoError(t, repo.Register(ctx, user, assign))
		}(i)
	}
	wg.Wait()

	users, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, users, 10)
	admins := 0
	for _, u := range users {
		if u.Role == domain.RoleAdmin {
			admins++
		}
	}
	assert.Equal(t, 1, admins)

	err = repo.Register(ctx, &domain.User{Username: "user_0"}, assign)
	assert.ErrorIs(t, err, ErrConflict)
}

func TestMemoryUserUpdateAndDelete(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.User{Username: "dev1", Role: domain.RoleDeveloper}))
	assert.ErrorIs(t, repo.Create(ctx, &domain.User{Username: "dev1"}), ErrConflict)

	updated, err := repo.Update(ctx, "dev1", func(u *domain.User) error {
		u.Role = domain.RoleSupportEngineer
		u.Username = "renamed"
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, "dev1", updated.Username)
	assert.Equal(t, domain.RoleSupportEngineer, updated.Role)

	require.NoError(t, repo.Delete(ctx, "dev1", nil))
	assert.ErrorIs(t, repo.Delete(ctx, "dev1", nil), ErrNotFound)
	_, err = repo.GetByUsername(ctx, "dev1")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryUserGuardAbortsWrite(t *testing.T) {
	repo := NewMemoryUserRepository()
	ctx := context.Background()
	require.NoError(t, repo.Create(ctx, &domain.User{Username: "dev1", Role: domain.RoleDeveloper}))
	require.NoError(t, repo.Create(ctx, &domain.User{Username: "dev2", Role: domain.RoleDeveloper}))
	denied := errors.New("denied")

	var seen int
	_, err := repo.UpdateGuarded(ctx, "dev1", func(users []domain.User) error {
		seen = len(users)
		return denied
	}, func(u *domain.User) error {
		u.Role = domain.RoleAdmin
		return nil
	})
	assert.ErrorIs(t, err, denied)
	assert.Equal(t, 2, seen)

	assert.ErrorIs(t, repo.Delete(ctx, "dev2", func([]domain.User) error { return denied }), denied)

	stored, err := repo.GetByUsername(ctx, "dev1")
	require.NoError(t, err)
	assert.Equal(t, domain.RoleDeveloper, stored.Role)
	_, err = repo.GetByUsername(ctx, "dev2")
	assert.NoError(t, err)
}

func TestMemoryDirectorySeedIfEmpty(t *testing.T) {
	repo := NewMemoryDirectoryRepository()
	ctx := context.Background()

	n, err := repo.SeedIfEmpty(ctx, []domain.ModuleAssignment{
		{Module: "PPC", SupportEngineer: "Vignesh", Developer: "Annamalai"},
		{Module: "PO", SupportEngineer: "Seenivasan", Developer: "Mariyaiya"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	n, err = repo.SeedIfEmpty(ctx, []domain.ModuleAssignment{{Module: "QC"}})
	require.NoError(t, err)
	assert.Zero(t, n)

	list, err := repo.List(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "PO", list[0].Module)

	require.NoError(t, repo.Upsert(ctx, domain.ModuleAssignment{Module: "PO", SupportEngineer: "Muthuvel", Developer: "Sasi"}))
	got, err := repo.Get(ctx, "PO")
	require.NoError(t, err)
	assert.Equal(t, "Muthuvel", got.SupportEngineer)

	_, err = repo.Get(ctx, "QC")
	assert.ErrorIs(t, err, ErrNotFound)
}
