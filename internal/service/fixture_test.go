package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/spec-kit/erp-ticket-service/internal/config"
	"github.com/spec-kit/erp-ticket-service/internal/domain"
	"github.com/spec-kit/erp-ticket-service/internal/events"
	"github.com/spec-kit/erp-ticket-service/internal/notification"
	"github.com/spec-kit/erp-ticket-service/internal/policy"
	"github.com/spec-kit/erp-ticket-service/internal/repository"
)

type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	cfg       config.Config
	clock     *fakeClock
	users     repository.UserRepository
	tickets   repository.TicketRepository
	queue     *notification.MemoryQueue
	auth      *AuthService
	userSvc   *UserService
	directory *DirectoryService
	ticketSvc *TicketService
	dashboard *DashboardService

	admin     *domain.User
	support   *domain.User
	developer *domain.User
	manager   *domain.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	cfg := config.Config{
		App:  config.AppConfig{MutationTimeoutSeconds: 5},
		Auth: config.AuthConfig{JWTSecret: "test-secret", AccessTokenTTLMinutes: 60, BcryptCost: 4},
		Mail: config.MailConfig{CCAddress: "dev-team@example.com"},
	}
	p := policy.MustNew()
	clock := &fakeClock{now: time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)}

	users := repository.NewMemoryUserRepository()
	tickets := repository.NewMemoryTicketRepository()
	directory := NewDirectoryService(repository.NewMemoryDirectoryRepository(), p)
	_, err := directory.Seed(context.Background(), []domain.ModuleAssignment{
		{Module: "Billing", SupportEngineer: "SE1", Developer: "Dev1", DeveloperEmail: "dev1@example.com"},
		{Module: "Payroll", SupportEngineer: "SE2", Developer: "Dev2"},
		{Module: "Inventory", SupportEngineer: "SE1", Developer: "Dev2", DeveloperEmail: "dev2@example.com"},
	})
	require.NoError(t, err)

	dispatcher := events.NewInMemoryDispatcher(zap.NewNop())
	queue := notification.NewMemoryQueue(64)
	NewNotificationService(dispatcher, queue, zap.NewNop(), cfg.Mail).RegisterHandlers()

	return &fixture{
		cfg:       cfg,
		clock:     clock,
		users:     users,
		tickets:   tickets,
		queue:     queue,
		auth:      NewAuthService(cfg, users),
		userSvc:   NewUserService(cfg, users, p),
		directory: directory,
		ticketSvc: NewTicketService(TicketDependencies{
			TicketRepo:      tickets,
			Directory:       directory,
			Policy:          p,
			Dispatcher:      dispatcher,
			Clock:           clock.Now,
			MutationTimeout: time.Second,
		}),
		dashboard: NewDashboardService(tickets, p),
		admin:     &domain.User{Username: "root", FullName: "System Admin", Role: domain.RoleAdmin},
		support:   &domain.User{Username: "seenu", FullName: "SE1", Role: domain.RoleSupportEngineer},
		developer: &domain.User{Username: "dev1", FullName: "Dev1", Role: domain.RoleDeveloper},
		manager:   &domain.User{Username: "boss", FullName: "Boss", Role: domain.RoleManager},
	}
}

func (f *fixture) createTicket(t *testing.T, module string) *domain.Ticket {
	t.Helper()
	ticket, err := f.ticketSvc.CreateTicket(context.Background(), f.support, TicketCreateInput{
		Customer:    "Acme",
		Module:      module,
		CRType:      "Customer CR",
		IssueType:   "Bug",
		Description: "Invoice totals are wrong",
	})
	require.NoError(t, err)
	return ticket
}

func strPtr(s string) *string { return &s }
