package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/erp-ticket-service/internal/api/http"
	"github.com/spec-kit/erp-ticket-service/internal/api/http/handlers"
	"github.com/spec-kit/erp-ticket-service/internal/auth"
	"github.com/spec-kit/erp-ticket-service/internal/config"
	"github.com/spec-kit/erp-ticket-service/internal/directory"
	"github.com/spec-kit/erp-ticket-service/internal/events"
	"github.com/spec-kit/erp-ticket-service/internal/notification"
	"github.com/spec-kit/erp-ticket-service/internal/observability"
	"github.com/spec-kit/erp-ticket-service/internal/persistence"
	"github.com/spec-kit/erp-ticket-service/internal/policy"
	"github.com/spec-kit/erp-ticket-service/internal/repository"
	"github.com/spec-kit/erp-ticket-service/internal/service"
	"github.com/spec-kit/erp-ticket-service/internal/worker"
)

const shutdownTimeout = 15 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server and notification workers",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

type stores struct {
	users     repository.UserRepository
	tickets   repository.TicketRepository
	directory repository.DirectoryRepository
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger, err := observability.NewLogger(cfg.Logger, cfg.App)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		return fmt.Errorf("connect postgres: %w", err)
	}
	defer pg.Close()

	if pg.Enabled() && cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			return fmt.Errorf("run migrations: %w", err)
		}
	}

	redis := persistence.NewRedis(ctx, cfg.Redis, logger)
	defer redis.Close()

	repos := newStores(pg, logger)
	p := policy.MustNew()

	directoryService := service.NewDirectoryService(repos.directory, p)
	if err := seedDirectory(ctx, cfg.Directory, directoryService, logger); err != nil {
		return err
	}

	queue, err := newQueue(ctx, cfg.Redis, redis, logger)
	if err != nil {
		return err
	}
	dispatcher := events.NewInMemoryDispatcher(logger)
	notificationService := service.NewNotificationService(dispatcher, queue, logger, cfg.Mail)
	pool := notification.NewWorker(queue, notification.NewSender(cfg.Mail, logger), logger, cfg.Mail.Workers, cfg.Mail.MaxAttempts)
	stopWorkers := worker.StartNotificationWorker(ctx, notificationService, pool)

	authService := service.NewAuthService(*cfg, repos.users)
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo:      repos.tickets,
		Directory:       directoryService,
		Policy:          p,
		Dispatcher:      dispatcher,
		MutationTimeout: cfg.App.MutationTimeout(),
	})

	metrics := observability.NewMetrics()
	app := httptransport.NewServer(cfg.App, logger, metrics, httptransport.RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis, metrics),
		Auth:           handlers.NewAuthHandler(authService),
		Users:          handlers.NewUsersHandler(service.NewUserService(*cfg, repos.users, p)),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Dashboard:      handlers.NewDashboardHandler(service.NewDashboardService(repos.tickets, p)),
		Directory:      handlers.NewDirectoryHandler(directoryService),
		AuthMiddleware: auth.NewAuthMiddleware(authService),
		Policy:         p,
	})

	listenErr := make(chan error, 1)
	go func() {
		logger.Info("http server listening", zap.String("addr", cfg.App.Addr()), zap.String("env", cfg.App.Env))
		listenErr <- app.Listen(cfg.App.Addr())
	}()

	select {
	case err := <-listenErr:
		stopWorkers()
		return fmt.Errorf("fiber listen: %w", err)
	case <-waitForShutdown(logger):
	}

	shutdown(app, stopWorkers, logger)
	return nil
}

func newStores(pg *persistence.Postgres, logger *zap.Logger) stores {
	if pg.Enabled() {
		pool := pg.PoolHandle()
		return stores{
			users:     repository.NewUserRepository(pool),
			tickets:   repository.NewTicketRepository(pool),
			directory: repository.NewDirectoryRepository(pool),
		}
	}
	logger.Warn("using in-memory storage; data is lost on restart")
	return stores{
		users:     repository.NewMemoryUserRepository(),
		tickets:   repository.NewMemoryTicketRepository(),
		directory: repository.NewMemoryDirectoryRepository(),
	}
}

func seedDirectory(ctx context.Context, cfg config.DirectoryConfig, directoryService *service.DirectoryService, logger *zap.Logger) error {
	entries, err := directory.Load(cfg.SeedFile)
	if err != nil {
		return err
	}
	inserted, err := directoryService.Seed(ctx, entries)
	if err != nil {
		return fmt.Errorf("seed directory: %w", err)
	}
	logger.Info("module directory ready", zap.Int("seeded", inserted), zap.Int("entries", len(entries)))
	return nil
}

// newQueue prefers the Redis list queue and re-queues jobs a previous process
// left unacknowledged.
func newQueue(ctx context.Context, cfg config.RedisConfig, redis *persistence.Redis, logger *zap.Logger) (notification.Queue, error) {
	if !redis.Enabled() {
		return notification.NewMemoryQueue(256), nil
	}
	queue := notification.NewRedisQueue(redis.Client, cfg.QueueKey)
	recovered, err := queue.Recover(ctx)
	if err != nil {
		return nil, fmt.Errorf("recover notification queue: %w", err)
	}
	if recovered > 0 {
		logger.Info("re-queued unacknowledged notifications", zap.Int("count", recovered))
	}
	return queue, nil
}

func shutdown(app *fiber.App, stopWorkers func(), logger *zap.Logger) {
	if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
		logger.Error("http shutdown", zap.Error(err))
	}
	stopWorkers()
	logger.Info("shutdown complete")
}

func waitForShutdown(logger *zap.Logger) <-chan struct{} {
	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Info("shutting down", zap.String("signal", sig.String()))
		close(done)
	}()
	return done
}
