package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	httptransport "github.com/spec-kit/support-desk/internal/api/http"
	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/mailer"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
	"github.com/spec-kit/support-desk/internal/worker"
)

func serve(rt *runtime) error {
	cfg, logger, pg := rt.cfg, rt.logger, rt.pg

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(rt.ctx, pg.PoolHandle(), logger); err != nil {
			logger.Error("failed to run migrations", zap.Error(err))
			return err
		}
	}

	redis := persistence.NewRedis(rt.ctx, cfg.Redis, logger)
	defer redis.Close()

	var revoker auth.Revoker
	if client := redis.ClientHandle(); client != nil {
		revoker = auth.NewRedisRevoker(client)
	}

	pool := pg.PoolHandle()
	userRepo := repository.NewUserRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)
	commentRepo := repository.NewCommentRepository(pool)

	metrics := observability.NewMetrics()
	dispatcher := events.NewInMemoryDispatcher(logger)

	renderer, err := mailer.NewRenderer()
	if err != nil {
		logger.Error("failed to compile mail templates", zap.Error(err))
		return err
	}
	notificationService := service.NewNotificationService(*cfg, service.NotificationDependencies{
		Dispatcher: dispatcher,
		Sender:     mailer.NewSender(cfg.Mail, logger),
		Renderer:   renderer,
		UserRepo:   userRepo,
		Metrics:    metrics,
		Logger:     logger,
	})
	worker.StartNotificationWorker(notificationService)

	authService := service.NewAuthService(*cfg, service.AuthDependencies{
		UserRepo: userRepo,
		Revoker:  revoker,
		Notifier: notificationService,
		Logger:   logger,
	})
	ticketService := service.NewTicketService(service.TicketDependencies{
		TicketRepo: ticketRepo,
		UserRepo:   userRepo,
		Dispatcher: dispatcher,
		Logger:     logger,
	})
	commentService := service.NewCommentService(service.CommentDependencies{
		CommentRepo: commentRepo,
		TicketRepo:  ticketRepo,
		Dispatcher:  dispatcher,
		Logger:      logger,
	})
	userService := service.NewUserService(*cfg, userRepo)
	statsService := service.NewStatsService(ticketRepo, userRepo, commentRepo)

	backlog := worker.NewBacklogWorker(statsService, metrics, logger)
	if err := backlog.Start(cfg.Worker.BacklogSchedule); err != nil {
		logger.Error("invalid backlog schedule", zap.Error(err))
		return err
	}

	authMiddleware := auth.NewAuthMiddleware(authService.TokenManager(), userRepo, revoker, cfg.Auth.CookieName)

	checks := map[string]handlers.Pinger{"postgres": pg}
	if redis != nil {
		checks["redis"] = redis
	}

	app := httptransport.NewApp(cfg.App.Name, logger, metrics, cfg.App.RequestTimeout())
	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health: handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, checks),
		Auth: handlers.NewAuthHandler(authService, handlers.CookieSettings{
			Name:   cfg.Auth.CookieName,
			Secure: cfg.Auth.CookieSecure,
		}),
		Tickets:        handlers.NewTicketsHandler(ticketService),
		Comments:       handlers.NewCommentsHandler(commentService),
		Users:          handlers.NewUsersHandler(userService),
		Admin:          handlers.NewAdminHandler(statsService, notificationService),
		AuthMiddleware: authMiddleware,
		Policy: auth.AccessPolicy{
			AdminPrefixes:     cfg.Auth.AdminPrefixes,
			DashboardPrefixes: cfg.Auth.DashboardPrefixes,
			LoginPath:         cfg.Auth.LoginPath,
		},
		Metrics: metrics,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	backlog.Stop(shutdownCtx)
	return app.ShutdownWithContext(shutdownCtx)
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
