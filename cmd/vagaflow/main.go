package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"golang.org/x/sync/errgroup"

	"github.com/vagaflow/vagaflow/internal/app"
	"github.com/vagaflow/vagaflow/internal/applications"
	"github.com/vagaflow/vagaflow/internal/auth"
	"github.com/vagaflow/vagaflow/internal/companies"
	"github.com/vagaflow/vagaflow/internal/observability"
	"github.com/vagaflow/vagaflow/internal/platform/cache"
	"github.com/vagaflow/vagaflow/internal/platform/db"
	"github.com/vagaflow/vagaflow/internal/professions"
	"github.com/vagaflow/vagaflow/internal/rbac"
	"github.com/vagaflow/vagaflow/internal/shared"
	"github.com/vagaflow/vagaflow/internal/users"
	"github.com/vagaflow/vagaflow/internal/vacancies"
	"github.com/vagaflow/vagaflow/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping runtime startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	dbpool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer dbpool.Close()

	redisClient, err := cache.New(ctx, cfg.RedisAddr)
	if err != nil {
		logger.Error("connect redis", slog.Any("error", err))
		os.Exit(1)
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	sessionManager := shared.NewSessionManager(redisClient, "vagaflow_session", cfg.SessionSecret, cfg.SessionTTL, cfg.IsProduction())
	metrics := observability.NewMetrics()

	usersRepo := users.NewRepository(dbpool)
	usersService := users.NewService(usersRepo)

	tokens := auth.NewTokenIssuer(cfg.TokenSecret, cfg.TokenTTL)
	authService := auth.NewService(usersRepo)
	authHandler := auth.NewHandler(logger, authService, sessionManager, tokens)
	authMiddleware := auth.Middleware{Service: authService, Tokens: tokens, Logger: logger}

	rbacRepo := rbac.NewRepository(dbpool)
	rbacService := rbac.NewService(rbacRepo, metrics)
	rbacMiddleware := rbac.Middleware{Service: rbacService, Logger: logger}
	permissionsHandler := rbac.NewHandler(logger, rbacService, rbacMiddleware)

	usersHandler := users.NewHandler(logger, usersService, rbacMiddleware)

	companiesRepo := companies.NewRepository(dbpool)
	companiesService := companies.NewService(companiesRepo)
	companiesHandler := companies.NewHandler(logger, companiesService, rbacMiddleware)

	professionsRepo := professions.NewRepository(dbpool)
	professionsService := professions.NewService(professionsRepo)
	professionsHandler := professions.NewHandler(logger, professionsService, rbacMiddleware)

	vacanciesRepo := vacancies.NewRepository(dbpool)
	vacanciesService := vacancies.NewService(vacanciesRepo, rbacService, professionsService)
	vacanciesHandler := vacancies.NewHandler(logger, vacanciesService)

	applicationsRepo := applications.NewRepository(dbpool)
	applicationsService := applications.NewService(applicationsRepo, rbacService, vacanciesRepo)
	applicationsHandler := applications.NewHandler(logger, applicationsService)

	inspector := asynq.NewInspector(asynq.RedisClientOpt{Addr: cfg.RedisAddr})
	defer func() {
		if err := inspector.Close(); err != nil {
			logger.Warn("inspector close", slog.Any("error", err))
		}
	}()
	jobHandler := jobs.NewHandler(inspector, logger)

	router := app.NewRouter(app.RouterParams{
		Logger:              logger,
		Config:              cfg,
		SessionManager:      sessionManager,
		AuthMiddleware:      authMiddleware,
		AuthHandler:         authHandler,
		UsersHandler:        usersHandler,
		CompaniesHandler:    companiesHandler,
		ProfessionsHandler:  professionsHandler,
		VacanciesHandler:    vacanciesHandler,
		ApplicationsHandler: applicationsHandler,
		PermissionsHandler:  permissionsHandler,
		JobHandler:          jobHandler,
		Metrics:             metrics,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		logger.Error("http server", slog.Any("error", err))
		os.Exit(1)
	}
}
