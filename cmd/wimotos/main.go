package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"

	"github.com/wimotos/wimotos/internal/app"
	"github.com/wimotos/wimotos/internal/auth"
	"github.com/wimotos/wimotos/internal/clients"
	"github.com/wimotos/wimotos/internal/dashboard"
	"github.com/wimotos/wimotos/internal/finance"
	"github.com/wimotos/wimotos/internal/installments"
	"github.com/wimotos/wimotos/internal/platform/db"
	"github.com/wimotos/wimotos/internal/products"
	"github.com/wimotos/wimotos/internal/promissories"
	"github.com/wimotos/wimotos/internal/sales"
	"github.com/wimotos/wimotos/internal/shared"
	"github.com/wimotos/wimotos/internal/users"
	"github.com/wimotos/wimotos/jobs"
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

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect postgres", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	if err := redisClient.Ping(ctx).Err(); err != nil {
		logger.Warn("redis ping", slog.Any("error", err))
	}
	defer func() {
		if err := redisClient.Close(); err != nil {
			logger.Warn("redis close", slog.Any("error", err))
		}
	}()

	tokens := shared.NewTokenManager(redisClient, "wimotos_token", cfg.TokenTTL)

	usersRepo := users.NewRepository(pool)
	usersService := users.NewService(usersRepo)
	usersHandler := users.NewHandler(logger, usersService)

	authService := auth.NewService(usersRepo, tokens)
	authHandler := auth.NewHandler(logger, authService)

	clientsRepo := clients.NewRepository(pool)
	clientsService := clients.NewService(clientsRepo)
	clientsHandler := clients.NewHandler(logger, clientsService)

	imageStore, err := products.NewDiskImageStore(cfg.UploadDir, cfg.UploadBasePath)
	if err != nil {
		logger.Error("init image store", slog.Any("error", err))
		os.Exit(1)
	}
	productsRepo := products.NewRepository(pool)
	productsService := products.NewService(productsRepo, imageStore)
	productsHandler := products.NewHandler(logger, productsService, imageStore)

	salesRepo := sales.NewRepository(pool)
	salesService := sales.NewService(salesRepo)
	salesHandler := sales.NewHandler(logger, salesService)

	promissoriesRepo := promissories.NewRepository(pool)
	promissoriesService := promissories.NewService(promissoriesRepo)
	promissoriesHandler := promissories.NewHandler(logger, promissoriesService)

	installmentsRepo := installments.NewRepository(pool)
	installmentsService := installments.NewService(installmentsRepo)
	installmentsHandler := installments.NewHandler(logger, installmentsService)

	financeRepo := finance.NewRepository(pool)
	financeService := finance.NewService(financeRepo)
	financeHandler := finance.NewHandler(logger, financeService)

	dashboardRepo := dashboard.NewRepository(pool)
	dashboardService := dashboard.NewService(dashboardRepo)
	dashboardHandler := dashboard.NewHandler(logger, dashboardService)

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
		Tokens:              tokens,
		AuthHandler:         authHandler,
		ClientsHandler:      clientsHandler,
		ProductsHandler:     productsHandler,
		SalesHandler:        salesHandler,
		PromissoriesHandler: promissoriesHandler,
		InstallmentsHandler: installmentsHandler,
		FinanceHandler:      financeHandler,
		UsersHandler:        usersHandler,
		DashboardHandler:    dashboardHandler,
		JobHandler:          jobHandler,
	})

	server := &http.Server{
		Addr:         cfg.AppAddr,
		Handler:      router,
		ReadTimeout:  cfg.AppReadTimeout,
		WriteTimeout: cfg.AppWriteTimeout,
	}

	go func() {
		logger.Info("starting http server", slog.String("addr", cfg.AppAddr))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("http server", slog.Any("error", err))
			stop()
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("graceful shutdown", slog.Any("error", err))
	}
}
