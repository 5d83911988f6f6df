package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/hibiken/asynq"

	"github.com/wimotos/wimotos/internal/app"
	"github.com/wimotos/wimotos/internal/integration/blibsend"
	"github.com/wimotos/wimotos/internal/platform/db"
	"github.com/wimotos/wimotos/jobs"
)

func main() {
	if app.InTestMode() {
		slog.Default().Info("test mode detected, skipping worker startup")
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, err := app.LoadConfig()
	if err != nil {
		slog.Default().Error("load config", slog.Any("error", err))
		os.Exit(1)
	}
	if err := cfg.RequireReminderConfig(); err != nil {
		slog.Default().Error("reminder config", slog.Any("error", err))
		os.Exit(1)
	}

	logger := app.NewLogger(cfg)

	pool, err := db.New(ctx, cfg.PGDSN)
	if err != nil {
		logger.Error("connect database", slog.Any("error", err))
		os.Exit(1)
	}
	defer pool.Close()

	sender := blibsend.NewClient(blibsend.Config{
		BaseURL:      cfg.BlibsendBaseURL,
		ClientID:     cfg.BlibsendClientID,
		ClientSecret: cfg.BlibsendClientSecret,
		SessionToken: cfg.BlibsendSessionToken,
	})

	reminders := jobs.NewReminders(logger, jobs.NewStore(pool), sender, jobs.ReminderConfig{
		OwnerNumber: cfg.ReminderOwnerNumber,
		DueSoonDays: cfg.ReminderDueSoonDays,
		BatchLimit:  cfg.ReminderBatchLimit,
	})

	now := time.Now().UTC()
	financeTask, err := jobs.NewScanTask(jobs.TaskFinanceReminders, now)
	if err != nil {
		logger.Error("build finance task", slog.Any("error", err))
		os.Exit(1)
	}
	dueSoonTask, err := jobs.NewScanTask(jobs.TaskInstallmentsDueSoon, now)
	if err != nil {
		logger.Error("build due-soon task", slog.Any("error", err))
		os.Exit(1)
	}
	overdueTask, err := jobs.NewScanTask(jobs.TaskInstallmentsOverdue, now)
	if err != nil {
		logger.Error("build overdue task", slog.Any("error", err))
		os.Exit(1)
	}

	worker, err := jobs.NewWorker(jobs.WorkerConfig{
		RedisOpts: asynq.RedisClientOpt{Addr: cfg.RedisAddr},
		Logger:    logger,
		Reminders: reminders,
		Cron: []jobs.CronRegistration{
			{Spec: cfg.FinanceReminderCron, Task: financeTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.DueSoonReminderCron, Task: dueSoonTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
			{Spec: cfg.OverdueReminderCron, Task: overdueTask, Options: []asynq.Option{asynq.MaxRetry(3)}},
		},
	})
	if err != nil {
		logger.Error("init worker", slog.Any("error", err))
		os.Exit(1)
	}

	if err := worker.Run(ctx); err != nil && err != context.Canceled {
		logger.Error("worker run", slog.Any("error", err))
		os.Exit(1)
	}
}
