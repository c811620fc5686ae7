package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/charmbracelet/log"
	"github.com/gin-gonic/gin"

	"github.com/hourlog/internal/config"
	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/handler"
	"github.com/hourlog/internal/logger"
	"github.com/hourlog/internal/notify"
	"github.com/hourlog/internal/router"
	"github.com/hourlog/internal/scheduler"
	"github.com/hourlog/internal/service"
	"github.com/hourlog/internal/week"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("failed to load configuration", "err", err)
	}

	if err := logger.Init(logger.Config{Dir: cfg.LogDir, Debug: cfg.LogDebug}); err != nil {
		log.Fatal("failed to initialize logger", "err", err)
	}
	appLog := logger.Logger

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	calendar, err := week.LoadCalendar(cfg.Timezone, nil)
	if err != nil {
		appLog.Fatal("failed to load calendar", "err", err)
	}

	// 初始化数据库
	if err := db.Init(cfg.DatabasePath); err != nil {
		appLog.Fatal("failed to initialize database", "err", err)
	}
	if err := db.EnsureAdmin(db.DB, cfg.SuperRootEmail, cfg.SuperRootPassword, ""); err != nil {
		appLog.Fatal("failed to ensure admin account", "err", err)
	}

	repos := service.NewGormRepositories(db.DB)
	api := handler.NewAPIWithRepositories(repos, handler.Options{
		Calendar:     calendar,
		WeeklyTarget: cfg.WeeklyTargetHours,
		Sender:       newSender(cfg, appLog),
		Links:        service.NewTokenLinkIssuer(repos.Tokens, cfg.SiteBaseURL, calendar),
		Logger:       appLog,
	})

	if cfg.ReminderSchedulerEnabled {
		weekly, err := scheduler.NewWeekly(cfg.ReminderWeekday, cfg.ReminderHour, cfg.ReminderMinute, calendar.Location())
		if err != nil {
			appLog.Fatal("invalid reminder schedule", "err", err)
		}
		weekly.WithLogger(appLog)
		go func() {
			err := weekly.Run(ctx, func(ctx context.Context) error {
				_, delivery, err := api.Reminders().RunWeekly(ctx, nil)
				if err != nil {
					return err
				}
				appLog.Info("weekly reminders delivered", "week", delivery.WeekStartDate, "sent", delivery.Sent, "skipped", delivery.Skipped, "failed", delivery.Failed)
				return nil
			})
			if err != nil && !errors.Is(err, context.Canceled) {
				appLog.Error("reminder scheduler stopped", "err", err)
			}
		}()
	}

	gin.SetMode(cfg.GinMode)
	server := &http.Server{
		Addr:              cfg.ListenAddr,
		Handler:           router.SetupRouter(api, cfg.SessionSecret),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil && !errors.Is(err, http.ErrServerClosed) {
			appLog.Error("failed to shutdown server", "err", err)
		}
	}()

	appLog.Info("hourlog listening", "addr", server.Addr, "timezone", calendar.Location().String())
	if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		appLog.Fatal("failed to run server", "err", err)
	}
}

// newSender 配置了机器人 token 时走 Telegram，否则只写日志
func newSender(cfg config.AppConfig, appLog *log.Logger) service.Sender {
	if cfg.TelegramBotToken == "" {
		appLog.Warn("TELEGRAM_BOT_TOKEN not set, reminders will only be logged")
		return notify.NewLogSender(appLog)
	}
	sender := notify.NewTelegramSender(cfg.TelegramBotToken)
	if cfg.TelegramAPIBase != "" {
		sender.SetBaseURL(cfg.TelegramAPIBase)
	}
	return sender
}
