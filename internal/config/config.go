package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/hourlog/internal/scheduler"
	"github.com/hourlog/internal/week"
)

// AppConfig 汇总运行服务所需的基础配置。
type AppConfig struct {
	ListenAddr    string
	Port          string
	DatabasePath  string
	SessionSecret string
	GinMode       string
	SiteBaseURL   string

	Timezone          string
	WeeklyTargetHours float64

	ReminderWeekday          time.Weekday
	ReminderHour             int
	ReminderMinute           int
	ReminderSchedulerEnabled bool

	TelegramBotToken string
	TelegramAPIBase  string

	LogDir   string
	LogDebug bool

	SuperRootEmail    string
	SuperRootPassword string
}

// Load 从环境变量读取应用配置，并为缺失项提供安全的默认值；格式错误的值汇总后一并返回。
func Load() (AppConfig, error) {
	invalid := make([]string, 0)

	port := envOr("PORT", "8080")
	if n, err := strconv.Atoi(port); err != nil || n <= 0 || n > 65535 {
		invalid = append(invalid, "PORT")
	}

	listenAddr := envOr("LISTEN_ADDR", fmt.Sprintf(":%s", port))

	timezone := envOr("TIMEZONE", week.DefaultTimezone)
	if _, err := time.LoadLocation(timezone); err != nil {
		invalid = append(invalid, "TIMEZONE")
	}

	target := 2.0
	if raw := strings.TrimSpace(os.Getenv("WEEKLY_TARGET_HOURS")); raw != "" {
		parsed, err := strconv.ParseFloat(raw, 64)
		if err != nil || parsed <= 0 {
			invalid = append(invalid, "WEEKLY_TARGET_HOURS")
		} else {
			target = parsed
		}
	}

	weekday, err := scheduler.ParseWeekday(envOr("REMINDER_WEEKDAY", "monday"))
	if err != nil {
		invalid = append(invalid, "REMINDER_WEEKDAY")
	}

	hour, minute, err := scheduler.ParseClock(envOr("REMINDER_TIME", "07:00"))
	if err != nil {
		invalid = append(invalid, "REMINDER_TIME")
	}

	schedulerEnabled, ok := envBool("REMINDER_SCHEDULER_ENABLED", true)
	if !ok {
		invalid = append(invalid, "REMINDER_SCHEDULER_ENABLED")
	}

	logDebug, ok := envBool("LOG_DEBUG", false)
	if !ok {
		invalid = append(invalid, "LOG_DEBUG")
	}

	if len(invalid) > 0 {
		return AppConfig{}, fmt.Errorf("invalid environment values: %s", strings.Join(invalid, ", "))
	}

	return AppConfig{
		ListenAddr:               listenAddr,
		Port:                     port,
		DatabasePath:             envOr("DATABASE_PATH", "hourlog.db"),
		SessionSecret:            envOr("SESSION_SECRET", "hourlog-dev-secret"),
		GinMode:                  envOr("GIN_MODE", "release"),
		SiteBaseURL:              envOr("SITE_BASE_URL", "http://localhost:"+port),
		Timezone:                 timezone,
		WeeklyTargetHours:        target,
		ReminderWeekday:          weekday,
		ReminderHour:             hour,
		ReminderMinute:           minute,
		ReminderSchedulerEnabled: schedulerEnabled,
		TelegramBotToken:         strings.TrimSpace(os.Getenv("TELEGRAM_BOT_TOKEN")),
		TelegramAPIBase:          strings.TrimSpace(os.Getenv("TELEGRAM_API_BASE")),
		LogDir:                   envOr("LOG_DIR", "logs"),
		LogDebug:                 logDebug,
		SuperRootEmail:           strings.TrimSpace(os.Getenv("SUPER_ROOT_EMAIL")),
		SuperRootPassword:        strings.TrimSpace(os.Getenv("SUPER_ROOT_PASSWORD")),
	}, nil
}

func envOr(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func envBool(key string, fallback bool) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, true
	}
	parsed, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback, false
	}
	return parsed, true
}
