package scheduler

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"
)

// Job 是定时触发的任务
type Job func(ctx context.Context) error

// Weekly 每周固定星期、固定时刻触发一次，时刻按 Location 解释
type Weekly struct {
	Weekday  time.Weekday
	Hour     int
	Minute   int
	Location *time.Location

	now    func() time.Time
	after  func(time.Duration) <-chan time.Time
	logger *log.Logger
}

// NewWeekly 构造 Weekly，loc 为空时使用 UTC
func NewWeekly(weekday time.Weekday, hour, minute int, loc *time.Location) (*Weekly, error) {
	if hour < 0 || hour > 23 || minute < 0 || minute > 59 {
		return nil, fmt.Errorf("invalid time of day %02d:%02d", hour, minute)
	}
	if loc == nil {
		loc = time.UTC
	}
	return &Weekly{Weekday: weekday, Hour: hour, Minute: minute, Location: loc}, nil
}

// WithLogger 替换日志输出
func (w *Weekly) WithLogger(logger *log.Logger) *Weekly {
	w.logger = logger
	return w
}

// Next 返回严格晚于 after 的下一次触发时间
func (w *Weekly) Next(after time.Time) time.Time {
	loc := w.Location
	if loc == nil {
		loc = time.UTC
	}
	local := after.In(loc)

	days := (int(w.Weekday) - int(local.Weekday()) + 7) % 7
	candidate := time.Date(local.Year(), local.Month(), local.Day()+days, w.Hour, w.Minute, 0, 0, loc)
	if !candidate.After(local) {
		candidate = time.Date(local.Year(), local.Month(), local.Day()+days+7, w.Hour, w.Minute, 0, 0, loc)
	}
	return candidate
}

// Run 阻塞直到 ctx 结束，每到触发时间执行一次 job；job 出错只记录日志
func (w *Weekly) Run(ctx context.Context, job Job) error {
	now := w.now
	if now == nil {
		now = time.Now
	}
	after := w.after
	if after == nil {
		after = time.After
	}
	logger := w.logger
	if logger == nil {
		logger = log.Default()
	}
	logger = logger.WithPrefix("scheduler")

	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		next := w.Next(now())
		logger.Info("next weekly run scheduled", "at", next.Format(time.RFC3339))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-after(next.Sub(now())):
		}

		started := now()
		if err := job(ctx); err != nil {
			logger.Error("weekly job failed", "err", err, "elapsed", now().Sub(started))
			continue
		}
		logger.Info("weekly job finished", "elapsed", now().Sub(started))
	}
}

// ParseWeekday 解析英文星期名，接受全称或三字母缩写
func ParseWeekday(value string) (time.Weekday, error) {
	name := strings.ToLower(strings.TrimSpace(value))
	for day := time.Sunday; day <= time.Saturday; day++ {
		full := strings.ToLower(day.String())
		if name == full || name == full[:3] {
			return day, nil
		}
	}
	return 0, fmt.Errorf("invalid weekday %q", value)
}

// ParseClock 解析 HH:MM
func ParseClock(value string) (int, int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(value))
	if err != nil {
		return 0, 0, fmt.Errorf("invalid time of day %q", value)
	}
	return t.Hour(), t.Minute(), nil
}
