package cli

import (
	"io"

	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/hourlog/internal/service"
	"github.com/hourlog/internal/week"
)

// Context 是所有子命令共享的运行环境
type Context struct {
	DB       *gorm.DB
	Calendar *week.Calendar
	Target   float64
	Out      io.Writer
	Logger   *log.Logger
}

func (c *Context) repositories() service.Repositories {
	return service.NewGormRepositories(c.DB)
}

func (c *Context) classifier() service.Classifier {
	return service.NewClassifier(c.Target)
}

func (c *Context) reminders() *service.ReminderService {
	return service.NewReminderService(c.repositories(), c.Calendar, c.classifier()).WithLogger(c.logger())
}

func (c *Context) logger() *log.Logger {
	if c.Logger == nil {
		return log.Default()
	}
	return c.Logger
}

// parseWeekFlag 空值表示上一周
func parseWeekFlag(raw string) (*week.Date, error) {
	if raw == "" {
		return nil, nil
	}
	ws, err := week.ParseWeekStart(raw)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}
