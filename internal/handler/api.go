package handler

import (
	"github.com/charmbracelet/log"
	"gorm.io/gorm"

	"github.com/hourlog/internal/service"
	"github.com/hourlog/internal/week"
)

// API bundles shared dependencies for HTTP handlers.
type API struct {
	auth      *service.AuthService
	reminders *service.ReminderService
	dashboard *service.DashboardService
	tracking  *service.TrackingService
	entries   *service.EntryService
	calendar  *week.Calendar
	logger    *log.Logger
}

// Options 描述构造 API 所需的外部组件
type Options struct {
	Calendar     *week.Calendar
	WeeklyTarget float64
	Sender       service.Sender
	Links        service.LinkIssuer
	Logger       *log.Logger
}

// NewAPI constructs a handler set with shared services.
func NewAPI(gdb *gorm.DB, opts Options) *API {
	repos := service.NewGormRepositories(gdb)
	return NewAPIWithRepositories(repos, opts)
}

// NewAPIWithRepositories 使用给定的存储实现构造 API
func NewAPIWithRepositories(repos service.Repositories, opts Options) *API {
	calendar := opts.Calendar
	if calendar == nil {
		calendar = week.NewCalendar(nil, nil)
	}
	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}
	classifier := service.NewClassifier(opts.WeeklyTarget)

	reminders := service.NewReminderService(repos, calendar, classifier).WithLogger(logger)
	if opts.Sender != nil && opts.Links != nil {
		reminders.WithDelivery(opts.Sender, opts.Links)
	}

	return &API{
		auth:      service.NewAuthService(repos),
		reminders: reminders,
		dashboard: service.NewDashboardService(repos, calendar, classifier),
		tracking:  service.NewTrackingService(repos, calendar, classifier),
		entries:   service.NewEntryService(repos, calendar),
		calendar:  calendar,
		logger:    logger.WithPrefix("http"),
	}
}

// Reminders exposes the reminder service for the scheduler.
func (a *API) Reminders() *service.ReminderService {
	return a.reminders
}
