package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/repository"
	"github.com/hourlog/internal/week"
)

// MaxSummaryWeeks 限制单次周汇总的跨度
const MaxSummaryWeeks = 52

// TrackingService 提供单个成员的周/月汇总
type TrackingService struct {
	users      UserRepository
	circles    CircleRepository
	entries    EntryRepository
	calendar   *week.Calendar
	aggregator PeriodAggregator
}

// NewTrackingService 构造 TrackingService
func NewTrackingService(repos Repositories, calendar *week.Calendar, classifier Classifier) *TrackingService {
	return &TrackingService{
		users:      repos.Users,
		circles:    repos.Circles,
		entries:    repos.Entries,
		calendar:   calendar,
		aggregator: NewPeriodAggregator(classifier),
	}
}

// UserWeekly 返回成员最近 weeks 周的汇总，最近的在前
func (s *TrackingService) UserWeekly(ctx context.Context, userID uint, weeks int) ([]WeekSummary, error) {
	if weeks <= 0 || weeks > MaxSummaryWeeks {
		return nil, invalid("weeks", fmt.Sprintf("must be between 1 and %d", MaxSummaryWeeks))
	}
	if _, err := lookupUser(ctx, s.users, userID); err != nil {
		return nil, err
	}

	weekStarts := s.calendar.LastNWeekStarts(weeks)
	oldest := weekStarts[len(weekStarts)-1]
	newest := weekStarts[0]

	entries, err := s.entries.ListForUser(ctx, userID, oldest, newest)
	if err != nil {
		return nil, fmt.Errorf("load weekly entries: %w", err)
	}

	names, err := circleNameMap(ctx, s.circles, entries)
	if err != nil {
		return nil, fmt.Errorf("load circle names: %w", err)
	}

	return s.aggregator.WeeklySummary(entries, weekStarts, names), nil
}

// UserMonthly 返回成员在 YYYY-MM 的月度汇总
func (s *TrackingService) UserMonthly(ctx context.Context, userID uint, month string) (MonthSummary, error) {
	if month == "" {
		month = s.calendar.CurrentMonth()
	}
	monthRange, err := week.MonthWeekRange(month)
	if err != nil {
		return MonthSummary{}, invalidWrap("month", err)
	}
	if _, err := lookupUser(ctx, s.users, userID); err != nil {
		return MonthSummary{}, err
	}

	entries, err := s.entries.ListForUser(ctx, userID, monthRange.Start, monthRange.End)
	if err != nil {
		return MonthSummary{}, fmt.Errorf("load monthly entries: %w", err)
	}

	names, err := circleNameMap(ctx, s.circles, entries)
	if err != nil {
		return MonthSummary{}, fmt.Errorf("load circle names: %w", err)
	}

	return s.aggregator.MonthlySummary(entries, monthRange, names), nil
}

func lookupUser(ctx context.Context, users UserRepository, userID uint) (*db.User, error) {
	user, err := users.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("load user: %w", err)
	}
	return user, nil
}
