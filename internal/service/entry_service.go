package service

import (
	"context"
	"errors"
	"fmt"
	"math"
	"strings"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/repository"
	"github.com/hourlog/internal/week"
)

// EntryService 负责时长记录的录入与作废
// 录入时校验周一、两位小数、零时长原因以及成员关系；统计环节不再重复校验
type EntryService struct {
	users    UserRepository
	circles  CircleRepository
	entries  EntryRepository
	calendar *week.Calendar
}

// EntryInput 定义录入时长时可配置字段
type EntryInput struct {
	UserID          uint
	CircleID        uint
	WeekStartDate   string
	Hours           float64
	Description     string
	ZeroHoursReason string
}

// NewEntryService 构造 EntryService
func NewEntryService(repos Repositories, calendar *week.Calendar) *EntryService {
	return &EntryService{
		users:    repos.Users,
		circles:  repos.Circles,
		entries:  repos.Entries,
		calendar: calendar,
	}
}

// Create 新建时长记录
func (s *EntryService) Create(ctx context.Context, input EntryInput) (*db.WeeklyEntry, error) {
	ws, err := week.ParseWeekStart(input.WeekStartDate)
	if err != nil {
		return nil, invalidWrap("week_start_date", err)
	}
	if ws.After(s.calendar.CurrentWeekStart()) {
		return nil, invalid("week_start_date", "cannot log hours for a future week")
	}

	reason := strings.TrimSpace(input.ZeroHoursReason)
	if err := validateHours(input.Hours, reason); err != nil {
		return nil, err
	}

	user, err := lookupUser(ctx, s.users, input.UserID)
	if err != nil {
		return nil, err
	}
	if !user.IsActive || user.IsAdmin() {
		return nil, invalid("user_id", "user does not track hours")
	}

	circle, err := s.circles.Get(ctx, input.CircleID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrCircleNotFound
		}
		return nil, fmt.Errorf("load circle: %w", err)
	}
	if !circle.IsActive {
		return nil, invalid("circle_id", "circle is not active")
	}

	membership, err := s.circles.GetMembership(ctx, user.ID, circle.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, invalid("circle_id", "user is not a member of this circle")
		}
		return nil, fmt.Errorf("load membership: %w", err)
	}
	if !membership.IsActive {
		return nil, invalid("circle_id", "membership is not active")
	}
	if !membership.TrackingStartDate.IsZero() && ws.Before(week.StartOf(membership.TrackingStartDate)) {
		return nil, invalid("week_start_date", fmt.Sprintf("tracking starts on %s", membership.TrackingStartDate))
	}

	entry := db.WeeklyEntry{
		UserID:        user.ID,
		CircleID:      circle.ID,
		WeekStartDate: ws,
		Hours:         roundHours(input.Hours),
		Description:   strings.TrimSpace(input.Description),
	}
	if reason != "" {
		entry.ZeroHoursReason = &reason
	}

	if err := s.entries.Create(ctx, &entry); err != nil {
		return nil, err
	}
	return &entry, nil
}

// Void 作废记录，保留原始数据用于审计
func (s *EntryService) Void(ctx context.Context, id, voidedBy uint, reason string) (*db.WeeklyEntry, error) {
	trimmed := strings.TrimSpace(reason)
	if trimmed == "" {
		return nil, invalid("reason", "void reason is required")
	}

	entry, err := s.entries.Get(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrEntryNotFound
		}
		return nil, err
	}
	if entry.IsVoid() {
		return nil, ErrEntryAlreadyVoided
	}

	now := s.calendar.Now()
	entry.VoidedAt = &now
	entry.VoidReason = &trimmed
	if voidedBy != 0 {
		by := voidedBy
		entry.VoidedBy = &by
	}

	if err := s.entries.Save(ctx, entry); err != nil {
		return nil, err
	}
	return entry, nil
}

// ListForUser 返回成员在区间内的有效记录
func (s *EntryService) ListForUser(ctx context.Context, userID uint, from, to week.Date) ([]db.WeeklyEntry, error) {
	if to.Before(from) {
		return nil, invalid("to", "end before start")
	}
	if _, err := lookupUser(ctx, s.users, userID); err != nil {
		return nil, err
	}
	return s.entries.ListForUser(ctx, userID, from, to)
}

func validateHours(hours float64, reason string) error {
	if math.IsNaN(hours) || math.IsInf(hours, 0) || hours < 0 {
		return invalid("hours", "must be a non-negative number")
	}
	scaled := hours * 100
	if math.Abs(scaled-math.Round(scaled)) > 1e-6 {
		return invalid("hours", "at most two decimal places are allowed")
	}
	if hours == 0 && reason == "" {
		return invalid("zero_hours_reason", "required when hours is zero")
	}
	if hours > 0 && reason != "" {
		return invalid("zero_hours_reason", "only allowed when hours is zero")
	}
	return nil
}
