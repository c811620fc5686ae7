package service

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/week"
)

const recentEntryLimit = 10

// RecentEntry 是后台首页展示的最近记录
type RecentEntry struct {
	ID              uint
	UserID          uint
	UserName        string
	CircleID        uint
	CircleName      string
	WeekStartDate   week.Date
	Hours           float64
	Description     string
	DescriptionHTML string
	ZeroHoursReason *string
	CreatedAt       time.Time
}

// DashboardUser 是名单中的成员
type DashboardUser struct {
	UserID     uint
	Name       string
	Email      string
	Status     WeeklyStatus
	TotalHours float64
}

// MissingWeek 是上一周需要关注的成员
type MissingWeek struct {
	WeekStartDate week.Date
	Users         []DashboardUser
}

// MissingWeeks 是连续两周完全没有有效活动的成员
type MissingWeeks struct {
	WeekStartDates []week.Date
	Users          []DashboardUser
}

// StatusCounts 统计上一周各状态人数
type StatusCounts struct {
	Missing     int
	UnderTarget int
	ZeroReason  int
	Met         int
}

// CircleMetric 是圈子在本月的贡献情况
type CircleMetric struct {
	CircleID          uint
	CircleName        string
	ActiveMemberCount int
	TotalHours        float64
	ContributingUsers int
	AvgHoursPerMember float64
}

// Dashboard 是后台首页数据
type Dashboard struct {
	RecentEntries       []RecentEntry
	MissingPreviousWeek MissingWeek
	MissingTwoWeeks     MissingWeeks
	StatusCounts        StatusCounts
	CircleMetrics       []CircleMetric
}

// DashboardService 做只读的跨成员汇总，不产生任何持久化记录
type DashboardService struct {
	users      UserRepository
	circles    CircleRepository
	entries    EntryRepository
	calendar   *week.Calendar
	classifier Classifier
}

// NewDashboardService 构造 DashboardService
func NewDashboardService(repos Repositories, calendar *week.Calendar, classifier Classifier) *DashboardService {
	return &DashboardService{
		users:      repos.Users,
		circles:    repos.Circles,
		entries:    repos.Entries,
		calendar:   calendar,
		classifier: classifier,
	}
}

// BuildDashboard 汇总后台首页；任何一步读取失败都让整个请求失败
func (s *DashboardService) BuildDashboard(ctx context.Context) (Dashboard, error) {
	recent, err := s.recentEntries(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	previous := s.calendar.PreviousWeekStart()
	before := previous.AddDays(-7)

	users, err := s.users.ListParticipants(ctx)
	if err != nil {
		return Dashboard{}, fmt.Errorf("load participants: %w", err)
	}
	entries, err := s.entries.ListByWeeks(ctx, []week.Date{previous, before})
	if err != nil {
		return Dashboard{}, fmt.Errorf("load recent weeks: %w", err)
	}

	byWeek := groupByWeek(entries)
	previousByUser := groupByUser(byWeek[previous])
	bothByUser := groupByUser(entries)

	counts := StatusCounts{}
	missing := MissingWeek{WeekStartDate: previous, Users: make([]DashboardUser, 0)}
	blank := MissingWeeks{WeekStartDates: []week.Date{previous, before}, Users: make([]DashboardUser, 0)}

	for _, user := range users {
		userEntries := previousByUser[user.ID]
		status := s.classifier.ClassifyWeek(userEntries)
		switch status {
		case StatusMissing:
			counts.Missing++
		case StatusUnderTarget:
			counts.UnderTarget++
		case StatusZeroReason:
			counts.ZeroReason++
		case StatusMet:
			counts.Met++
		}

		if status.AtRisk() {
			missing.Users = append(missing.Users, DashboardUser{
				UserID:     user.ID,
				Name:       user.Name,
				Email:      user.Email,
				Status:     status,
				TotalHours: SumHours(userEntries),
			})
		}

		if !hasQualifyingActivity(bothByUser[user.ID]) {
			blank.Users = append(blank.Users, DashboardUser{
				UserID: user.ID,
				Name:   user.Name,
				Email:  user.Email,
				Status: StatusMissing,
			})
		}
	}

	metrics, err := s.circleMetrics(ctx)
	if err != nil {
		return Dashboard{}, err
	}

	return Dashboard{
		RecentEntries:       recent,
		MissingPreviousWeek: missing,
		MissingTwoWeeks:     blank,
		StatusCounts:        counts,
		CircleMetrics:       metrics,
	}, nil
}

func (s *DashboardService) recentEntries(ctx context.Context) ([]RecentEntry, error) {
	entries, err := s.entries.Recent(ctx, recentEntryLimit)
	if err != nil {
		return nil, fmt.Errorf("load recent entries: %w", err)
	}

	names, err := circleNameMap(ctx, s.circles, entries)
	if err != nil {
		return nil, fmt.Errorf("load circle names: %w", err)
	}

	ids := make([]uint, 0, len(entries))
	for _, entry := range entries {
		ids = append(ids, entry.UserID)
	}
	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load entry users: %w", err)
	}
	userNames := make(map[uint]string, len(users))
	for _, user := range users {
		userNames[user.ID] = user.Name
	}

	recent := make([]RecentEntry, 0, len(entries))
	for _, entry := range entries {
		recent = append(recent, RecentEntry{
			ID:              entry.ID,
			UserID:          entry.UserID,
			UserName:        userNames[entry.UserID],
			CircleID:        entry.CircleID,
			CircleName:      names[entry.CircleID],
			WeekStartDate:   entry.WeekStartDate,
			Hours:           entry.Hours,
			Description:     entry.Description,
			DescriptionHTML: renderDescription(entry.Description),
			ZeroHoursReason: entry.ZeroHoursReason,
			CreatedAt:       entry.CreatedAt,
		})
	}
	return recent, nil
}

func (s *DashboardService) circleMetrics(ctx context.Context) ([]CircleMetric, error) {
	circles, err := s.circles.ListActive(ctx)
	if err != nil {
		return nil, fmt.Errorf("load circles: %w", err)
	}
	members, err := s.circles.CountActiveMembers(ctx)
	if err != nil {
		return nil, err
	}

	monthRange, err := week.MonthWeekRange(s.calendar.CurrentMonth())
	if err != nil {
		return nil, err
	}
	entries, err := s.entries.ListBetween(ctx, monthRange.Start, monthRange.End)
	if err != nil {
		return nil, fmt.Errorf("load month entries: %w", err)
	}

	totals := make(map[uint]float64)
	contributors := make(map[uint]map[uint]struct{})
	for _, entry := range entries {
		if entry.IsVoid() {
			continue
		}
		totals[entry.CircleID] += entry.Hours
		if entry.Hours <= 0 {
			continue
		}
		set, ok := contributors[entry.CircleID]
		if !ok {
			set = make(map[uint]struct{})
			contributors[entry.CircleID] = set
		}
		set[entry.UserID] = struct{}{}
	}

	metrics := make([]CircleMetric, 0, len(circles))
	for _, circle := range circles {
		total := roundHours(totals[circle.ID])
		count := members[circle.ID]
		metric := CircleMetric{
			CircleID:          circle.ID,
			CircleName:        circle.Name,
			ActiveMemberCount: count,
			TotalHours:        total,
			ContributingUsers: len(contributors[circle.ID]),
		}
		if count > 0 {
			metric.AvgHoursPerMember = roundHours(total / float64(count))
		}
		metrics = append(metrics, metric)
	}

	sort.SliceStable(metrics, func(i, j int) bool {
		return metrics[i].TotalHours > metrics[j].TotalHours
	})
	return metrics, nil
}

// hasQualifyingActivity 只要出现过正时长或零时长原因就算有活动
func hasQualifyingActivity(entries []db.WeeklyEntry) bool {
	for _, entry := range entries {
		if entry.IsVoid() {
			continue
		}
		if entry.Hours > 0 {
			return true
		}
		if entry.ZeroHoursReason != nil && strings.TrimSpace(*entry.ZeroHoursReason) != "" {
			return true
		}
	}
	return false
}
