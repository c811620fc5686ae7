package service

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/repository"
	"github.com/hourlog/internal/week"
)

// UserRepository 是服务层读取成员所需的能力
type UserRepository interface {
	ListParticipants(ctx context.Context) ([]db.User, error)
	FindByIDs(ctx context.Context, ids []uint) ([]db.User, error)
	Get(ctx context.Context, id uint) (*db.User, error)
	FindByEmail(ctx context.Context, email string) (*db.User, error)
	MarkReminded(ctx context.Context, userID uint, at time.Time) error
}

// CircleRepository 是服务层读取圈子所需的能力
type CircleRepository interface {
	ListActive(ctx context.Context) ([]db.Circle, error)
	FindByIDs(ctx context.Context, ids []uint) ([]db.Circle, error)
	Get(ctx context.Context, id uint) (*db.Circle, error)
	CountActiveMembers(ctx context.Context) (map[uint]int, error)
	GetMembership(ctx context.Context, userID, circleID uint) (*db.CircleMembership, error)
}

// EntryRepository 是服务层存取时长记录所需的能力，查询结果不含作废记录
type EntryRepository interface {
	ListByWeeks(ctx context.Context, weekStarts []week.Date) ([]db.WeeklyEntry, error)
	ListBetween(ctx context.Context, from, to week.Date) ([]db.WeeklyEntry, error)
	ListForUser(ctx context.Context, userID uint, from, to week.Date) ([]db.WeeklyEntry, error)
	Recent(ctx context.Context, limit int) ([]db.WeeklyEntry, error)
	Get(ctx context.Context, id uint) (*db.WeeklyEntry, error)
	Create(ctx context.Context, entry *db.WeeklyEntry) error
	Save(ctx context.Context, entry *db.WeeklyEntry) error
}

// ReminderRepository 是提醒批次的存取能力
type ReminderRepository interface {
	FindCompletedRun(ctx context.Context, weekStart week.Date) (*db.ReminderRun, error)
	ListRuns(ctx context.Context, weekStart week.Date) ([]db.ReminderRun, error)
	CreateRun(ctx context.Context, run *db.ReminderRun) error
	SaveRun(ctx context.Context, run *db.ReminderRun) error
	CreateTargets(ctx context.Context, targets []db.ReminderTarget) error
	ListTargets(ctx context.Context, runID uint) ([]db.ReminderTarget, error)
}

// TokenRepository 保存一次性登录凭证
type TokenRepository interface {
	Create(ctx context.Context, token *db.LoginToken) error
}

// Repositories 汇总服务层依赖的全部存储
type Repositories struct {
	Users     UserRepository
	Circles   CircleRepository
	Entries   EntryRepository
	Reminders ReminderRepository
	Tokens    TokenRepository
}

// NewGormRepositories 使用 gorm 实现构造 Repositories
func NewGormRepositories(gdb *gorm.DB) Repositories {
	return Repositories{
		Users:     repository.NewUsers(gdb),
		Circles:   repository.NewCircles(gdb),
		Entries:   repository.NewEntries(gdb),
		Reminders: repository.NewReminders(gdb),
		Tokens:    repository.NewTokens(gdb),
	}
}

func circleNameMap(ctx context.Context, circles CircleRepository, entries []db.WeeklyEntry) (map[uint]string, error) {
	ids := make([]uint, 0)
	seen := make(map[uint]struct{})
	for _, entry := range entries {
		if _, ok := seen[entry.CircleID]; ok {
			continue
		}
		seen[entry.CircleID] = struct{}{}
		ids = append(ids, entry.CircleID)
	}

	names := make(map[uint]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	found, err := circles.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	for _, circle := range found {
		names[circle.ID] = circle.Name
	}
	return names, nil
}
