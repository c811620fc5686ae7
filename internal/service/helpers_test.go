package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/week"
)

func setupServiceTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:service-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	return gdb
}

// fixedCalendar 把“现在”固定在 2024-01-17（周三）中午，上一周为 2024-01-08
func fixedCalendar(t *testing.T) *week.Calendar {
	t.Helper()
	loc, err := time.LoadLocation(week.DefaultTimezone)
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	now := time.Date(2024, 1, 17, 12, 0, 0, 0, loc)
	return week.NewCalendar(loc, func() time.Time { return now })
}

func strPtr(s string) *string { return &s }

func seedMember(t *testing.T, gdb *gorm.DB, name string, chatHandle *string) db.User {
	t.Helper()
	user := db.User{
		Name:       name,
		Email:      fmt.Sprintf("%s@example.com", name),
		ChatHandle: chatHandle,
		IsActive:   true,
		Role:       db.RoleMember,
	}
	if err := gdb.Create(&user).Error; err != nil {
		t.Fatalf("failed to seed user %s: %v", name, err)
	}
	return user
}

func seedCircle(t *testing.T, gdb *gorm.DB, name string, active bool) db.Circle {
	t.Helper()
	circle := db.Circle{Name: name, IsActive: active}
	if err := gdb.Create(&circle).Error; err != nil {
		t.Fatalf("failed to seed circle %s: %v", name, err)
	}
	return circle
}

func seedMembership(t *testing.T, gdb *gorm.DB, userID, circleID uint, start week.Date) {
	t.Helper()
	membership := db.CircleMembership{UserID: userID, CircleID: circleID, IsActive: true, TrackingStartDate: start}
	if err := gdb.Create(&membership).Error; err != nil {
		t.Fatalf("failed to seed membership: %v", err)
	}
}

func seedEntry(t *testing.T, gdb *gorm.DB, userID, circleID uint, ws week.Date, hours float64, reason *string) db.WeeklyEntry {
	t.Helper()
	entry := db.WeeklyEntry{
		UserID:          userID,
		CircleID:        circleID,
		WeekStartDate:   ws,
		Hours:           hours,
		ZeroHoursReason: reason,
	}
	if err := gdb.Create(&entry).Error; err != nil {
		t.Fatalf("failed to seed entry: %v", err)
	}
	return entry
}

type sentMessage struct {
	chatHandle string
	userName   string
	loginURL   string
}

type stubSender struct {
	sent    []sentMessage
	failFor map[string]error
}

func (s *stubSender) Send(_ context.Context, chatHandle, userName, loginURL string) error {
	if err, ok := s.failFor[chatHandle]; ok {
		return err
	}
	s.sent = append(s.sent, sentMessage{chatHandle: chatHandle, userName: userName, loginURL: loginURL})
	return nil
}

type stubLinks struct{}

func (stubLinks) LoginURL(_ context.Context, userID uint) (string, error) {
	return fmt.Sprintf("https://hours.example.test/auth/magic?token=user-%d", userID), nil
}

var errStorageDown = errors.New("storage unavailable")

// failingTargets 在写入目标时模拟存储故障，其余操作透传
type failingTargets struct {
	ReminderRepository
}

func (f failingTargets) CreateTargets(context.Context, []db.ReminderTarget) error {
	return errStorageDown
}

type failingParticipants struct {
	UserRepository
}

func (f failingParticipants) ListParticipants(context.Context) ([]db.User, error) {
	return nil, errStorageDown
}

type failingMarkReminded struct {
	UserRepository
}

func (f failingMarkReminded) MarkReminded(context.Context, uint, time.Time) error {
	return errStorageDown
}
