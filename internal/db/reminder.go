package db

import (
	"time"

	"github.com/hourlog/internal/week"
)

const (
	// ReminderRunPending 表示提醒批次正在计算
	ReminderRunPending = "PENDING"
	// ReminderRunCompleted 表示批次已完成，之后不可变
	ReminderRunCompleted = "COMPLETED"
	// ReminderRunFailed 表示批次计算失败
	ReminderRunFailed = "FAILED"
)

// ReminderRun 是某一周提醒目标的一次计算快照
// 同一周最多只有一个 COMPLETED 批次，由部分唯一索引保证
type ReminderRun struct {
	ID            uint      `gorm:"primaryKey"`
	WeekStartDate week.Date `gorm:"size:10;not null;index;uniqueIndex:idx_reminder_runs_week_completed,where:status = 'COMPLETED'"`
	RunAt         time.Time `gorm:"not null"`
	TotalTargets  int       `gorm:"not null;default:0"`
	Status        string    `gorm:"size:16;not null"`
	FailureReason *string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// TableName 指定自定义表名。
func (ReminderRun) TableName() string {
	return "reminder_runs"
}

// ReminderTarget 是批次中被判定为需要提醒的成员
// 创建后不再修改；通知记账落在 User.LastReminderSentAt 上
type ReminderTarget struct {
	ID                uint    `gorm:"primaryKey"`
	ReminderRunID     uint    `gorm:"index;not null"`
	UserID            uint    `gorm:"index;not null"`
	WeeklyStatus      string  `gorm:"size:16;not null"`
	TotalHours        float64 `gorm:"not null;default:0"`
	NotifiedAt        *time.Time
	NotificationError *string
	CreatedAt         time.Time
}

// TableName 指定自定义表名。
func (ReminderTarget) TableName() string {
	return "reminder_targets"
}
