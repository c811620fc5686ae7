package db

import (
	"strings"
	"time"

	"github.com/hourlog/internal/week"
)

// WeeklyEntry 记录成员在某个圈子某一周投入的时长
// WeekStartDate 始终是固定时区下的周一；Hours 保留两位小数
// Hours == 0 时必须填写 ZeroHoursReason（请假、生病等）
// 记录永不物理删除，作废通过 VoidedAt/VoidedBy/VoidReason 标记，仅用于审计
type WeeklyEntry struct {
	ID              uint      `gorm:"primaryKey"`
	UserID          uint      `gorm:"index;not null"`
	CircleID        uint      `gorm:"index;not null"`
	WeekStartDate   week.Date `gorm:"size:10;index;not null"`
	Hours           float64   `gorm:"not null;default:0"`
	Description     string    `gorm:"type:text"`
	ZeroHoursReason *string
	CreatedAt       time.Time
	UpdatedAt       time.Time
	VoidedAt        *time.Time `gorm:"index"`
	VoidedBy        *uint
	VoidReason      *string
}

// TableName 指定自定义表名。
func (WeeklyEntry) TableName() string {
	return "weekly_entries"
}

// IsVoid 判断记录是否已作废。
func (e WeeklyEntry) IsVoid() bool {
	return e.VoidedAt != nil
}

// HasZeroHoursReason 判断是否填写了非空的零时长原因。
func (e WeeklyEntry) HasZeroHoursReason() bool {
	return e.ZeroHoursReason != nil && strings.TrimSpace(*e.ZeroHoursReason) != ""
}
