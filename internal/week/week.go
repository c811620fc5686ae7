package week

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"
)

const (
	// Layout 是所有日历日期的序列化格式。
	Layout = "2006-01-02"
	// MonthLayout 是月份参数的格式。
	MonthLayout = "2006-01"
	// DefaultTimezone 是统计周边界的固定时区。
	DefaultTimezone = "Europe/Madrid"
)

var (
	// ErrInvalidDate 在日期无法解析时返回
	ErrInvalidDate = errors.New("invalid date")
	// ErrNotMonday 在需要周一却收到其他日期时返回
	ErrNotMonday = errors.New("date is not a monday")
	// ErrInvalidMonth 在月份参数不是 YYYY-MM 时返回
	ErrInvalidMonth = errors.New("invalid month")
)

// Date 表示不带时间部分的日历日期，格式固定为 YYYY-MM-DD。
// 以字符串存储，数据库中不受任何时区影响，字典序即时间序。
type Date string

// NewDate 通过年月日构造 Date，越界值按 time.Date 规则归一。
func NewDate(year int, month time.Month, day int) Date {
	return Date(time.Date(year, month, day, 0, 0, 0, 0, time.UTC).Format(Layout))
}

// ParseDate 解析 YYYY-MM-DD。
func ParseDate(value string) (Date, error) {
	trimmed := strings.TrimSpace(value)
	t, err := time.Parse(Layout, trimmed)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, value)
	}
	return Date(t.Format(Layout)), nil
}

// ParseWeekStart 解析日期并要求其为周一。
func ParseWeekStart(value string) (Date, error) {
	d, err := ParseDate(value)
	if err != nil {
		return "", err
	}
	if d.Weekday() != time.Monday {
		return "", fmt.Errorf("%w: %s", ErrNotMonday, d)
	}
	return d, nil
}

// IsMonday 判断字符串是否为周一；无法解析时返回 false 而不是报错。
func IsMonday(value string) bool {
	d, err := ParseDate(value)
	if err != nil {
		return false
	}
	return d.Weekday() == time.Monday
}

func (d Date) String() string {
	return string(d)
}

// IsZero 表示未设置的日期。
func (d Date) IsZero() bool {
	return d == ""
}

// Valid 判断 d 是否为规范的 YYYY-MM-DD；非法值上的日历运算没有意义。
func (d Date) Valid() bool {
	t, err := time.Parse(Layout, string(d))
	return err == nil && t.Format(Layout) == string(d)
}

// civil 返回 UTC 零点的 time.Time，仅用于日历运算，避免夏令时带来的 23/25 小时日。
func (d Date) civil() time.Time {
	t, err := time.Parse(Layout, string(d))
	if err != nil {
		return time.Time{}
	}
	return t
}

// AddDays 返回偏移 n 天后的日期。
func (d Date) AddDays(n int) Date {
	return Date(d.civil().AddDate(0, 0, n).Format(Layout))
}

// Weekday 返回星期几。
func (d Date) Weekday() time.Weekday {
	return d.civil().Weekday()
}

// Before 比较两个日期。
func (d Date) Before(other Date) bool {
	return d < other
}

// After 比较两个日期。
func (d Date) After(other Date) bool {
	return d > other
}

// Midnight 返回该日期在 loc 中的零点。
func (d Date) Midnight(loc *time.Location) time.Time {
	t := d.civil()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, loc)
}

// Value 实现 driver.Valuer，确保以纯字符串写入数据库。
func (d Date) Value() (driver.Value, error) {
	if !d.IsZero() && !d.Valid() {
		return nil, fmt.Errorf("%w: %q", ErrInvalidDate, string(d))
	}
	return string(d), nil
}

// Scan 实现 sql.Scanner。
func (d *Date) Scan(src any) error {
	switch v := src.(type) {
	case nil:
		*d = ""
	case string:
		*d = Date(v)
	case []byte:
		*d = Date(string(v))
	case time.Time:
		*d = Date(v.Format(Layout))
	default:
		return fmt.Errorf("scan week.Date: unsupported type %T", src)
	}
	return nil
}

// StartOf 返回日期所在周的周一（ISO 周）。
func StartOf(d Date) Date {
	weekday := int(d.Weekday())
	if weekday == 0 {
		weekday = 7
	}
	return d.AddDays(-(weekday - 1))
}

// End 返回周一对应的周日。
func End(weekStart Date) Date {
	return weekStart.AddDays(6)
}

// MonthRange 描述与某个自然月重叠的所有周。
type MonthRange struct {
	Month     string
	Start     Date
	End       Date
	WeekCount int
}

// Weeks 按时间升序列出范围内的每个周一。
func (r MonthRange) Weeks() []Date {
	weeks := make([]Date, 0, r.WeekCount)
	for d := r.Start; !d.After(r.End); d = d.AddDays(7) {
		weeks = append(weeks, d)
	}
	return weeks
}

// Contains 判断某个周一是否落在该月范围内。
func (r MonthRange) Contains(weekStart Date) bool {
	return !weekStart.Before(r.Start) && !weekStart.After(r.End)
}

// MonthWeekRange 计算与 YYYY-MM 重叠的周，包括只有部分天数落在该月的首尾周。
func MonthWeekRange(month string) (MonthRange, error) {
	trimmed := strings.TrimSpace(month)
	first, err := time.Parse(MonthLayout, trimmed)
	if err != nil {
		return MonthRange{}, fmt.Errorf("%w: %q", ErrInvalidMonth, month)
	}

	firstDay := NewDate(first.Year(), first.Month(), 1)
	lastDay := NewDate(first.Year(), first.Month()+1, 0)

	start := StartOf(firstDay)
	end := StartOf(lastDay)
	count := int(end.civil().Sub(start.civil()).Hours()/(24*7)) + 1

	return MonthRange{
		Month:     first.Format(MonthLayout),
		Start:     start,
		End:       end,
		WeekCount: count,
	}, nil
}
