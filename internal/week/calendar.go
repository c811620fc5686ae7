package week

import (
	"fmt"
	"strings"
	"time"
)

// Calendar 把任意时刻映射到固定时区下的周/月边界。
// now 可注入，测试中可以固定“当前时间”。
type Calendar struct {
	loc *time.Location
	now func() time.Time
}

// NewCalendar 构造 Calendar；loc 为空时回退 UTC，now 为空时使用 time.Now。
func NewCalendar(loc *time.Location, now func() time.Time) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if now == nil {
		now = time.Now
	}
	return &Calendar{loc: loc, now: now}
}

// LoadCalendar 按时区名称构造 Calendar，名称为空时使用 DefaultTimezone。
func LoadCalendar(timezone string, now func() time.Time) (*Calendar, error) {
	name := strings.TrimSpace(timezone)
	if name == "" {
		name = DefaultTimezone
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("load timezone %s: %w", name, err)
	}
	return NewCalendar(loc, now), nil
}

// Location 返回固定时区。
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// Now 返回固定时区下的当前时间。
func (c *Calendar) Now() time.Time {
	return c.now().In(c.loc)
}

// DateOf 返回时刻在固定时区中的日历日期。
func (c *Calendar) DateOf(t time.Time) Date {
	local := t.In(c.loc)
	return NewDate(local.Year(), local.Month(), local.Day())
}

// Today 返回固定时区下的今天。
func (c *Calendar) Today() Date {
	return c.DateOf(c.now())
}

// WeekStart 返回时刻所在周的周一，与调用方本地时区无关。
func (c *Calendar) WeekStart(t time.Time) Date {
	return StartOf(c.DateOf(t))
}

// CurrentWeekStart 返回本周周一。
func (c *Calendar) CurrentWeekStart() Date {
	return c.WeekStart(c.now())
}

// PreviousWeekStart 返回本周之前的那个周一。
func (c *Calendar) PreviousWeekStart() Date {
	return c.CurrentWeekStart().AddDays(-7)
}

// LastNWeekStarts 返回本周及之前 n-1 周的周一，最近的在前。
func (c *Calendar) LastNWeekStarts(n int) []Date {
	if n <= 0 {
		return []Date{}
	}
	current := c.CurrentWeekStart()
	weeks := make([]Date, n)
	for i := 0; i < n; i++ {
		weeks[i] = current.AddDays(-7 * i)
	}
	return weeks
}

// CurrentMonth 返回固定时区下的当前月份 YYYY-MM。
func (c *Calendar) CurrentMonth() string {
	return c.Now().Format(MonthLayout)
}

// ResolveWeekStart 返回显式指定的周一，未指定时回退到上一周。
func (c *Calendar) ResolveWeekStart(weekStart *Date) Date {
	if weekStart != nil && !weekStart.IsZero() {
		return *weekStart
	}
	return c.PreviousWeekStart()
}
