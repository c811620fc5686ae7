package service

import (
	"context"
	"errors"
	"testing"

	"github.com/hourlog/internal/week"
)

func TestTrackingServiceUserWeekly(t *testing.T) {
	gdb := setupServiceTestDB(t)
	ana := seedMember(t, gdb, "Ana", nil)
	kitchen := seedCircle(t, gdb, "Kitchen", true)
	garden := seedCircle(t, gdb, "Garden", true)
	seedEntry(t, gdb, ana.ID, kitchen.ID, "2024-01-15", 1, nil)
	seedEntry(t, gdb, ana.ID, garden.ID, "2024-01-08", 1.5, nil)
	seedEntry(t, gdb, ana.ID, kitchen.ID, "2024-01-08", 0.5, nil)
	seedEntry(t, gdb, ana.ID, kitchen.ID, "2023-12-18", 9, nil)

	svc := NewTrackingService(NewGormRepositories(gdb), fixedCalendar(t), NewClassifier(2))
	ctx := context.Background()

	summaries, err := svc.UserWeekly(ctx, ana.ID, 3)
	if err != nil {
		t.Fatalf("UserWeekly returned error: %v", err)
	}

	want := []struct {
		ws     week.Date
		status WeeklyStatus
		total  float64
	}{
		{ws: "2024-01-15", status: StatusUnderTarget, total: 1},
		{ws: "2024-01-08", status: StatusMet, total: 2},
		{ws: "2024-01-01", status: StatusMissing, total: 0},
	}
	if len(summaries) != len(want) {
		t.Fatalf("expected %d summaries, got %d", len(want), len(summaries))
	}
	for i, w := range want {
		got := summaries[i]
		if got.WeekStartDate != w.ws || got.Status != w.status || got.TotalHours != w.total {
			t.Fatalf("summary %d: unexpected %+v", i, got)
		}
	}
	if rows := summaries[1].ByCircle; len(rows) != 2 || rows[0].CircleName != "Garden" {
		t.Fatalf("unexpected circle breakdown: %+v", rows)
	}

	if _, err := svc.UserWeekly(ctx, ana.ID, 0); err == nil {
		t.Fatal("expected error for zero weeks")
	}
	if _, err := svc.UserWeekly(ctx, ana.ID, MaxSummaryWeeks+1); err == nil {
		t.Fatal("expected error for too many weeks")
	}
	if _, err := svc.UserWeekly(ctx, 999, 4); !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("expected ErrUserNotFound, got %v", err)
	}
}

func TestTrackingServiceUserMonthly(t *testing.T) {
	gdb := setupServiceTestDB(t)
	ana := seedMember(t, gdb, "Ana", nil)
	kitchen := seedCircle(t, gdb, "Kitchen", true)
	for _, ws := range []week.Date{"2024-01-01", "2024-01-08", "2024-01-15", "2024-01-22", "2024-01-29"} {
		seedEntry(t, gdb, ana.ID, kitchen.ID, ws, 2, nil)
	}

	svc := NewTrackingService(NewGormRepositories(gdb), fixedCalendar(t), NewClassifier(2))
	ctx := context.Background()

	// 未指定月份时使用当前月份
	summary, err := svc.UserMonthly(ctx, ana.ID, "")
	if err != nil {
		t.Fatalf("UserMonthly returned error: %v", err)
	}
	if summary.Month != "2024-01" || summary.TotalHours != 10 || summary.Status != StatusMet {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if len(summary.WeeklyBreakdown) != 5 {
		t.Fatalf("expected 5 weekly rows, got %d", len(summary.WeeklyBreakdown))
	}

	// 1 月 29 日那周同时属于 2 月
	february, err := svc.UserMonthly(ctx, ana.ID, "2024-02")
	if err != nil {
		t.Fatalf("UserMonthly returned error: %v", err)
	}
	if february.TotalHours != 2 || february.Status != StatusUnderTarget || february.ExpectedHours != 10 {
		t.Fatalf("unexpected february summary: %+v", february)
	}

	var validation *ValidationError
	if _, err := svc.UserMonthly(ctx, ana.ID, "2024/02"); !errors.As(err, &validation) || !errors.Is(err, week.ErrInvalidMonth) {
		t.Fatalf("expected invalid month error, got %v", err)
	}
}
