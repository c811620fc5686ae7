package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hourlog/internal/service"
)

// DashboardCmd 在终端打印后台首页汇总
type DashboardCmd struct{}

func (c *DashboardCmd) Run(ctx *Context) error {
	dashboard, err := service.NewDashboardService(ctx.repositories(), ctx.Calendar, ctx.classifier()).BuildDashboard(context.Background())
	if err != nil {
		return err
	}
	renderDashboard(ctx.Out, dashboard)
	return nil
}

func renderDashboard(w io.Writer, dashboard service.Dashboard) {
	counts := dashboard.StatusCounts
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Week of %s", dashboard.MissingPreviousWeek.WeekStartDate)))
	fmt.Fprintf(w, "%s %d  %s %d  %s %d  %s %d\n",
		statusLabel(service.StatusMissing), counts.Missing,
		statusLabel(service.StatusUnderTarget), counts.UnderTarget,
		statusLabel(service.StatusZeroReason), counts.ZeroReason,
		statusLabel(service.StatusMet), counts.Met,
	)

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Missing last week"))
	fmt.Fprintln(w, userList(dashboard.MissingPreviousWeek.Users))

	fmt.Fprintln(w, titleStyle.Render("Missing two weeks in a row"))
	fmt.Fprintln(w, userList(dashboard.MissingTwoWeeks.Users))

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Circles this month"))
	if len(dashboard.CircleMetrics) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No active circles."))
	} else {
		rows := make([][]string, 0, len(dashboard.CircleMetrics))
		for _, metric := range dashboard.CircleMetrics {
			rows = append(rows, []string{
				metric.CircleName,
				strconv.Itoa(metric.ActiveMemberCount),
				strconv.Itoa(metric.ContributingUsers),
				formatHours(metric.TotalHours),
				formatHours(metric.AvgHoursPerMember),
			})
		}
		fmt.Fprintln(w, table([]string{"CIRCLE", "MEMBERS", "CONTRIBUTING", "HOURS", "AVG"}, rows))
	}

	fmt.Fprintln(w)
	fmt.Fprintln(w, titleStyle.Render("Recent entries"))
	if len(dashboard.RecentEntries) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("No entries yet."))
		return
	}
	rows := make([][]string, 0, len(dashboard.RecentEntries))
	for _, entry := range dashboard.RecentEntries {
		note := entry.Description
		if entry.ZeroHoursReason != nil {
			note = *entry.ZeroHoursReason
		}
		rows = append(rows, []string{
			entry.WeekStartDate.String(),
			entry.UserName,
			entry.CircleName,
			formatHours(entry.Hours),
			truncate(note, 40),
		})
	}
	fmt.Fprintln(w, table([]string{"WEEK", "MEMBER", "CIRCLE", "HOURS", "NOTE"}, rows))
}

func userList(users []service.DashboardUser) string {
	if len(users) == 0 {
		return mutedStyle.Render("  none")
	}
	names := make([]string, 0, len(users))
	for _, user := range users {
		names = append(names, "  "+user.Name+" "+mutedStyle.Render("<"+user.Email+">"))
	}
	return strings.Join(names, "\n")
}

func truncate(s string, max int) string {
	s = strings.Join(strings.Fields(s), " ")
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
