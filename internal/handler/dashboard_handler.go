package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hourlog/internal/service"
)

func dashboardUsers(users []service.DashboardUser) []gin.H {
	items := make([]gin.H, 0, len(users))
	for _, user := range users {
		items = append(items, gin.H{
			"userId":     user.UserID,
			"name":       user.Name,
			"email":      user.Email,
			"status":     string(user.Status),
			"totalHours": user.TotalHours,
		})
	}
	return items
}

// GetDashboard 返回后台首页汇总
func (a *API) GetDashboard(c *gin.Context) {
	dashboard, err := a.dashboard.BuildDashboard(c.Request.Context())
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	recent := make([]gin.H, 0, len(dashboard.RecentEntries))
	for _, entry := range dashboard.RecentEntries {
		recent = append(recent, gin.H{
			"id":              entry.ID,
			"userId":          entry.UserID,
			"userName":        entry.UserName,
			"circleId":        entry.CircleID,
			"circleName":      entry.CircleName,
			"weekStartDate":   entry.WeekStartDate.String(),
			"hours":           entry.Hours,
			"description":     entry.Description,
			"descriptionHtml": entry.DescriptionHTML,
			"zeroHoursReason": entry.ZeroHoursReason,
			"createdAt":       entry.CreatedAt,
		})
	}

	weeks := make([]string, 0, len(dashboard.MissingTwoWeeks.WeekStartDates))
	for _, ws := range dashboard.MissingTwoWeeks.WeekStartDates {
		weeks = append(weeks, ws.String())
	}

	metrics := make([]gin.H, 0, len(dashboard.CircleMetrics))
	for _, metric := range dashboard.CircleMetrics {
		metrics = append(metrics, gin.H{
			"circleId":          metric.CircleID,
			"circleName":        metric.CircleName,
			"activeMemberCount": metric.ActiveMemberCount,
			"totalHours":        metric.TotalHours,
			"contributingUsers": metric.ContributingUsers,
			"avgHoursPerMember": metric.AvgHoursPerMember,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"recentEntries": recent,
		"missingPreviousWeek": gin.H{
			"weekStartDate": dashboard.MissingPreviousWeek.WeekStartDate.String(),
			"users":         dashboardUsers(dashboard.MissingPreviousWeek.Users),
		},
		"missingTwoWeeks": gin.H{
			"weekStartDates": weeks,
			"users":          dashboardUsers(dashboard.MissingTwoWeeks.Users),
		},
		"statusCounts": gin.H{
			"missing":     dashboard.StatusCounts.Missing,
			"underTarget": dashboard.StatusCounts.UnderTarget,
			"zeroReason":  dashboard.StatusCounts.ZeroReason,
			"met":         dashboard.StatusCounts.Met,
		},
		"circleMetrics": metrics,
	})
}
