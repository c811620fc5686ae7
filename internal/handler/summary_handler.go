package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hourlog/internal/service"
)

const defaultSummaryWeeks = 4

func circleRows(rows []service.CircleHours) []gin.H {
	items := make([]gin.H, 0, len(rows))
	for _, row := range rows {
		items = append(items, gin.H{
			"circleId":   row.CircleID,
			"circleName": row.CircleName,
			"hours":      row.Hours,
		})
	}
	return items
}

func weekSummaryResponse(summary service.WeekSummary) gin.H {
	return gin.H{
		"weekStartDate": summary.WeekStartDate.String(),
		"weekEndDate":   summary.WeekEndDate.String(),
		"totalHours":    summary.TotalHours,
		"entryCount":    summary.EntryCount,
		"status":        string(summary.Status),
		"byCircle":      circleRows(summary.ByCircle),
	}
}

// GetUserWeekly 返回成员最近 N 周（默认 4 周）的汇总
func (a *API) GetUserWeekly(c *gin.Context) {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	weeks := defaultSummaryWeeks
	if raw := strings.TrimSpace(c.Query("weeks")); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil {
			respondError(c, http.StatusBadRequest, "invalid weeks")
			return
		}
		weeks = parsed
	}

	summaries, err := a.tracking.UserWeekly(c.Request.Context(), userID, weeks)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(summaries))
	for _, summary := range summaries {
		items = append(items, weekSummaryResponse(summary))
	}
	c.JSON(http.StatusOK, gin.H{"userId": userID, "weeks": items})
}

// GetUserMonthly 返回成员某月（默认当月）的汇总
func (a *API) GetUserMonthly(c *gin.Context) {
	userID, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	summary, err := a.tracking.UserMonthly(c.Request.Context(), userID, strings.TrimSpace(c.Query("month")))
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	breakdown := make([]gin.H, 0, len(summary.WeeklyBreakdown))
	for _, ws := range summary.WeeklyBreakdown {
		breakdown = append(breakdown, weekSummaryResponse(ws))
	}

	c.JSON(http.StatusOK, gin.H{
		"userId":          userID,
		"month":           summary.Month,
		"totalHours":      summary.TotalHours,
		"weeklyTarget":    summary.WeeklyTarget,
		"weeksInMonth":    summary.WeeksInMonth,
		"expectedHours":   summary.ExpectedHours,
		"status":          string(summary.Status),
		"byCircle":        circleRows(summary.ByCircle),
		"weeklyBreakdown": breakdown,
	})
}
