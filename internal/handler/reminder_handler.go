package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/service"
)

type reminderTargetResponse struct {
	UserID             uint       `json:"userId"`
	Name               string     `json:"name"`
	Email              string     `json:"email"`
	PhoneNumber        string     `json:"phoneNumber,omitempty"`
	ChatHandle         *string    `json:"chatHandle"`
	LastReminderSentAt *time.Time `json:"lastReminderSentAt"`
	WeeklyStatus       string     `json:"weeklyStatus"`
	TotalHours         float64    `json:"totalHours"`
}

type reminderReportResponse struct {
	WeekStartDate string                   `json:"weekStartDate"`
	GeneratedAt   time.Time                `json:"generatedAt"`
	RunID         uint                     `json:"runId"`
	Targets       []reminderTargetResponse `json:"targets"`
	Summary       gin.H                    `json:"summary"`
}

func newReminderReportResponse(report service.ReminderReport) reminderReportResponse {
	targets := make([]reminderTargetResponse, 0, len(report.Targets))
	for _, target := range report.Targets {
		targets = append(targets, reminderTargetResponse{
			UserID:             target.UserID,
			Name:               target.Name,
			Email:              target.Email,
			PhoneNumber:        target.PhoneNumber,
			ChatHandle:         target.ChatHandle,
			LastReminderSentAt: target.LastReminderSentAt,
			WeeklyStatus:       string(target.WeeklyStatus),
			TotalHours:         target.TotalHours,
		})
	}
	return reminderReportResponse{
		WeekStartDate: report.WeekStartDate.String(),
		GeneratedAt:   report.GeneratedAt,
		RunID:         report.RunID,
		Targets:       targets,
		Summary: gin.H{
			"missing":     report.Summary.Missing,
			"underTarget": report.Summary.UnderTarget,
			"total":       report.Summary.Total,
		},
	}
}

func newDeliveryResponse(delivery service.DeliveryReport) gin.H {
	results := make([]gin.H, 0, len(delivery.Results))
	for _, result := range delivery.Results {
		item := gin.H{
			"userId":  result.UserID,
			"name":    result.Name,
			"sent":    result.Sent,
			"skipped": result.Skipped,
		}
		if result.SkipReason != "" {
			item["skipReason"] = result.SkipReason
		}
		if result.Error != "" {
			item["error"] = result.Error
		}
		results = append(results, item)
	}
	return gin.H{
		"weekStartDate": delivery.WeekStartDate.String(),
		"cutoff":        delivery.Cutoff,
		"sent":          delivery.Sent,
		"skipped":       delivery.Skipped,
		"failed":        delivery.Failed,
		"results":       results,
	}
}

func newRunResponse(run db.ReminderRun) gin.H {
	item := gin.H{
		"id":            run.ID,
		"weekStartDate": run.WeekStartDate.String(),
		"runAt":         run.RunAt,
		"status":        run.Status,
		"totalTargets":  run.TotalTargets,
	}
	if run.FailureReason != nil {
		item["failureReason"] = *run.FailureReason
	}
	return item
}

// GetReminders 返回某周（默认上一周）的提醒目标
func (a *API) GetReminders(c *gin.Context) {
	weekStart, err := parseWeekStartQuery(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := a.reminders.GetReminderTargets(c.Request.Context(), weekStart)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, newReminderReportResponse(report))
}

// RunReminders 手动触发一次提醒：取得批次后按冷却规则发送
func (a *API) RunReminders(c *gin.Context) {
	weekStart, err := parseWeekStartQuery(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	report, delivery, err := a.reminders.RunWeekly(c.Request.Context(), weekStart)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"report":   newReminderReportResponse(report),
		"delivery": newDeliveryResponse(delivery),
	})
}

// ListReminderRuns 返回某周的全部批次，包括失败批次
func (a *API) ListReminderRuns(c *gin.Context) {
	weekStart, err := parseWeekStartQuery(c)
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	runs, err := a.reminders.ListRuns(c.Request.Context(), weekStart)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}

	items := make([]gin.H, 0, len(runs))
	for _, run := range runs {
		items = append(items, newRunResponse(run))
	}
	c.JSON(http.StatusOK, gin.H{"runs": items})
}
