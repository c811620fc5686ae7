package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/service"
)

type entryRequest struct {
	UserID          uint     `json:"userId"`
	CircleID        uint     `json:"circleId"`
	WeekStartDate   string   `json:"weekStartDate"`
	Hours           *float64 `json:"hours"`
	Description     string   `json:"description"`
	ZeroHoursReason string   `json:"zeroHoursReason"`
}

type voidRequest struct {
	Reason string `json:"reason"`
}

func entryResponse(entry *db.WeeklyEntry) gin.H {
	return gin.H{
		"id":              entry.ID,
		"userId":          entry.UserID,
		"circleId":        entry.CircleID,
		"weekStartDate":   entry.WeekStartDate.String(),
		"hours":           entry.Hours,
		"description":     entry.Description,
		"zeroHoursReason": entry.ZeroHoursReason,
		"createdAt":       entry.CreatedAt,
		"voidedAt":        entry.VoidedAt,
		"voidedBy":        entry.VoidedBy,
		"voidReason":      entry.VoidReason,
	}
}

// CreateEntry 登记一条周时长记录
func (a *API) CreateEntry(c *gin.Context) {
	var req entryRequest
	if !bindJSON(c, &req, "invalid entry payload") {
		return
	}
	if req.Hours == nil {
		respondError(c, http.StatusBadRequest, "hours is required")
		return
	}

	entry, err := a.entries.Create(c.Request.Context(), service.EntryInput{
		UserID:          req.UserID,
		CircleID:        req.CircleID,
		WeekStartDate:   req.WeekStartDate,
		Hours:           *req.Hours,
		Description:     req.Description,
		ZeroHoursReason: req.ZeroHoursReason,
	})
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusCreated, entryResponse(entry))
}

// VoidEntry 作废记录，记录操作人
func (a *API) VoidEntry(c *gin.Context) {
	id, err := parseUintParam(c, "id")
	if err != nil {
		respondError(c, http.StatusBadRequest, err.Error())
		return
	}

	var req voidRequest
	if !bindJSON(c, &req, "invalid void payload") {
		return
	}

	entry, err := a.entries.Void(c.Request.Context(), id, currentAdminID(c), req.Reason)
	if err != nil {
		a.respondServiceError(c, err)
		return
	}
	c.JSON(http.StatusOK, entryResponse(entry))
}
