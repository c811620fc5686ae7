package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/hourlog/internal/repository"
	"github.com/hourlog/internal/service"
	"github.com/hourlog/internal/week"
)

func respondError(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}

func bindJSON(c *gin.Context, dst interface{}, message string) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, message)
		return false
	}
	return true
}

func parseUintParam(c *gin.Context, key string) (uint, error) {
	raw := c.Param(key)
	id, err := strconv.ParseUint(raw, 10, 32)
	if err != nil || id == 0 {
		return 0, fmt.Errorf("invalid %s", key)
	}
	return uint(id), nil
}

// parseWeekStartQuery 读取可选的 weekStart 参数；为空时返回 nil 交给服务层回退到上一周
func parseWeekStartQuery(c *gin.Context) (*week.Date, error) {
	raw := strings.TrimSpace(c.Query("weekStart"))
	if raw == "" {
		return nil, nil
	}
	ws, err := week.ParseWeekStart(raw)
	if err != nil {
		return nil, err
	}
	return &ws, nil
}

// respondServiceError 把服务层错误映射为 HTTP 状态码，未知错误只记录日志不暴露细节
func (a *API) respondServiceError(c *gin.Context, err error) {
	var validation *service.ValidationError
	switch {
	case errors.As(err, &validation):
		respondError(c, http.StatusBadRequest, validation.Error())
	case errors.Is(err, week.ErrNotMonday), errors.Is(err, week.ErrInvalidDate), errors.Is(err, week.ErrInvalidMonth):
		respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrUserNotFound), errors.Is(err, service.ErrCircleNotFound), errors.Is(err, service.ErrEntryNotFound):
		respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrEntryAlreadyVoided), errors.Is(err, repository.ErrRunAlreadyCompleted):
		respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrSenderNotConfigured):
		respondError(c, http.StatusServiceUnavailable, err.Error())
	default:
		a.logger.Error("request failed", "method", c.Request.Method, "path", c.FullPath(), "err", err)
		respondError(c, http.StatusInternalServerError, "internal error")
	}
}
