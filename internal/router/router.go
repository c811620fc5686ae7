package router

import (
	"net/http"
	"strings"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"

	"github.com/hourlog/internal/handler"
)

// SessionName 是后台会话 cookie 的名称
const SessionName = "hourlog_session"

const defaultSessionSecret = "hourlog-dev-secret"

// SetupRouter 配置 Gin 引擎和路由
func SetupRouter(api *handler.API, sessionSecret string) *gin.Engine {
	r := gin.Default()

	secret := strings.TrimSpace(sessionSecret)
	if secret == "" {
		secret = defaultSessionSecret
	}

	// 配置会话中间件
	store := cookie.NewStore([]byte(secret))
	store.Options(sessions.Options{
		Path:     "/",
		MaxAge:   7 * 24 * 60 * 60,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
	r.Use(sessions.Sessions(SessionName, store))

	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "pong",
		})
	})

	// 后台登录
	admin := r.Group("/admin")
	{
		admin.POST("/login", api.Login)
		admin.GET("/logout", api.Logout)
	}

	// 需要认证的 JSON 接口
	auth := r.Group("/api")
	auth.Use(handler.AuthRequired())
	{
		auth.GET("/reminders", api.GetReminders)
		auth.POST("/reminders/run", api.RunReminders)
		auth.GET("/reminders/runs", api.ListReminderRuns)

		auth.GET("/dashboard", api.GetDashboard)

		auth.GET("/users/:id/weekly", api.GetUserWeekly)
		auth.GET("/users/:id/monthly", api.GetUserMonthly)

		auth.POST("/entries", api.CreateEntry)
		auth.POST("/entries/:id/void", api.VoidEntry)
	}

	return r
}
