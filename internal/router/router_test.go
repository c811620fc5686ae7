package router

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm/logger"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/handler"
)

func setupTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:router-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})
	if err := db.EnsureAdmin(gdb, "root@example.com", "root-pass", "Root"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	return SetupRouter(handler.NewAPI(gdb, handler.Options{}), "test-secret")
}

func TestPing(t *testing.T) {
	r := setupTestRouter(t)

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ping", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "pong") {
		t.Fatalf("unexpected body %q", rr.Body.String())
	}
}

func TestAPIRoutesRequireSession(t *testing.T) {
	r := setupTestRouter(t)

	routes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/api/reminders"},
		{http.MethodPost, "/api/reminders/run"},
		{http.MethodGet, "/api/reminders/runs"},
		{http.MethodGet, "/api/dashboard"},
		{http.MethodGet, "/api/users/1/weekly"},
		{http.MethodGet, "/api/users/1/monthly"},
		{http.MethodPost, "/api/entries"},
		{http.MethodPost, "/api/entries/1/void"},
	}

	for _, route := range routes {
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, httptest.NewRequest(route.method, route.path, nil))
		if rr.Code != http.StatusUnauthorized {
			t.Fatalf("%s %s: expected status %d, got %d", route.method, route.path, http.StatusUnauthorized, rr.Code)
		}
	}
}

func TestLoginSetsSessionCookie(t *testing.T) {
	r := setupTestRouter(t)

	req := httptest.NewRequest(http.MethodPost, "/admin/login", strings.NewReader(`{"email":" ROOT@example.com ","password":"root-pass"}`))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d (%s)", http.StatusOK, rr.Code, rr.Body.String())
	}

	var session *http.Cookie
	for _, c := range rr.Result().Cookies() {
		if c.Name == SessionName {
			session = c
		}
	}
	if session == nil {
		t.Fatal("expected session cookie to be set")
	}

	req = httptest.NewRequest(http.MethodGet, "/api/reminders/runs", nil)
	req.AddCookie(session)
	rr = httptest.NewRecorder()
	r.ServeHTTP(rr, req)
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d with session, got %d (%s)", http.StatusOK, rr.Code, rr.Body.String())
	}
}
