package e2e

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/handler"
	"github.com/hourlog/internal/notify"
	"github.com/hourlog/internal/router"
	"github.com/hourlog/internal/service"
	"github.com/hourlog/internal/week"
)

const (
	e2eAdminEmail    = "admin@example.test"
	e2eAdminPassword = "e2e-secret"
	e2eBotToken      = "123:e2e-token"
)

type e2eSuite struct {
	handler  http.Handler
	public   httpClient
	admin    httpClient
	baseURL  string
	gdb      *gorm.DB
	telegram *fakeTelegram
	members  map[string]db.User
	circle   db.Circle
}

type httpClient interface {
	Do(req *http.Request) (*http.Response, error)
}

type localClient struct {
	handler http.Handler
	jar     http.CookieJar
}

func newLocalClient(handler http.Handler, withJar bool) *localClient {
	var jar http.CookieJar
	if withJar {
		if j, err := cookiejar.New(nil); err == nil {
			jar = j
		}
	}
	return &localClient{handler: handler, jar: jar}
}

func (c *localClient) Do(req *http.Request) (*http.Response, error) {
	if c.jar != nil {
		for _, cookie := range c.jar.Cookies(req.URL) {
			req.AddCookie(cookie)
		}
	}
	w := httptest.NewRecorder()
	c.handler.ServeHTTP(w, req)
	resp := w.Result()
	if c.jar != nil {
		c.jar.SetCookies(req.URL, resp.Cookies())
	}
	return resp, nil
}

// fakeTelegram 记录 sendMessage 请求，failChat 中的 chat_id 返回 ok=false
type fakeTelegram struct {
	mu       sync.Mutex
	server   *httptest.Server
	messages []map[string]any
	failChat map[string]bool
}

func newFakeTelegram(t *testing.T) *fakeTelegram {
	t.Helper()
	fake := &fakeTelegram{failChat: map[string]bool{}}
	fake.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/bot"+e2eBotToken+"/sendMessage" {
			http.NotFound(w, r)
			return
		}
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		chatID, _ := payload["chat_id"].(string)

		fake.mu.Lock()
		defer fake.mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		if fake.failChat[chatID] {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"ok":false,"description":"Bad Request: chat not found"}`))
			return
		}
		fake.messages = append(fake.messages, payload)
		_, _ = w.Write([]byte(`{"ok":true,"result":{}}`))
	}))
	t.Cleanup(fake.server.Close)
	return fake
}

func (f *fakeTelegram) sentTo() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	chats := make([]string, 0, len(f.messages))
	for _, msg := range f.messages {
		chats = append(chats, msg["chat_id"].(string))
	}
	return chats
}

func (f *fakeTelegram) setFailing(chatID string, failing bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failChat[chatID] = failing
}

func TestE2E_ReminderFlow(t *testing.T) {
	suite := newE2ESuite(t)

	t.Run("public endpoints", suite.testPublicEndpoints)
	suite.login(t)
	t.Run("entries", suite.testEntries)
	t.Run("summaries", suite.testSummaries)
	t.Run("dashboard", suite.testDashboard)
	t.Run("reminders", suite.testReminders)
}

func newE2ESuite(t *testing.T) *e2eSuite {
	t.Helper()
	gin.SetMode(gin.TestMode)

	dsn := fmt.Sprintf("file:e2e-%d?mode=memory&cache=shared", time.Now().UnixNano())
	gdb, err := db.Open(dsn, logger.Silent)
	if err != nil {
		t.Fatalf("failed to open database: %v", err)
	}
	t.Cleanup(func() {
		if sqlDB, err := gdb.DB(); err == nil {
			sqlDB.Close()
		}
	})

	if err := db.EnsureAdmin(gdb, e2eAdminEmail, e2eAdminPassword, "Admin"); err != nil {
		t.Fatalf("failed to seed admin: %v", err)
	}

	circle := db.Circle{Name: "Food Bank", IsActive: true}
	if err := gdb.Create(&circle).Error; err != nil {
		t.Fatalf("failed to seed circle: %v", err)
	}

	members := map[string]db.User{}
	for _, name := range []string{"ana", "bea", "cai"} {
		handle := "chat-" + name
		user := db.User{Name: strings.ToUpper(name[:1]) + name[1:], Email: name + "@example.test", ChatHandle: &handle, IsActive: true, Role: db.RoleMember}
		if err := gdb.Create(&user).Error; err != nil {
			t.Fatalf("failed to seed member %s: %v", name, err)
		}
		membership := db.CircleMembership{UserID: user.ID, CircleID: circle.ID, IsActive: true, TrackingStartDate: week.Date("2023-11-06")}
		if err := gdb.Create(&membership).Error; err != nil {
			t.Fatalf("failed to seed membership: %v", err)
		}
		members[name] = user
	}

	loc, err := time.LoadLocation(week.DefaultTimezone)
	if err != nil {
		t.Fatalf("failed to load timezone: %v", err)
	}
	now := time.Date(2024, 1, 17, 9, 30, 0, 0, loc)
	calendar := week.NewCalendar(loc, func() time.Time { return now })

	telegram := newFakeTelegram(t)
	sender := notify.NewTelegramSender(e2eBotToken)
	sender.SetBaseURL(telegram.server.URL)

	baseURL := "http://example.test"
	repos := service.NewGormRepositories(gdb)
	api := handler.NewAPIWithRepositories(repos, handler.Options{
		Calendar:     calendar,
		WeeklyTarget: 2,
		Sender:       sender,
		Links:        service.NewTokenLinkIssuer(repos.Tokens, baseURL, calendar),
	})
	engine := router.SetupRouter(api, "test-session-secret")

	return &e2eSuite{
		handler:  engine,
		public:   newLocalClient(engine, false),
		admin:    newLocalClient(engine, true),
		baseURL:  baseURL,
		gdb:      gdb,
		telegram: telegram,
		members:  members,
		circle:   circle,
	}
}

func (s *e2eSuite) login(t *testing.T) {
	t.Helper()
	body := fmt.Sprintf(`{"email":%q,"password":%q}`, e2eAdminEmail, e2eAdminPassword)
	resp := s.request(t, s.admin, http.MethodPost, "/admin/login", body)
	expectStatus(t, resp, http.StatusOK)
}

func (s *e2eSuite) request(t *testing.T, client httpClient, method, path, body string) *http.Response {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = bytes.NewBufferString(body)
	}
	req, err := http.NewRequest(method, s.baseURL+path, reader)
	if err != nil {
		t.Fatalf("failed to build request: %v", err)
	}
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := client.Do(req)
	if err != nil {
		t.Fatalf("request %s %s failed: %v", method, path, err)
	}
	return resp
}

func (s *e2eSuite) getJSON(t *testing.T, path string) map[string]any {
	t.Helper()
	resp := s.request(t, s.admin, http.MethodGet, path, "")
	expectStatus(t, resp, http.StatusOK)
	return decodeJSON(t, resp)
}

func (s *e2eSuite) testPublicEndpoints(t *testing.T) {
	resp := s.request(t, s.public, http.MethodGet, "/ping", "")
	expectStatus(t, resp, http.StatusOK)

	resp = s.request(t, s.public, http.MethodGet, "/api/dashboard", "")
	expectStatus(t, resp, http.StatusUnauthorized)

	resp = s.request(t, s.public, http.MethodPost, "/admin/login", `{"email":"admin@example.test","password":"nope"}`)
	expectStatus(t, resp, http.StatusUnauthorized)
}

func (s *e2eSuite) createEntry(t *testing.T, member string, ws string, hours float64, reason string) *http.Response {
	t.Helper()
	body := fmt.Sprintf(`{"userId":%d,"circleId":%d,"weekStartDate":%q,"hours":%v,"zeroHoursReason":%q,"description":"sorting **donations**"}`,
		s.members[member].ID, s.circle.ID, ws, hours, reason)
	return s.request(t, s.admin, http.MethodPost, "/api/entries", body)
}

func (s *e2eSuite) testEntries(t *testing.T) {
	// Cai 上周达标，Bea 只记了一小时，Ana 没有记录
	expectStatus(t, s.createEntry(t, "cai", "2024-01-08", 2.5, ""), http.StatusCreated)
	expectStatus(t, s.createEntry(t, "bea", "2024-01-08", 1, ""), http.StatusCreated)

	// 未来周不允许录入
	expectStatus(t, s.createEntry(t, "ana", "2024-01-22", 1, ""), http.StatusBadRequest)

	// 录错后作废，作废记录不计入统计
	resp := s.createEntry(t, "ana", "2024-01-08", 4, "")
	expectStatus(t, resp, http.StatusCreated)
	entry := decodeJSON(t, resp)
	voidPath := fmt.Sprintf("/api/entries/%v/void", entry["id"])

	resp = s.request(t, s.admin, http.MethodPost, voidPath, `{"reason":"wrong member"}`)
	expectStatus(t, resp, http.StatusOK)
	resp = s.request(t, s.admin, http.MethodPost, voidPath, `{"reason":"again"}`)
	expectStatus(t, resp, http.StatusConflict)
}

func (s *e2eSuite) testSummaries(t *testing.T) {
	weekly := s.getJSON(t, fmt.Sprintf("/api/users/%d/weekly?weeks=2", s.members["bea"].ID))
	weeks := weekly["weeks"].([]any)
	if len(weeks) != 2 {
		t.Fatalf("expected 2 weeks, got %d", len(weeks))
	}
	previous := weeks[1].(map[string]any)
	if previous["status"] != "UNDER_TARGET" || previous["totalHours"] != float64(1) {
		t.Fatalf("unexpected previous week for bea: %v", previous)
	}

	monthly := s.getJSON(t, fmt.Sprintf("/api/users/%d/monthly?month=2024-01", s.members["ana"].ID))
	if monthly["totalHours"] != float64(0) || monthly["status"] != "UNDER_TARGET" {
		t.Fatalf("voided entry should not count: %v", monthly)
	}
}

func (s *e2eSuite) testDashboard(t *testing.T) {
	dashboard := s.getJSON(t, "/api/dashboard")

	counts := dashboard["statusCounts"].(map[string]any)
	if counts["missing"] != float64(1) || counts["underTarget"] != float64(1) || counts["met"] != float64(1) {
		t.Fatalf("unexpected status counts: %v", counts)
	}

	recent := dashboard["recentEntries"].([]any)
	if len(recent) != 2 {
		t.Fatalf("expected 2 live recent entries, got %d", len(recent))
	}
	html, _ := recent[0].(map[string]any)["descriptionHtml"].(string)
	if !strings.Contains(html, "<strong>donations</strong>") {
		t.Fatalf("expected rendered markdown, got %q", html)
	}

	metrics := dashboard["circleMetrics"].([]any)
	if len(metrics) != 1 {
		t.Fatalf("expected 1 circle metric, got %d", len(metrics))
	}
	metric := metrics[0].(map[string]any)
	if metric["totalHours"] != 3.5 || metric["contributingUsers"] != float64(2) || metric["activeMemberCount"] != float64(3) {
		t.Fatalf("unexpected circle metric: %v", metric)
	}
}

func (s *e2eSuite) testReminders(t *testing.T) {
	report := s.getJSON(t, "/api/reminders")
	if report["weekStartDate"] != "2024-01-08" {
		t.Fatalf("expected previous week, got %v", report["weekStartDate"])
	}
	runID := report["runId"]
	if targets := report["targets"].([]any); len(targets) != 2 {
		t.Fatalf("expected ana and bea as targets, got %v", targets)
	}

	// 重复查询返回同一个批次
	again := s.getJSON(t, "/api/reminders?weekStart=2024-01-08")
	if again["runId"] != runID {
		t.Fatalf("expected same run %v, got %v", runID, again["runId"])
	}

	// Bea 的聊天账号暂时不可达
	s.telegram.setFailing("chat-bea", true)
	resp := s.request(t, s.admin, http.MethodPost, "/api/reminders/run", "")
	expectStatus(t, resp, http.StatusOK)
	delivery := decodeJSON(t, resp)["delivery"].(map[string]any)
	if delivery["sent"] != float64(1) || delivery["failed"] != float64(1) {
		t.Fatalf("unexpected first delivery: %v", delivery)
	}
	if got := s.telegram.sentTo(); len(got) != 1 || got[0] != "chat-ana" {
		t.Fatalf("expected only ana to be messaged, got %v", got)
	}

	// 重试只补发失败的成员，Ana 处于冷却期
	s.telegram.setFailing("chat-bea", false)
	resp = s.request(t, s.admin, http.MethodPost, "/api/reminders/run?weekStart=2024-01-08", "")
	expectStatus(t, resp, http.StatusOK)
	delivery = decodeJSON(t, resp)["delivery"].(map[string]any)
	if delivery["sent"] != float64(1) || delivery["skipped"] != float64(1) || delivery["failed"] != float64(0) {
		t.Fatalf("unexpected retry delivery: %v", delivery)
	}
	if got := s.telegram.sentTo(); len(got) != 2 || got[1] != "chat-bea" {
		t.Fatalf("expected bea on retry, got %v", got)
	}

	s.telegram.mu.Lock()
	text, _ := s.telegram.messages[0]["text"].(string)
	s.telegram.mu.Unlock()
	if !strings.Contains(text, s.baseURL+"/auth/magic?token=") {
		t.Fatalf("expected magic login link in message, got %q", text)
	}

	runs := s.getJSON(t, "/api/reminders/runs?weekStart=2024-01-08")["runs"].([]any)
	if len(runs) != 1 {
		t.Fatalf("expected a single completed run, got %v", runs)
	}
}

func expectStatus(t *testing.T, resp *http.Response, want int) {
	t.Helper()
	if resp.StatusCode != want {
		body, _ := io.ReadAll(resp.Body)
		resp.Body.Close()
		t.Fatalf("expected status %d, got %d (%s)", want, resp.StatusCode, string(body))
	}
}

func decodeJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var payload map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	return payload
}
