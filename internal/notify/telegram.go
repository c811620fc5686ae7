package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"text/template"
	"time"
)

const defaultTelegramAPIBase = "https://api.telegram.org"

// ErrMissingBotToken 在未配置机器人凭证时返回
var ErrMissingBotToken = errors.New("telegram bot token missing")

var defaultReminderTemplate = template.Must(template.New("reminder").Parse(
	"Hi {{.Name}}, your hours for last week are not logged yet.\n" +
		"Log them here: {{.LoginURL}}"))

type httpDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type sendMessageResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
}

// TelegramSender 通过 Bot API 的 sendMessage 发送提醒
type TelegramSender struct {
	token    string
	baseURL  string
	http     httpDoer
	template *template.Template
}

// NewTelegramSender 构造 TelegramSender
func NewTelegramSender(token string) *TelegramSender {
	return &TelegramSender{
		token:    strings.TrimSpace(token),
		baseURL:  defaultTelegramAPIBase,
		http:     &http.Client{Timeout: 15 * time.Second},
		template: defaultReminderTemplate,
	}
}

// SetHTTPClient 替换底层 HTTP 客户端，nil 时恢复默认
func (s *TelegramSender) SetHTTPClient(client httpDoer) {
	if client == nil {
		s.http = &http.Client{Timeout: 15 * time.Second}
		return
	}
	s.http = client
}

// SetBaseURL 指定 API 地址，便于走代理或测试
func (s *TelegramSender) SetBaseURL(base string) {
	trimmed := strings.TrimRight(strings.TrimSpace(base), "/")
	if trimmed == "" {
		trimmed = defaultTelegramAPIBase
	}
	s.baseURL = trimmed
}

// SetTemplate 替换消息模板，模板可使用 .Name 与 .LoginURL
func (s *TelegramSender) SetTemplate(tmpl *template.Template) {
	if tmpl == nil {
		tmpl = defaultReminderTemplate
	}
	s.template = tmpl
}

// Send 发送一条提醒消息
func (s *TelegramSender) Send(ctx context.Context, chatHandle, userName, loginURL string) error {
	if s.token == "" {
		return ErrMissingBotToken
	}
	chatID := strings.TrimSpace(chatHandle)
	if chatID == "" {
		return errors.New("chat handle is empty")
	}

	var text bytes.Buffer
	if err := s.template.Execute(&text, struct {
		Name     string
		LoginURL string
	}{Name: userName, LoginURL: loginURL}); err != nil {
		return fmt.Errorf("render reminder: %w", err)
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  text.String(),
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("encode telegram request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/bot%s/sendMessage", s.baseURL, s.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", "hourlog-reminder/1.0")

	client := s.http
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		// url.Error 会带上含 token 的地址，不能写进日志
		var urlErr *url.Error
		if errors.As(err, &urlErr) {
			err = urlErr.Err
		}
		return fmt.Errorf("call telegram: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 1<<16))
	if err != nil {
		return fmt.Errorf("read telegram response: %w", err)
	}

	var decoded sendMessageResponse
	_ = json.Unmarshal(respBody, &decoded)

	if resp.StatusCode >= http.StatusBadRequest || !decoded.OK {
		msg := strings.TrimSpace(decoded.Description)
		if msg == "" {
			msg = resp.Status
		}
		return fmt.Errorf("telegram returned error: %s", msg)
	}
	return nil
}
