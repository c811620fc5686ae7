package service

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/week"
)

const defaultLoginTokenTTL = 72 * time.Hour

// LinkIssuer 为成员生成提醒消息里的登录链接
type LinkIssuer interface {
	LoginURL(ctx context.Context, userID uint) (string, error)
}

// TokenLinkIssuer 把 uuid 凭证写入 login_tokens 并拼出 <base>/auth/magic?token=...
type TokenLinkIssuer struct {
	tokens   TokenRepository
	baseURL  string
	ttl      time.Duration
	calendar *week.Calendar
}

// NewTokenLinkIssuer 构造 TokenLinkIssuer
func NewTokenLinkIssuer(tokens TokenRepository, baseURL string, calendar *week.Calendar) *TokenLinkIssuer {
	return &TokenLinkIssuer{
		tokens:   tokens,
		baseURL:  strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		ttl:      defaultLoginTokenTTL,
		calendar: calendar,
	}
}

// WithTTL 调整凭证有效期
func (i *TokenLinkIssuer) WithTTL(ttl time.Duration) *TokenLinkIssuer {
	if ttl <= 0 {
		return i
	}
	i.ttl = ttl
	return i
}

// LoginURL 生成一次性登录链接
func (i *TokenLinkIssuer) LoginURL(ctx context.Context, userID uint) (string, error) {
	token := db.LoginToken{
		Token:     uuid.NewString(),
		UserID:    userID,
		ExpiresAt: i.calendar.Now().Add(i.ttl),
	}
	if err := i.tokens.Create(ctx, &token); err != nil {
		return "", fmt.Errorf("issue login token: %w", err)
	}

	query := url.Values{}
	query.Set("token", token.Token)
	return fmt.Sprintf("%s/auth/magic?%s", i.baseURL, query.Encode()), nil
}
