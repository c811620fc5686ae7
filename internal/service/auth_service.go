package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/repository"
)

// ErrInvalidCredentials 在邮箱或密码不匹配时返回，不区分具体原因
var ErrInvalidCredentials = errors.New("invalid email or password")

// AuthService 校验后台管理员登录
type AuthService struct {
	users UserRepository
}

// NewAuthService 构造 AuthService
func NewAuthService(repos Repositories) *AuthService {
	return &AuthService{users: repos.Users}
}

// Authenticate 校验邮箱与密码，只有启用的管理员可以登录
func (s *AuthService) Authenticate(ctx context.Context, email, password string) (*db.User, error) {
	normalized := strings.ToLower(strings.TrimSpace(email))
	if normalized == "" || password == "" {
		return nil, ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, normalized)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("load admin: %w", err)
	}
	if !user.IsActive || !user.IsAdmin() || user.PasswordHash == "" {
		return nil, ErrInvalidCredentials
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}
	return user, nil
}
