package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hourlog/internal/db"
)

// Tokens 存取一次性登录凭证
type Tokens struct {
	db *gorm.DB
}

// NewTokens 构造 Tokens
func NewTokens(gdb *gorm.DB) *Tokens {
	return &Tokens{db: gdb}
}

// Create 新建凭证
func (r *Tokens) Create(ctx context.Context, token *db.LoginToken) error {
	if err := r.db.WithContext(ctx).Create(token).Error; err != nil {
		return fmt.Errorf("create login token: %w", err)
	}
	return nil
}
