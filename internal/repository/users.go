package repository

import (
	"context"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/hourlog/internal/db"
)

// Users 基于 gorm 的成员读取与提醒记账
type Users struct {
	db *gorm.DB
}

// NewUsers 构造 Users
func NewUsers(gdb *gorm.DB) *Users {
	return &Users{db: gdb}
}

// ListParticipants 返回所有参与统计的成员：启用且非管理员，按 ID 升序
func (r *Users) ListParticipants(ctx context.Context) ([]db.User, error) {
	var users []db.User
	if err := r.db.WithContext(ctx).
		Where("is_active = ? AND role <> ?", true, db.RoleAdmin).
		Order("id ASC").
		Find(&users).Error; err != nil {
		return nil, fmt.Errorf("list participants: %w", err)
	}
	return users, nil
}

// FindByIDs 按 ID 批量读取成员，不存在的 ID 被忽略
func (r *Users) FindByIDs(ctx context.Context, ids []uint) ([]db.User, error) {
	if len(ids) == 0 {
		return []db.User{}, nil
	}
	var users []db.User
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&users).Error; err != nil {
		return nil, fmt.Errorf("find users: %w", err)
	}
	return users, nil
}

// Get 根据 ID 获取成员
func (r *Users) Get(ctx context.Context, id uint) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).First(&user, id).Error; err != nil {
		return nil, fmt.Errorf("get user %d: %w", id, translateNotFound(err))
	}
	return &user, nil
}

// FindByEmail 根据邮箱获取成员
func (r *Users) FindByEmail(ctx context.Context, email string) (*db.User, error) {
	var user db.User
	if err := r.db.WithContext(ctx).Where("email = ?", email).First(&user).Error; err != nil {
		return nil, fmt.Errorf("find user by email: %w", translateNotFound(err))
	}
	return &user, nil
}

// MarkReminded 记录最近一次成功提醒的时间
func (r *Users) MarkReminded(ctx context.Context, userID uint, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&db.User{}).
		Where("id = ?", userID).
		Update("last_reminder_sent_at", at)
	if result.Error != nil {
		return fmt.Errorf("mark user %d reminded: %w", userID, result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("mark user %d reminded: %w", userID, ErrNotFound)
	}
	return nil
}
