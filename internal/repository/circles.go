package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hourlog/internal/db"
)

// Circles 基于 gorm 的圈子与成员关系读取
type Circles struct {
	db *gorm.DB
}

// NewCircles 构造 Circles
func NewCircles(gdb *gorm.DB) *Circles {
	return &Circles{db: gdb}
}

// ListActive 返回所有启用的圈子
func (r *Circles) ListActive(ctx context.Context) ([]db.Circle, error) {
	var circles []db.Circle
	if err := r.db.WithContext(ctx).Where("is_active = ?", true).Order("id ASC").Find(&circles).Error; err != nil {
		return nil, fmt.Errorf("list active circles: %w", err)
	}
	return circles, nil
}

// FindByIDs 批量读取圈子，包含已停用的圈子，便于展示历史记录
func (r *Circles) FindByIDs(ctx context.Context, ids []uint) ([]db.Circle, error) {
	if len(ids) == 0 {
		return []db.Circle{}, nil
	}
	var circles []db.Circle
	if err := r.db.WithContext(ctx).Where("id IN ?", ids).Find(&circles).Error; err != nil {
		return nil, fmt.Errorf("find circles: %w", err)
	}
	return circles, nil
}

// Get 根据 ID 获取圈子
func (r *Circles) Get(ctx context.Context, id uint) (*db.Circle, error) {
	var circle db.Circle
	if err := r.db.WithContext(ctx).First(&circle, id).Error; err != nil {
		return nil, fmt.Errorf("get circle %d: %w", id, translateNotFound(err))
	}
	return &circle, nil
}

// CountActiveMembers 统计每个圈子的有效成员数（成员关系与成员本身均需启用，且非管理员）
func (r *Circles) CountActiveMembers(ctx context.Context) (map[uint]int, error) {
	var rows []struct {
		CircleID uint
		Members  int
	}
	if err := r.db.WithContext(ctx).Table("circle_memberships cm").
		Select("cm.circle_id AS circle_id, COUNT(DISTINCT cm.user_id) AS members").
		Joins("JOIN users u ON u.id = cm.user_id AND u.deleted_at IS NULL").
		Where("cm.deleted_at IS NULL AND cm.is_active = ? AND u.is_active = ? AND u.role <> ?", true, true, db.RoleAdmin).
		Group("cm.circle_id").
		Scan(&rows).Error; err != nil {
		return nil, fmt.Errorf("count circle members: %w", err)
	}

	counts := make(map[uint]int, len(rows))
	for _, row := range rows {
		counts[row.CircleID] = row.Members
	}
	return counts, nil
}

// GetMembership 获取成员在某个圈子的关系
func (r *Circles) GetMembership(ctx context.Context, userID, circleID uint) (*db.CircleMembership, error) {
	var membership db.CircleMembership
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND circle_id = ?", userID, circleID).
		First(&membership).Error; err != nil {
		return nil, fmt.Errorf("get membership: %w", translateNotFound(err))
	}
	return &membership, nil
}
