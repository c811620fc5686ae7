package repository

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/week"
)

// Entries 基于 gorm 的周时长记录存取
// 除 Get 外的所有查询都排除已作废记录
type Entries struct {
	db *gorm.DB
}

// NewEntries 构造 Entries
func NewEntries(gdb *gorm.DB) *Entries {
	return &Entries{db: gdb}
}

func (r *Entries) active(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&db.WeeklyEntry{}).Where("voided_at IS NULL")
}

// ListByWeeks 返回指定周内所有成员的有效记录
func (r *Entries) ListByWeeks(ctx context.Context, weekStarts []week.Date) ([]db.WeeklyEntry, error) {
	if len(weekStarts) == 0 {
		return []db.WeeklyEntry{}, nil
	}
	var entries []db.WeeklyEntry
	if err := r.active(ctx).
		Where("week_start_date IN ?", weekStarts).
		Order("id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries by weeks: %w", err)
	}
	return entries, nil
}

// ListBetween 返回 [from, to] 区间内（按周一比较）所有成员的有效记录
func (r *Entries) ListBetween(ctx context.Context, from, to week.Date) ([]db.WeeklyEntry, error) {
	var entries []db.WeeklyEntry
	if err := r.active(ctx).
		Where("week_start_date BETWEEN ? AND ?", from, to).
		Order("week_start_date ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries between: %w", err)
	}
	return entries, nil
}

// ListForUser 返回成员在 [from, to] 区间内的有效记录
func (r *Entries) ListForUser(ctx context.Context, userID uint, from, to week.Date) ([]db.WeeklyEntry, error) {
	var entries []db.WeeklyEntry
	if err := r.active(ctx).
		Where("user_id = ?", userID).
		Where("week_start_date BETWEEN ? AND ?", from, to).
		Order("week_start_date ASC, id ASC").
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list entries for user %d: %w", userID, err)
	}
	return entries, nil
}

// Recent 返回最近创建的有效记录
func (r *Entries) Recent(ctx context.Context, limit int) ([]db.WeeklyEntry, error) {
	if limit <= 0 {
		limit = 10
	}
	var entries []db.WeeklyEntry
	if err := r.active(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&entries).Error; err != nil {
		return nil, fmt.Errorf("list recent entries: %w", err)
	}
	return entries, nil
}

// Get 根据 ID 获取记录，包括已作废记录
func (r *Entries) Get(ctx context.Context, id uint) (*db.WeeklyEntry, error) {
	var entry db.WeeklyEntry
	if err := r.db.WithContext(ctx).First(&entry, id).Error; err != nil {
		return nil, fmt.Errorf("get entry %d: %w", id, translateNotFound(err))
	}
	return &entry, nil
}

// Create 新建记录
func (r *Entries) Create(ctx context.Context, entry *db.WeeklyEntry) error {
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("create entry: %w", err)
	}
	return nil
}

// Save 保存记录（仅用于作废标记）
func (r *Entries) Save(ctx context.Context, entry *db.WeeklyEntry) error {
	if err := r.db.WithContext(ctx).Save(entry).Error; err != nil {
		return fmt.Errorf("save entry %d: %w", entry.ID, err)
	}
	return nil
}
