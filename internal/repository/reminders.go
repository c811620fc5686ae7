package repository

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/week"
)

const targetBatchSize = 200

// Reminders 基于 gorm 的提醒批次与目标存取
type Reminders struct {
	db *gorm.DB
}

// NewReminders 构造 Reminders
func NewReminders(gdb *gorm.DB) *Reminders {
	return &Reminders{db: gdb}
}

// FindCompletedRun 返回指定周的 COMPLETED 批次；不存在时返回 nil, nil
func (r *Reminders) FindCompletedRun(ctx context.Context, weekStart week.Date) (*db.ReminderRun, error) {
	var run db.ReminderRun
	err := r.db.WithContext(ctx).
		Where("week_start_date = ? AND status = ?", weekStart, db.ReminderRunCompleted).
		Order("run_at DESC, id DESC").
		First(&run).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("find completed run for %s: %w", weekStart, err)
	}
	return &run, nil
}

// CreateRun 新建批次
func (r *Reminders) CreateRun(ctx context.Context, run *db.ReminderRun) error {
	if err := r.db.WithContext(ctx).Create(run).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("create run for %s: %w", run.WeekStartDate, ErrRunAlreadyCompleted)
		}
		return fmt.Errorf("create run for %s: %w", run.WeekStartDate, err)
	}
	return nil
}

// SaveRun 保存批次状态；同周已有 COMPLETED 批次时返回 ErrRunAlreadyCompleted
func (r *Reminders) SaveRun(ctx context.Context, run *db.ReminderRun) error {
	if err := r.db.WithContext(ctx).Save(run).Error; err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("save run %d: %w", run.ID, ErrRunAlreadyCompleted)
		}
		return fmt.Errorf("save run %d: %w", run.ID, err)
	}
	return nil
}

// CreateTargets 批量写入提醒目标
func (r *Reminders) CreateTargets(ctx context.Context, targets []db.ReminderTarget) error {
	if len(targets) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).CreateInBatches(targets, targetBatchSize).Error; err != nil {
		return fmt.Errorf("create reminder targets: %w", err)
	}
	return nil
}

// ListTargets 返回批次下的全部目标，按写入顺序
func (r *Reminders) ListTargets(ctx context.Context, runID uint) ([]db.ReminderTarget, error) {
	var targets []db.ReminderTarget
	if err := r.db.WithContext(ctx).
		Where("reminder_run_id = ?", runID).
		Order("id ASC").
		Find(&targets).Error; err != nil {
		return nil, fmt.Errorf("list targets for run %d: %w", runID, err)
	}
	return targets, nil
}

// ListRuns 返回指定周的全部批次（含失败批次），用于审计
func (r *Reminders) ListRuns(ctx context.Context, weekStart week.Date) ([]db.ReminderRun, error) {
	var runs []db.ReminderRun
	if err := r.db.WithContext(ctx).
		Where("week_start_date = ?", weekStart).
		Order("run_at ASC, id ASC").
		Find(&runs).Error; err != nil {
		return nil, fmt.Errorf("list runs for %s: %w", weekStart, err)
	}
	return runs, nil
}
