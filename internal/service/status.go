package service

import (
	"math"

	"github.com/hourlog/internal/db"
)

// DefaultWeeklyTargetHours 是每周的默认目标时长
const DefaultWeeklyTargetHours = 2.0

// WeeklyStatus 是某一周期内的时长分类，四种状态之间没有严重程度的全序
type WeeklyStatus string

const (
	// StatusMissing 没有任何有效记录，或只有不带原因的零时长记录
	StatusMissing WeeklyStatus = "MISSING"
	// StatusUnderTarget 有时长但未达标
	StatusUnderTarget WeeklyStatus = "UNDER_TARGET"
	// StatusZeroReason 零时长但填写了原因
	StatusZeroReason WeeklyStatus = "ZERO_REASON"
	// StatusMet 达到目标
	StatusMet WeeklyStatus = "MET"
)

// AtRisk 判断该状态是否需要提醒
func (s WeeklyStatus) AtRisk() bool {
	return s == StatusMissing || s == StatusUnderTarget
}

// Classifier 按配置的每周目标对记录分类
type Classifier struct {
	weeklyTarget float64
}

// NewClassifier 构造 Classifier，target 非正数时回退默认值
func NewClassifier(weeklyTarget float64) Classifier {
	if weeklyTarget <= 0 || math.IsNaN(weeklyTarget) {
		weeklyTarget = DefaultWeeklyTargetHours
	}
	return Classifier{weeklyTarget: weeklyTarget}
}

// WeeklyTarget 返回每周目标时长
func (c Classifier) WeeklyTarget() float64 {
	if c.weeklyTarget <= 0 {
		return DefaultWeeklyTargetHours
	}
	return c.weeklyTarget
}

// ClassifyWeek 对单个成员单周的记录分类
func (c Classifier) ClassifyWeek(entries []db.WeeklyEntry) WeeklyStatus {
	return Classify(entries, c.WeeklyTarget())
}

// ClassifyMonth 月度分类只有达标/未达标两种结果，目标为周数 × 每周目标
func (c Classifier) ClassifyMonth(total float64, weeksInMonth int) WeeklyStatus {
	expected := roundHours(float64(weeksInMonth) * c.WeeklyTarget())
	if roundHours(total) >= expected {
		return StatusMet
	}
	return StatusUnderTarget
}

// Classify 依次判断：无记录 → MISSING；合计为 0 时看是否有零时长原因；
// 合计低于 target → UNDER_TARGET；否则 MET。作废记录不参与计算
func Classify(entries []db.WeeklyEntry, target float64) WeeklyStatus {
	if len(entries) == 0 {
		return StatusMissing
	}

	total := SumHours(entries)
	if total == 0 {
		for _, entry := range entries {
			if entry.IsVoid() {
				continue
			}
			if entry.Hours == 0 && entry.HasZeroHoursReason() {
				return StatusZeroReason
			}
		}
		return StatusMissing
	}

	if total < target {
		return StatusUnderTarget
	}
	return StatusMet
}

// SumHours 汇总有效记录的时长，结果保留两位小数
func SumHours(entries []db.WeeklyEntry) float64 {
	var total float64
	for _, entry := range entries {
		if entry.IsVoid() {
			continue
		}
		total += entry.Hours
	}
	return roundHours(total)
}

func roundHours(v float64) float64 {
	return math.Round(v*100) / 100
}
