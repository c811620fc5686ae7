package service

import (
	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/week"
)

// CircleHours 是某个圈子在周期内的合计时长
type CircleHours struct {
	CircleID   uint
	CircleName string
	Hours      float64
}

// WeekSummary 是单周汇总
type WeekSummary struct {
	WeekStartDate week.Date
	WeekEndDate   week.Date
	TotalHours    float64
	EntryCount    int
	Status        WeeklyStatus
	ByCircle      []CircleHours
}

// MonthSummary 是单月汇总；WeeklyBreakdown 中每周独立按周规则分类
type MonthSummary struct {
	Month           string
	TotalHours      float64
	WeeklyTarget    float64
	WeeksInMonth    int
	ExpectedHours   float64
	Status          WeeklyStatus
	ByCircle        []CircleHours
	WeeklyBreakdown []WeekSummary
}

// PeriodAggregator 对调用方提供的记录做纯内存汇总，不访问存储
type PeriodAggregator struct {
	classifier Classifier
}

// NewPeriodAggregator 构造 PeriodAggregator
func NewPeriodAggregator(classifier Classifier) PeriodAggregator {
	return PeriodAggregator{classifier: classifier}
}

// ByCircle 按圈子累加时长，保持首次出现的顺序
func (a PeriodAggregator) ByCircle(entries []db.WeeklyEntry, circleNames map[uint]string) []CircleHours {
	rows := make([]CircleHours, 0)
	index := make(map[uint]int)

	for _, entry := range entries {
		if entry.IsVoid() {
			continue
		}
		pos, exists := index[entry.CircleID]
		if !exists {
			pos = len(rows)
			index[entry.CircleID] = pos
			rows = append(rows, CircleHours{CircleID: entry.CircleID, CircleName: circleNames[entry.CircleID]})
		}
		rows[pos].Hours = roundHours(rows[pos].Hours + entry.Hours)
	}

	return rows
}

// WeeklySummary 为每个请求的周一生成汇总，顺序与输入一致
func (a PeriodAggregator) WeeklySummary(entries []db.WeeklyEntry, weekStarts []week.Date, circleNames map[uint]string) []WeekSummary {
	grouped := groupByWeek(entries)

	summaries := make([]WeekSummary, 0, len(weekStarts))
	for _, ws := range weekStarts {
		summaries = append(summaries, a.summarizeWeek(ws, grouped[ws], circleNames))
	}
	return summaries
}

// MonthlySummary 汇总与该月重叠的所有周
func (a PeriodAggregator) MonthlySummary(entries []db.WeeklyEntry, month week.MonthRange, circleNames map[uint]string) MonthSummary {
	inMonth := make([]db.WeeklyEntry, 0, len(entries))
	for _, entry := range entries {
		if entry.IsVoid() || !month.Contains(entry.WeekStartDate) {
			continue
		}
		inMonth = append(inMonth, entry)
	}

	total := SumHours(inMonth)
	target := a.classifier.WeeklyTarget()

	summary := MonthSummary{
		Month:         month.Month,
		TotalHours:    total,
		WeeklyTarget:  target,
		WeeksInMonth:  month.WeekCount,
		ExpectedHours: roundHours(float64(month.WeekCount) * target),
		Status:        a.classifier.ClassifyMonth(total, month.WeekCount),
		ByCircle:      a.ByCircle(inMonth, circleNames),
	}

	grouped := groupByWeek(inMonth)
	breakdown := make([]WeekSummary, 0, len(grouped))
	for _, ws := range month.Weeks() {
		group, exists := grouped[ws]
		if !exists {
			continue
		}
		breakdown = append(breakdown, a.summarizeWeek(ws, group, circleNames))
	}
	summary.WeeklyBreakdown = breakdown

	return summary
}

func (a PeriodAggregator) summarizeWeek(ws week.Date, entries []db.WeeklyEntry, circleNames map[uint]string) WeekSummary {
	return WeekSummary{
		WeekStartDate: ws,
		WeekEndDate:   week.End(ws),
		TotalHours:    SumHours(entries),
		EntryCount:    len(entries),
		Status:        a.classifier.ClassifyWeek(entries),
		ByCircle:      a.ByCircle(entries, circleNames),
	}
}

func groupByWeek(entries []db.WeeklyEntry) map[week.Date][]db.WeeklyEntry {
	grouped := make(map[week.Date][]db.WeeklyEntry)
	for _, entry := range entries {
		if entry.IsVoid() {
			continue
		}
		grouped[entry.WeekStartDate] = append(grouped[entry.WeekStartDate], entry)
	}
	return grouped
}

func groupByUser(entries []db.WeeklyEntry) map[uint][]db.WeeklyEntry {
	grouped := make(map[uint][]db.WeeklyEntry)
	for _, entry := range entries {
		if entry.IsVoid() {
			continue
		}
		grouped[entry.UserID] = append(grouped[entry.UserID], entry)
	}
	return grouped
}
