package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/log"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/repository"
	"github.com/hourlog/internal/week"
)

// ReminderCooldown 是两次提醒之间的最短间隔，从目标周的周日往前算
const ReminderCooldown = 7 * 24 * time.Hour

// Sender 是提醒消息的发送通道，具体传输方式由调用方决定
type Sender interface {
	Send(ctx context.Context, chatHandle, userName, loginURL string) error
}

// ReminderTargetView 是提醒目标连同成员当前联系方式的视图
type ReminderTargetView struct {
	UserID             uint
	Name               string
	Email              string
	PhoneNumber        string
	ChatHandle         *string
	LastReminderSentAt *time.Time
	WeeklyStatus       WeeklyStatus
	TotalHours         float64
}

// ReminderSummary 统计目标中各状态人数
type ReminderSummary struct {
	Missing     int
	UnderTarget int
	Total       int
}

// ReminderComputation 是一次新计算的结果
type ReminderComputation struct {
	Run     db.ReminderRun
	Targets []ReminderTargetView
}

// ReminderReport 是查询接口返回的结果
type ReminderReport struct {
	RunID         uint
	WeekStartDate week.Date
	GeneratedAt   time.Time
	Targets       []ReminderTargetView
	Summary       ReminderSummary
}

// DeliveryResult 记录单个目标的发送结果
// Sent 为 true 且 Error 非空表示消息已发出但冷却时间戳未能写入
type DeliveryResult struct {
	UserID     uint
	Name       string
	Sent       bool
	Skipped    bool
	SkipReason string
	Error      string
}

// DeliveryReport 汇总一次发送过程
type DeliveryReport struct {
	WeekStartDate week.Date
	Cutoff        time.Time
	Sent          int
	Skipped       int
	Failed        int
	Results       []DeliveryResult
}

// ReminderService 计算每周提醒目标并负责按冷却规则发送
// “应该提醒谁”由 COMPLETED 批次决定；“已经提醒过谁”只看 User.LastReminderSentAt，
// 因此重复执行发送是安全的
type ReminderService struct {
	users      UserRepository
	entries    EntryRepository
	reminders  ReminderRepository
	calendar   *week.Calendar
	classifier Classifier
	sender     Sender
	links      LinkIssuer
	cache      *runCache
	logger     *log.Logger
}

// NewReminderService 构造 ReminderService
func NewReminderService(repos Repositories, calendar *week.Calendar, classifier Classifier) *ReminderService {
	return &ReminderService{
		users:      repos.Users,
		entries:    repos.Entries,
		reminders:  repos.Reminders,
		calendar:   calendar,
		classifier: classifier,
		cache:      newRunCache(defaultRunCacheSize),
	}
}

// WithDelivery 注入发送通道与登录链接生成器
func (s *ReminderService) WithDelivery(sender Sender, links LinkIssuer) *ReminderService {
	s.sender = sender
	s.links = links
	return s
}

// WithLogger 替换日志输出
func (s *ReminderService) WithLogger(logger *log.Logger) *ReminderService {
	s.logger = logger
	return s
}

func (s *ReminderService) resolveWeek(weekStart *week.Date) (week.Date, error) {
	ws, err := week.ParseWeekStart(s.calendar.ResolveWeekStart(weekStart).String())
	if err != nil {
		return "", invalidWrap("week_start", err)
	}
	return ws, nil
}

// ComputeReminderTargets 为指定周（缺省为上一周）重新计算提醒目标并持久化批次
// 批次创建后的任何失败都会把批次标记为 FAILED 并返回错误
func (s *ReminderService) ComputeReminderTargets(ctx context.Context, weekStart *week.Date) (ReminderComputation, error) {
	ws, err := s.resolveWeek(weekStart)
	if err != nil {
		return ReminderComputation{}, err
	}
	logger := serviceLogger(s.logger, "reminders", "compute", "week", ws)

	// 已完成的周不再写入任何批次或目标行
	existing, err := s.reminders.FindCompletedRun(ctx, ws)
	if err != nil {
		return ReminderComputation{}, fmt.Errorf("load completed run for %s: %w", ws, err)
	}
	if existing != nil {
		return ReminderComputation{}, fmt.Errorf("compute reminder run for %s: %w", ws, repository.ErrRunAlreadyCompleted)
	}

	users, err := s.users.ListParticipants(ctx)
	if err != nil {
		return ReminderComputation{}, fmt.Errorf("load participants: %w", err)
	}
	entries, err := s.entries.ListByWeeks(ctx, []week.Date{ws})
	if err != nil {
		return ReminderComputation{}, fmt.Errorf("load entries for %s: %w", ws, err)
	}
	byUser := groupByUser(entries)

	run := db.ReminderRun{
		WeekStartDate: ws,
		RunAt:         s.calendar.Now(),
		Status:        db.ReminderRunPending,
	}
	if err := s.reminders.CreateRun(ctx, &run); err != nil {
		return ReminderComputation{}, fmt.Errorf("create reminder run: %w", err)
	}

	views := make([]ReminderTargetView, 0)
	rows := make([]db.ReminderTarget, 0)
	for _, user := range users {
		userEntries := byUser[user.ID]
		status := s.classifier.ClassifyWeek(userEntries)
		if !status.AtRisk() {
			continue
		}
		total := SumHours(userEntries)
		rows = append(rows, db.ReminderTarget{
			ReminderRunID: run.ID,
			UserID:        user.ID,
			WeeklyStatus:  string(status),
			TotalHours:    total,
		})
		views = append(views, targetView(user, status, total))
	}

	if err := s.reminders.CreateTargets(ctx, rows); err != nil {
		s.failRun(ctx, logger, &run, err)
		return ReminderComputation{}, fmt.Errorf("persist reminder targets: %w", err)
	}

	run.Status = db.ReminderRunCompleted
	run.TotalTargets = len(rows)
	if err := s.reminders.SaveRun(ctx, &run); err != nil {
		run.Status = db.ReminderRunPending
		s.failRun(ctx, logger, &run, err)
		return ReminderComputation{}, fmt.Errorf("complete reminder run: %w", err)
	}

	s.cache.add(runSnapshot{run: run, targets: rows})
	logger.Info("reminder run completed", "run", run.ID, "targets", run.TotalTargets, "participants", len(users))

	return ReminderComputation{Run: run, Targets: views}, nil
}

func (s *ReminderService) failRun(ctx context.Context, logger *log.Logger, run *db.ReminderRun, cause error) {
	reason := cause.Error()
	run.Status = db.ReminderRunFailed
	run.FailureReason = &reason
	// 调用方的 ctx 可能已取消，失败状态仍需落库
	if err := s.reminders.SaveRun(context.WithoutCancel(ctx), run); err != nil {
		logger.Error("failed to mark reminder run as failed", "run", run.ID, "err", err, "cause", cause)
		return
	}
	logger.Warn("reminder run failed", "run", run.ID, "cause", cause)
}

// GetReminderTargets 返回指定周的提醒目标
// 已存在 COMPLETED 批次时直接读取其目标并关联成员当前的联系方式，否则重新计算
func (s *ReminderService) GetReminderTargets(ctx context.Context, weekStart *week.Date) (ReminderReport, error) {
	ws, err := s.resolveWeek(weekStart)
	if err != nil {
		return ReminderReport{}, err
	}

	snapshot, found, err := s.loadCompleted(ctx, ws)
	if err != nil {
		return ReminderReport{}, err
	}
	if found {
		return s.reportFromSnapshot(ctx, snapshot)
	}

	computation, err := s.ComputeReminderTargets(ctx, &ws)
	if err != nil {
		if !errors.Is(err, repository.ErrRunAlreadyCompleted) {
			return ReminderReport{}, err
		}
		// 并发请求先一步完成了同一周的批次，改为读取对方的结果
		snapshot, found, loadErr := s.loadCompleted(ctx, ws)
		if loadErr != nil {
			return ReminderReport{}, loadErr
		}
		if !found {
			return ReminderReport{}, err
		}
		return s.reportFromSnapshot(ctx, snapshot)
	}

	return ReminderReport{
		RunID:         computation.Run.ID,
		WeekStartDate: ws,
		GeneratedAt:   computation.Run.RunAt,
		Targets:       computation.Targets,
		Summary:       summarizeTargets(computation.Targets),
	}, nil
}

// ListRuns 返回某周的全部批次，包括失败批次
func (s *ReminderService) ListRuns(ctx context.Context, weekStart *week.Date) ([]db.ReminderRun, error) {
	ws, err := s.resolveWeek(weekStart)
	if err != nil {
		return nil, err
	}
	return s.reminders.ListRuns(ctx, ws)
}

func (s *ReminderService) loadCompleted(ctx context.Context, ws week.Date) (runSnapshot, bool, error) {
	if snapshot, ok := s.cache.get(ws); ok {
		return snapshot, true, nil
	}

	run, err := s.reminders.FindCompletedRun(ctx, ws)
	if err != nil {
		return runSnapshot{}, false, err
	}
	if run == nil {
		return runSnapshot{}, false, nil
	}

	targets, err := s.reminders.ListTargets(ctx, run.ID)
	if err != nil {
		return runSnapshot{}, false, err
	}

	snapshot := runSnapshot{run: *run, targets: targets}
	s.cache.add(snapshot)
	return snapshot, true, nil
}

func (s *ReminderService) reportFromSnapshot(ctx context.Context, snapshot runSnapshot) (ReminderReport, error) {
	ids := make([]uint, 0, len(snapshot.targets))
	for _, target := range snapshot.targets {
		ids = append(ids, target.UserID)
	}

	users, err := s.users.FindByIDs(ctx, ids)
	if err != nil {
		return ReminderReport{}, fmt.Errorf("load target users: %w", err)
	}
	byID := make(map[uint]db.User, len(users))
	for _, user := range users {
		byID[user.ID] = user
	}

	views := make([]ReminderTargetView, 0, len(snapshot.targets))
	for _, target := range snapshot.targets {
		user, ok := byID[target.UserID]
		if !ok {
			user = db.User{}
			user.ID = target.UserID
		}
		views = append(views, targetView(user, WeeklyStatus(target.WeeklyStatus), target.TotalHours))
	}

	return ReminderReport{
		RunID:         snapshot.run.ID,
		WeekStartDate: snapshot.run.WeekStartDate,
		GeneratedAt:   snapshot.run.RunAt,
		Targets:       views,
		Summary:       summarizeTargets(views),
	}, nil
}

// CooldownCutoff 返回某周的冷却分界：周日零点往前 7 天
func (s *ReminderService) CooldownCutoff(weekStart week.Date) time.Time {
	return week.End(weekStart).Midnight(s.calendar.Location()).Add(-ReminderCooldown)
}

// IsSendable 判断目标是否可以发送：需要聊天账号，且从未提醒过或最近一次提醒早于 cutoff
func IsSendable(target ReminderTargetView, cutoff time.Time) bool {
	if target.ChatHandle == nil || strings.TrimSpace(*target.ChatHandle) == "" {
		return false
	}
	if target.LastReminderSentAt == nil {
		return true
	}
	return target.LastReminderSentAt.Before(cutoff)
}

// DeliverReminders 逐个发送提醒；单个目标的失败只记录，不会中断其余发送
func (s *ReminderService) DeliverReminders(ctx context.Context, report ReminderReport) (DeliveryReport, error) {
	if s.sender == nil || s.links == nil {
		return DeliveryReport{}, ErrSenderNotConfigured
	}

	cutoff := s.CooldownCutoff(report.WeekStartDate)
	logger := serviceLogger(s.logger, "reminders", "deliver", "week", report.WeekStartDate, "run", report.RunID)
	delivery := DeliveryReport{
		WeekStartDate: report.WeekStartDate,
		Cutoff:        cutoff,
		Results:       make([]DeliveryResult, 0, len(report.Targets)),
	}

	for _, target := range report.Targets {
		result := DeliveryResult{UserID: target.UserID, Name: target.Name}

		if !IsSendable(target, cutoff) {
			result.Skipped = true
			result.SkipReason = skipReason(target)
			delivery.Skipped++
			delivery.Results = append(delivery.Results, result)
			continue
		}

		sent, err := s.deliverOne(ctx, target)
		switch {
		case sent && err != nil:
			// 消息已发出，只是冷却时间戳没写进去；计为已发送，避免重跑时误判为失败
			result.Sent = true
			result.Error = err.Error()
			delivery.Sent++
			logger.Error("reminder sent but not recorded", "user", target.UserID, "err", err)
		case err != nil:
			result.Error = err.Error()
			delivery.Failed++
			logger.Error("failed to send reminder", "user", target.UserID, "err", err)
		default:
			result.Sent = true
			delivery.Sent++
		}
		delivery.Results = append(delivery.Results, result)
	}

	logger.Info("reminder delivery finished", "sent", delivery.Sent, "skipped", delivery.Skipped, "failed", delivery.Failed)
	return delivery, nil
}

// deliverOne 的 sent 表示消息是否已交给发送方；sent 为 true 时 err 只可能来自记录时间戳
func (s *ReminderService) deliverOne(ctx context.Context, target ReminderTargetView) (sent bool, err error) {
	loginURL, err := s.links.LoginURL(ctx, target.UserID)
	if err != nil {
		return false, err
	}
	if err := s.sender.Send(ctx, strings.TrimSpace(*target.ChatHandle), target.Name, loginURL); err != nil {
		return false, fmt.Errorf("send reminder: %w", err)
	}
	if err := s.users.MarkReminded(context.WithoutCancel(ctx), target.UserID, s.calendar.Now()); err != nil {
		return true, fmt.Errorf("record reminder: %w", err)
	}
	return true, nil
}

// RunWeekly 是定时任务入口：取得（或计算）批次后按冷却规则发送
func (s *ReminderService) RunWeekly(ctx context.Context, weekStart *week.Date) (ReminderReport, DeliveryReport, error) {
	report, err := s.GetReminderTargets(ctx, weekStart)
	if err != nil {
		return ReminderReport{}, DeliveryReport{}, err
	}
	delivery, err := s.DeliverReminders(ctx, report)
	if err != nil {
		return report, DeliveryReport{}, err
	}
	return report, delivery, nil
}

func targetView(user db.User, status WeeklyStatus, total float64) ReminderTargetView {
	return ReminderTargetView{
		UserID:             user.ID,
		Name:               user.Name,
		Email:              user.Email,
		PhoneNumber:        user.PhoneNumber,
		ChatHandle:         user.ChatHandle,
		LastReminderSentAt: user.LastReminderSentAt,
		WeeklyStatus:       status,
		TotalHours:         total,
	}
}

func summarizeTargets(targets []ReminderTargetView) ReminderSummary {
	summary := ReminderSummary{Total: len(targets)}
	for _, target := range targets {
		switch target.WeeklyStatus {
		case StatusMissing:
			summary.Missing++
		case StatusUnderTarget:
			summary.UnderTarget++
		}
	}
	return summary
}

func skipReason(target ReminderTargetView) string {
	if target.ChatHandle == nil || strings.TrimSpace(*target.ChatHandle) == "" {
		return "no chat handle"
	}
	return "reminded within cooldown"
}
