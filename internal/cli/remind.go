package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/hourlog/internal/notify"
	"github.com/hourlog/internal/service"
)

// RemindCmd 计算某周的提醒名单，可选直接发送
type RemindCmd struct {
	Week          string `help:"Week start (YYYY-MM-DD, Monday). Defaults to the previous week."`
	Deliver       bool   `help:"Send reminders to targets outside the cooldown window."`
	TelegramToken string `help:"Telegram bot token used with --deliver." env:"TELEGRAM_BOT_TOKEN"`
	TelegramAPI   string `help:"Override Telegram API base URL." env:"TELEGRAM_API_BASE"`
	SiteURL       string `help:"Base URL for magic login links." env:"SITE_BASE_URL" default:"http://localhost:8080"`
}

func (c *RemindCmd) Run(ctx *Context) error {
	weekStart, err := parseWeekFlag(c.Week)
	if err != nil {
		return err
	}

	reminders := ctx.reminders()
	if !c.Deliver {
		report, err := reminders.GetReminderTargets(context.Background(), weekStart)
		if err != nil {
			return err
		}
		renderReport(ctx.Out, report)
		return nil
	}

	var sender service.Sender
	if strings.TrimSpace(c.TelegramToken) != "" {
		telegram := notify.NewTelegramSender(c.TelegramToken)
		if c.TelegramAPI != "" {
			telegram.SetBaseURL(c.TelegramAPI)
		}
		sender = telegram
	} else {
		sender = notify.NewLogSender(ctx.logger())
	}
	links := service.NewTokenLinkIssuer(ctx.repositories().Tokens, c.SiteURL, ctx.Calendar)

	report, delivery, err := reminders.WithDelivery(sender, links).RunWeekly(context.Background(), weekStart)
	if err != nil {
		return err
	}
	renderReport(ctx.Out, report)
	fmt.Fprintln(ctx.Out)
	renderDelivery(ctx.Out, delivery)
	return nil
}

// RunsCmd 列出某周的全部提醒批次
type RunsCmd struct {
	Week string `help:"Week start (YYYY-MM-DD, Monday). Defaults to the previous week."`
}

func (c *RunsCmd) Run(ctx *Context) error {
	weekStart, err := parseWeekFlag(c.Week)
	if err != nil {
		return err
	}
	runs, err := ctx.reminders().ListRuns(context.Background(), weekStart)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(ctx.Out, mutedStyle.Render("No reminder runs."))
		return nil
	}

	rows := make([][]string, 0, len(runs))
	for _, run := range runs {
		reason := ""
		if run.FailureReason != nil {
			reason = *run.FailureReason
		}
		rows = append(rows, []string{
			strconv.FormatUint(uint64(run.ID), 10),
			run.WeekStartDate.String(),
			run.RunAt.In(ctx.Calendar.Location()).Format("2006-01-02 15:04"),
			run.Status,
			strconv.Itoa(run.TotalTargets),
			reason,
		})
	}
	fmt.Fprintln(ctx.Out, table([]string{"ID", "WEEK", "RUN AT", "STATUS", "TARGETS", "FAILURE"}, rows))
	return nil
}

func renderReport(w io.Writer, report service.ReminderReport) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Reminders for week of %s", report.WeekStartDate)))
	fmt.Fprintln(w, mutedStyle.Render(fmt.Sprintf("run #%d, %d missing, %d under target", report.RunID, report.Summary.Missing, report.Summary.UnderTarget)))

	if len(report.Targets) == 0 {
		fmt.Fprintln(w, mutedStyle.Render("Everyone is on track."))
		return
	}

	rows := make([][]string, 0, len(report.Targets))
	for _, target := range report.Targets {
		handle := "-"
		if target.ChatHandle != nil && strings.TrimSpace(*target.ChatHandle) != "" {
			handle = *target.ChatHandle
		}
		rows = append(rows, []string{
			target.Name,
			target.Email,
			handle,
			statusLabel(target.WeeklyStatus),
			formatHours(target.TotalHours),
		})
	}
	fmt.Fprintln(w, table([]string{"NAME", "EMAIL", "CHAT", "STATUS", "HOURS"}, rows))
}

func renderDelivery(w io.Writer, delivery service.DeliveryReport) {
	fmt.Fprintln(w, titleStyle.Render(fmt.Sprintf("Delivery: %d sent, %d skipped, %d failed", delivery.Sent, delivery.Skipped, delivery.Failed)))
	for _, result := range delivery.Results {
		switch {
		case result.Sent && result.Error != "":
			fmt.Fprintf(w, "  ✓ %s %s\n", result.Name, mutedStyle.Render("("+result.Error+")"))
		case result.Sent:
			fmt.Fprintf(w, "  ✓ %s\n", result.Name)
		case result.Skipped:
			fmt.Fprintf(w, "  - %s %s\n", result.Name, mutedStyle.Render("("+result.SkipReason+")"))
		default:
			fmt.Fprintf(w, "  ✗ %s: %s\n", result.Name, result.Error)
		}
	}
}

func formatHours(h float64) string {
	return strconv.FormatFloat(h, 'f', -1, 64)
}
