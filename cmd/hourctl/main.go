package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"gorm.io/gorm/logger"

	"github.com/hourlog/internal/cli"
	"github.com/hourlog/internal/db"
	hourlogger "github.com/hourlog/internal/logger"
	"github.com/hourlog/internal/service"
	"github.com/hourlog/internal/week"
)

var CLI struct {
	DB       string  `help:"SQLite database path." env:"DATABASE_PATH" default:"hourlog.db"`
	Timezone string  `help:"Timezone used for week boundaries." env:"TIMEZONE" default:"Europe/Madrid"`
	Target   float64 `help:"Weekly target hours." env:"WEEKLY_TARGET_HOURS" default:"2"`
	LogDir   string  `help:"Directory for log files." env:"LOG_DIR" default:"logs"`
	Debug    bool    `help:"Enable debug logging."`

	Remind      cli.RemindCmd      `cmd:"" help:"Compute (and optionally send) reminders for a week."`
	Runs        cli.RunsCmd        `cmd:"" help:"List reminder runs for a week."`
	Dashboard   cli.DashboardCmd   `cmd:"" help:"Show the admin dashboard summary."`
	EnsureAdmin cli.EnsureAdminCmd `cmd:"" help:"Create the admin account if it does not exist."`
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("hourctl"),
		kong.Description("Volunteer hour tracking and weekly reminders"),
		kong.UsageOnError(),
	)

	if err := hourlogger.Init(hourlogger.Config{Dir: CLI.LogDir, File: "hourctl.log", Debug: CLI.Debug, Prefix: "hourctl", Quiet: true}); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	calendar, err := week.LoadCalendar(CLI.Timezone, nil)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	level := logger.Warn
	if CLI.Debug {
		level = logger.Info
	}
	gdb, err := db.Open(CLI.DB, level)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open database: %v\n", err)
		os.Exit(1)
	}

	target := CLI.Target
	if target <= 0 {
		target = service.DefaultWeeklyTargetHours
	}

	appCtx := &cli.Context{
		DB:       gdb,
		Calendar: calendar,
		Target:   target,
		Out:      os.Stdout,
		Logger:   hourlogger.Logger,
	}

	if err := ctx.Run(appCtx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
