package logger

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
)

func TestNewWritesRotatingFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "logs")

	l, err := New(Config{Dir: dir, File: "test.log", Quiet: true})
	if err != nil {
		t.Fatalf("New returned error: %v", err)
	}
	l.Info("reminder run completed", "targets", 3)
	l.Debug("hidden at info level")

	data, err := os.ReadFile(filepath.Join(dir, "test.log"))
	if err != nil {
		t.Fatalf("failed to read log file: %v", err)
	}
	out := string(data)
	if !strings.Contains(out, "reminder run completed") || !strings.Contains(out, "targets=3") {
		t.Fatalf("unexpected log output: %q", out)
	}
	if strings.Contains(out, "hidden at info level") {
		t.Fatalf("debug line written at info level: %q", out)
	}
}

func TestInitDebugMode(t *testing.T) {
	previous := Logger
	t.Cleanup(func() {
		Logger = previous
		log.SetDefault(previous)
	})

	if err := Init(Config{Dir: t.TempDir(), Debug: true}); err != nil {
		t.Fatalf("Init returned error: %v", err)
	}
	if Logger == previous {
		t.Fatal("expected Init to replace the process logger")
	}
	if Logger.GetLevel() != log.DebugLevel {
		t.Fatalf("expected debug level, got %v", Logger.GetLevel())
	}
}
