package logger

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"gopkg.in/natefinch/lumberjack.v2"
)

// Logger 是进程级 logger，Init 之前为 log.Default()
var Logger = log.Default()

// Config 日志配置
type Config struct {
	// Dir 为空时不写文件
	Dir    string
	File   string
	Debug  bool
	Prefix string
	// Quiet 为 true 时非调试模式下不写 stderr，只写文件（CLI 使用）
	Quiet bool
}

// New 按配置构造 logger：文件按大小轮转，stderr 可选
func New(cfg Config) (*log.Logger, error) {
	writers := make([]io.Writer, 0, 2)

	if dir := strings.TrimSpace(cfg.Dir); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(cfg.File)
		if name == "" {
			name = "hourlog.log"
		}
		writers = append(writers, &lumberjack.Logger{
			Filename:   filepath.Join(dir, name),
			MaxSize:    10, // MB
			MaxBackups: 5,
			MaxAge:     28, // days
			Compress:   true,
		})
	}

	if !cfg.Quiet || cfg.Debug || len(writers) == 0 {
		writers = append(writers, os.Stderr)
	}

	level := log.InfoLevel
	if cfg.Debug {
		level = log.DebugLevel
	}

	prefix := strings.TrimSpace(cfg.Prefix)
	if prefix == "" {
		prefix = "hourlog"
	}

	return log.NewWithOptions(io.MultiWriter(writers...), log.Options{
		ReportCaller:    cfg.Debug,
		ReportTimestamp: true,
		Level:           level,
		Prefix:          prefix,
	}), nil
}

// Init 构造 logger 并设为进程级 logger
func Init(cfg Config) error {
	l, err := New(cfg)
	if err != nil {
		return err
	}
	Logger = l
	log.SetDefault(l)
	return nil
}
