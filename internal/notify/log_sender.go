package notify

import (
	"context"

	"github.com/charmbracelet/log"
)

// LogSender 只把提醒写进日志，未配置机器人时使用
type LogSender struct {
	logger *log.Logger
}

// NewLogSender 构造 LogSender，logger 为空时使用默认 logger
func NewLogSender(logger *log.Logger) *LogSender {
	if logger == nil {
		logger = log.Default()
	}
	return &LogSender{logger: logger.WithPrefix("notify")}
}

// Send 记录一条提醒
func (s *LogSender) Send(_ context.Context, chatHandle, userName, loginURL string) error {
	s.logger.Info("reminder (log only)", "chat", chatHandle, "user", userName, "link", loginURL)
	return nil
}
