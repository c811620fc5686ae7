package service

import (
	"github.com/charmbracelet/log"
)

func defaultLogger(logger *log.Logger) *log.Logger {
	if logger != nil {
		return logger
	}
	return log.Default()
}

// serviceLogger 为一次操作附加统一的 service/operation 字段
func serviceLogger(base *log.Logger, serviceName, operation string, keyvals ...any) *log.Logger {
	pairs := []any{"service", serviceName}
	if operation != "" {
		pairs = append(pairs, "operation", operation)
	}
	pairs = append(pairs, keyvals...)
	return defaultLogger(base).With(pairs...)
}
