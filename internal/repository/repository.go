package repository

import (
	"errors"
	"strings"

	"gorm.io/gorm"
)

var (
	// ErrNotFound 在按主键查找的记录不存在时返回
	ErrNotFound = errors.New("record not found")
	// ErrRunAlreadyCompleted 在同一周已存在 COMPLETED 批次时返回
	ErrRunAlreadyCompleted = errors.New("reminder run already completed for week")
)

func translateNotFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

func isDuplicateKey(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	// 未开启 TranslateError 的连接退回到驱动原始报错
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}
