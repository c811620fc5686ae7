package db

import "time"

// LoginToken 是提醒消息里附带的一次性登录凭证。
type LoginToken struct {
	ID        uint      `gorm:"primaryKey"`
	Token     string    `gorm:"size:36;uniqueIndex;not null"`
	UserID    uint      `gorm:"index;not null"`
	ExpiresAt time.Time `gorm:"not null"`
	CreatedAt time.Time
}

// TableName 指定自定义表名。
func (LoginToken) TableName() string {
	return "login_tokens"
}
