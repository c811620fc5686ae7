package db

import (
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	// RoleMember 普通成员，参与时长统计与提醒
	RoleMember = "member"
	// RoleAdmin 管理员，不参与统计，可登录后台
	RoleAdmin = "admin"
)

// User 定义了成员模型
// ChatHandle 为空表示无法通过聊天机器人提醒
// LastReminderSentAt 记录最近一次成功发送提醒的时间，用于冷却判断
type User struct {
	gorm.Model
	Name               string `gorm:"size:120;not null"`
	Email              string `gorm:"size:190;uniqueIndex;not null"`
	PhoneNumber        string `gorm:"size:40"`
	ChatHandle         *string
	IsActive           bool
	Role               string `gorm:"size:20;not null"`
	PasswordHash       string
	LastReminderSentAt *time.Time
}

// IsAdmin 判断是否为管理员。
func (u User) IsAdmin() bool {
	return strings.EqualFold(u.Role, RoleAdmin)
}

// EnsureAdmin 存在性检查：若邮箱与密码均非空且不存在对应账号，则创建一个 bcrypt 哈希的管理员。
func EnsureAdmin(gdb *gorm.DB, email, password, name string) error {
	trimmedEmail := strings.ToLower(strings.TrimSpace(email))
	trimmedPassword := strings.TrimSpace(password)
	if trimmedEmail == "" || trimmedPassword == "" {
		return nil
	}

	if gdb == nil {
		return errors.New("database not initialized")
	}

	var existing User
	if err := gdb.Where("email = ?", trimmedEmail).First(&existing).Error; err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}

		hashed, err := bcrypt.GenerateFromPassword([]byte(trimmedPassword), bcrypt.DefaultCost)
		if err != nil {
			return err
		}

		displayName := strings.TrimSpace(name)
		if displayName == "" {
			displayName = trimmedEmail
		}

		return gdb.Create(&User{
			Name:         displayName,
			Email:        trimmedEmail,
			IsActive:     true,
			Role:         RoleAdmin,
			PasswordHash: string(hashed),
		}).Error
	}

	return nil
}
