package db

import (
	"gorm.io/gorm"

	"github.com/hourlog/internal/week"
)

// Circle 表示成员贡献时长所归属的圈子
type Circle struct {
	gorm.Model
	Name     string `gorm:"size:120;not null"`
	IsActive bool
}

// CircleMembership 记录成员与圈子的关系
// TrackingStartDate 之前的周不允许登记时长，由录入环节校验，统计环节不再使用
type CircleMembership struct {
	gorm.Model
	UserID            uint      `gorm:"index:idx_circle_membership_unique,unique;not null"`
	CircleID          uint      `gorm:"index:idx_circle_membership_unique,unique;not null"`
	IsActive          bool
	TrackingStartDate week.Date `gorm:"size:10"`
}

// TableName 指定自定义表名。
func (CircleMembership) TableName() string {
	return "circle_memberships"
}
