package main

import (
	"fmt"
	"log"

	"gorm.io/gorm"

	"github.com/hourlog/internal/config"
	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/week"
)

type seedMember struct {
	name       string
	chatHandle string
	// 最近几周的时长，从最早到上一周；负数表示零时长并填写原因
	hours []float64
}

var seedCircles = []string{"食物银行", "社区花园", "读书会"}

var seedMembers = []seedMember{
	{name: "Ana", chatHandle: "ana_hours", hours: []float64{2, 3, 2.5, 2}},
	{name: "Bea", chatHandle: "bea_hours", hours: []float64{1, 0.5, 1.25, 1}},
	{name: "Cai", chatHandle: "", hours: []float64{2, 0, 0, 0}},
	{name: "Dan", chatHandle: "dan_hours", hours: []float64{3, -1, 2, -1}},
	{name: "Eve", chatHandle: "eve_hours", hours: []float64{0, 0, 0, 0}},
}

// 测试数据生成器
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal("配置加载失败:", err)
	}
	if err := db.Init(cfg.DatabasePath); err != nil {
		log.Fatal("数据库初始化失败:", err)
	}
	calendar, err := week.LoadCalendar(cfg.Timezone, nil)
	if err != nil {
		log.Fatal("时区加载失败:", err)
	}

	fmt.Println("开始生成测试数据...")

	if err := db.EnsureAdmin(db.DB, "admin@example.com", "admin123", "Admin"); err != nil {
		log.Fatal("创建管理员失败:", err)
	}

	circles, err := createTestCircles(db.DB)
	if err != nil {
		log.Fatal("创建圈子失败:", err)
	}

	if err := createTestMembers(db.DB, circles, calendar.PreviousWeekStart()); err != nil {
		log.Fatal("创建成员失败:", err)
	}

	fmt.Println("测试数据生成完成！")
	fmt.Println("管理员: admin@example.com (密码: admin123)")
	fmt.Printf("成员: %d 人，圈子: %d 个\n", len(seedMembers), len(circles))
}

// 创建测试圈子
func createTestCircles(gdb *gorm.DB) ([]db.Circle, error) {
	var count int64
	gdb.Model(&db.Circle{}).Count(&count)
	if count > 0 {
		fmt.Println("圈子已存在，跳过创建")
		var existing []db.Circle
		return existing, gdb.Order("id").Find(&existing).Error
	}

	circles := make([]db.Circle, 0, len(seedCircles))
	for _, name := range seedCircles {
		circles = append(circles, db.Circle{Name: name, IsActive: true})
	}
	if err := gdb.Create(&circles).Error; err != nil {
		return nil, err
	}
	fmt.Println("✅ 测试圈子创建完成")
	return circles, nil
}

// 创建测试成员、成员关系与最近几周的记录；lastWeek 为最后一周的周一
func createTestMembers(gdb *gorm.DB, circles []db.Circle, lastWeek week.Date) error {
	if len(circles) == 0 {
		return fmt.Errorf("no circles to attach members to")
	}

	var count int64
	gdb.Model(&db.User{}).Where("role = ?", db.RoleMember).Count(&count)
	if count > 0 {
		fmt.Println("成员已存在，跳过创建")
		return nil
	}

	return gdb.Transaction(func(tx *gorm.DB) error {
		for i, seed := range seedMembers {
			user := db.User{
				Name:     seed.name,
				Email:    fmt.Sprintf("%s@example.com", seed.name),
				IsActive: true,
				Role:     db.RoleMember,
			}
			if seed.chatHandle != "" {
				handle := seed.chatHandle
				user.ChatHandle = &handle
			}
			if err := tx.Create(&user).Error; err != nil {
				return err
			}

			circle := circles[i%len(circles)]
			first := lastWeek.AddDays(-7 * (len(seed.hours) - 1))
			if err := tx.Create(&db.CircleMembership{
				UserID:            user.ID,
				CircleID:          circle.ID,
				IsActive:          true,
				TrackingStartDate: first,
			}).Error; err != nil {
				return err
			}

			for w, hours := range seed.hours {
				if hours == 0 {
					continue
				}
				entry := db.WeeklyEntry{
					UserID:        user.ID,
					CircleID:      circle.ID,
					WeekStartDate: first.AddDays(7 * w),
					Description:   fmt.Sprintf("%s 的第 %d 周服务", seed.name, w+1),
				}
				if hours < 0 {
					reason := "请假"
					entry.ZeroHoursReason = &reason
				} else {
					entry.Hours = hours
				}
				if err := tx.Create(&entry).Error; err != nil {
					return err
				}
			}
		}
		fmt.Println("✅ 测试成员创建完成")
		return nil
	})
}
