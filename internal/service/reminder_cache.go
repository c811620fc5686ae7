package service

import (
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/hourlog/internal/db"
	"github.com/hourlog/internal/week"
)

const defaultRunCacheSize = 64

// runSnapshot 是 COMPLETED 批次及其目标行；批次完成后不再变化，可以安全缓存
// 成员联系方式不进缓存，每次查询都重新读取
type runSnapshot struct {
	run     db.ReminderRun
	targets []db.ReminderTarget
}

type runCache struct {
	entries *lru.Cache[week.Date, runSnapshot]
}

func newRunCache(size int) *runCache {
	if size <= 0 {
		size = defaultRunCacheSize
	}
	cache, err := lru.New[week.Date, runSnapshot](size)
	if err != nil {
		return &runCache{}
	}
	return &runCache{entries: cache}
}

func (c *runCache) get(ws week.Date) (runSnapshot, bool) {
	if c == nil || c.entries == nil {
		return runSnapshot{}, false
	}
	return c.entries.Get(ws)
}

func (c *runCache) add(snapshot runSnapshot) {
	if c == nil || c.entries == nil || snapshot.run.Status != db.ReminderRunCompleted {
		return
	}
	c.entries.Add(snapshot.run.WeekStartDate, snapshot)
}
