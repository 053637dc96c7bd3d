package atlas

import (
	"context"
	"time"

	"visitmap/internal/logger"
)

// Refresh 绕过 Redis 重新获取并解码文档；失败时保留旧结果
func (s *Source) Refresh(ctx context.Context, k Kind) error {
	fs, _, err := s.load(ctx, k, true)
	if err != nil {
		return err
	}
	s.mu.Lock()
	s.memo[k] = fs
	s.mu.Unlock()
	logger.L().Info("atlas_refreshed", "kind", k, "features", len(fs))
	return nil
}

// nextWeekdayAt：计算下一次指定星期与整点的时间点（严格晚于 now）
func nextWeekdayAt(now time.Time, day time.Weekday, hour int) time.Time {
	for i := 0; i <= 7; i++ {
		d := now.AddDate(0, 0, i)
		if d.Weekday() != day {
			continue
		}
		t := time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, now.Location())
		if t.After(now) {
			return t
		}
	}
	d := now.AddDate(0, 0, 7)
	return time.Date(d.Year(), d.Month(), d.Day(), hour, 0, 0, 0, now.Location())
}

// 文档注释：每周刷新几何文档
// 背景：上游 atlas 版本偶有更新，Redis 中的原始文档 TTL 到期前不会自动刷新；每周一在 loc 时区的 hour 点对已加载的类型强制重取。
// 约束：只刷新进程内已加载过的类型；错误由日志记录，任务继续调度；ctx 取消后退出。
func (s *Source) StartWeekly(ctx context.Context, loc *time.Location, hour int) {
	if loc == nil {
		loc = time.UTC
	}
	next := nextWeekdayAt(time.Now().In(loc), time.Monday, hour)
	logger.L().Info("atlas_refresh_scheduled", "next", next)
	go func() {
		for {
			t := time.NewTimer(time.Until(next))
			select {
			case <-ctx.Done():
				t.Stop()
				return
			case <-t.C:
			}
			for _, k := range s.loaded() {
				if err := s.Refresh(ctx, k); err != nil {
					logger.L().Error("atlas_refresh_error", "kind", k, "err", err)
				}
			}
			next = next.AddDate(0, 0, 7)
		}
	}()
}

func (s *Source) loaded() []Kind {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Kind, 0, len(s.memo))
	for k := range s.memo {
		out = append(out, k)
	}
	return out
}
