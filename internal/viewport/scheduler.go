package viewport

import (
	"sync"
	"time"

	"visitmap/internal/geo"
	"visitmap/internal/logger"
	"visitmap/internal/metrics"
)

// Surface：渲染表面；Size 在任务真正执行时读取（布局完成后的尺寸）
type Surface interface {
	Size() Size
}

// FixedSurface 固定尺寸的表面
type FixedSurface Size

func (s FixedSurface) Size() Size { return Size(s) }

// Ticket：一次调度的令牌；只有最新令牌的结果会被应用
type Ticket uint64

// 文档注释：可取代的延迟视口计算
// 背景：视口计算需要布局后的像素尺寸，因此延迟执行；选择在执行前再次变化时，旧任务的结果必须丢弃。
// 约束：每次 Begin 令牌递增并取消尚未触发的定时器；Commit 只接受当前令牌；已在执行中的旧任务依靠令牌比较被丢弃。
type Scheduler struct {
	mu      sync.Mutex
	token   Ticket
	timer   *time.Timer
	current View

	Delay   time.Duration
	Fitter  *Fitter
	Surface Surface
	// OnApply 在结果被应用后调用（锁外）
	OnApply func(View)
}

// NewScheduler 创建调度器；surface 为 nil 时使用参考画布尺寸
func NewScheduler(f *Fitter, surface Surface, delay time.Duration) *Scheduler {
	if surface == nil {
		surface = FixedSurface{Width: RefWidth, Height: RefHeight}
	}
	return &Scheduler{Fitter: f, Surface: surface, Delay: delay, current: DefaultView()}
}

// Begin 开始新一轮：取代所有未完成的任务
func (s *Scheduler) Begin() Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.beginLocked()
}

func (s *Scheduler) beginLocked() Ticket {
	s.token++
	if s.timer != nil {
		s.timer.Stop()
		s.timer = nil
	}
	return s.token
}

// Commit 应用结果；令牌过期时丢弃并返回 false
func (s *Scheduler) Commit(t Ticket, v View) bool {
	s.mu.Lock()
	if t != s.token {
		s.mu.Unlock()
		metrics.ViewportFitsTotal.WithLabelValues("stale").Inc()
		logger.L().Debug("viewport_stale", "ticket", uint64(t))
		return false
	}
	s.current = v
	cb := s.OnApply
	s.mu.Unlock()
	metrics.ViewportFitsTotal.WithLabelValues("applied").Inc()
	if cb != nil {
		cb(v)
	}
	return true
}

// Schedule 延迟计算要素子集的视图；失败时保留当前视图
func (s *Scheduler) Schedule(features []geo.Feature, kind Kind) Ticket {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.beginLocked()
	s.timer = time.AfterFunc(s.Delay, func() { s.run(t, features, kind) })
	return t
}

func (s *Scheduler) run(t Ticket, features []geo.Feature, kind Kind) {
	v, err := s.Fitter.Fit(features, s.Surface.Size(), kind)
	if err != nil {
		metrics.ViewportFitsTotal.WithLabelValues("failed").Inc()
		logger.L().Warn("viewport_fit_failed", "kind", kind, "features", len(features), "err", err)
		return
	}
	s.Commit(t, v)
}

// Reset 取消未完成任务并回到默认视图
func (s *Scheduler) Reset() {
	s.mu.Lock()
	s.beginLocked()
	s.current = DefaultView()
	s.mu.Unlock()
}

// Set 取消未完成任务并直接设置视图（如大洲的预设视图）
func (s *Scheduler) Set(v View) {
	s.mu.Lock()
	s.beginLocked()
	s.current = v
	s.mu.Unlock()
}

// Current 返回当前已应用的视图
func (s *Scheduler) Current() View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current
}
