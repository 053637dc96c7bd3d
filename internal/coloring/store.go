// 包 coloring：按地图层级保存着色状态，维护县↔州的层级一致性与类别互斥
package coloring

import (
	"context"
	"strconv"
	"strings"
	"sync"
	"time"

	"visitmap/internal/continent"
	"visitmap/internal/logger"
	"visitmap/internal/metrics"
	"visitmap/internal/region"
)

// 持久化桶名：与本地存储键保持一致，便于迁移既有数据
const (
	BucketStates            = "coloredStates"
	BucketCounties          = "coloredCounties"
	BucketCountries         = "coloredCountries"
	BucketStateCategories   = "stateCategories"
	BucketCountyCategories  = "countyCategories"
	BucketCountryCategories = "countryCategories"
	continentBucketPrefix   = "continent:"
)

// ContinentBucket 返回某个大洲映射的桶名
func ContinentBucket(t continent.Tag) string { return continentBucketPrefix + string(t) }

// Buckets 列出全部桶名（含每个大洲）
func Buckets() []string {
	out := []string{
		BucketStates, BucketCounties, BucketCountries,
		BucketStateCategories, BucketCountyCategories, BucketCountryCategories,
	}
	for _, t := range continent.All {
		out = append(out, ContinentBucket(t))
	}
	return out
}

// ValidEntry 判断值是否可写入桶：二值桶为 "true"，类别桶与大洲桶为已知类别名
func ValidEntry(bucket, value string) bool {
	switch bucket {
	case BucketStates, BucketCounties, BucketCountries:
		b, err := strconv.ParseBool(value)
		return err == nil && b
	case BucketStateCategories, BucketCountyCategories, BucketCountryCategories:
		c, ok := ParseCategory(value)
		return ok && c != None
	}
	if t := continent.Tag(strings.TrimPrefix(bucket, continentBucketPrefix)); strings.HasPrefix(bucket, continentBucketPrefix) && t.Valid() {
		c, ok := ParseCategory(value)
		return ok && c != None
	}
	return false
}

// Persister：写穿透的持久化端；每次变更立即调用
type Persister interface {
	Put(ctx context.Context, bucket, id, value string) error
	Delete(ctx context.Context, bucket, id string) error
	Clear(ctx context.Context, bucket string) error
}

// Loader：启动时一次性读取各桶
type Loader interface {
	Load(ctx context.Context, bucket string) (map[string]string, error)
}

// StateRef：县所属州的 id（州图键）与 2 位 FIPS 代码（县 id 前缀）
type StateRef struct {
	ID   string
	Fips string
}

// 文档注释：着色存储
// 背景：持有州/县/国家三组“二值着色 + 类别”并行映射，以及按大洲划分的类别映射；显式对象替代全局可变映射，调用方持有引用。
// 约束：所有变更在互斥锁内同步完成，调用方看不到中间状态；持久化失败仅记录日志，内存状态为会话内权威；不校验 id，信任 region.Identify 的输出。
type Store struct {
	mu           sync.RWMutex
	colored      map[region.Kind]map[string]bool
	cats         map[region.Kind]map[string]Category
	continents   map[continent.Tag]map[string]Category
	countyTotals map[string]int
	persist      Persister
	timeout      time.Duration
}

// NewStore 创建空存储；p 为 nil 时仅保存在内存
func NewStore(p Persister) *Store {
	s := &Store{persist: p, timeout: 3 * time.Second}
	s.clearLocked()
	return s
}

func (s *Store) clearLocked() {
	s.colored = map[region.Kind]map[string]bool{
		region.KindState:   {},
		region.KindCounty:  {},
		region.KindCountry: {},
	}
	s.cats = map[region.Kind]map[string]Category{
		region.KindState:   {},
		region.KindCounty:  {},
		region.KindCountry: {},
	}
	s.continents = make(map[continent.Tag]map[string]Category, len(continent.All))
	for _, t := range continent.All {
		s.continents[t] = map[string]Category{}
	}
	if s.countyTotals == nil {
		s.countyTotals = map[string]int{}
	}
}

// 文档注释：启动时从持久化端恢复
// 约束：二值桶只接受可解析为 true 的值；类别桶忽略未知类别；单个桶读取失败即返回错误，已读取的桶保留。
func (s *Store) Restore(ctx context.Context, l Loader) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range Buckets() {
		vals, err := l.Load(ctx, b)
		if err != nil {
			return err
		}
		for id, v := range vals {
			s.restoreEntry(b, id, v)
		}
	}
	logger.L().Info("coloring_restored",
		"states", len(s.colored[region.KindState]),
		"counties", len(s.colored[region.KindCounty]),
		"countries", len(s.colored[region.KindCountry]),
	)
	return nil
}

func (s *Store) restoreEntry(bucket, id, v string) {
	if strings.HasPrefix(bucket, continentBucketPrefix) {
		t := continent.Tag(strings.TrimPrefix(bucket, continentBucketPrefix))
		if c, ok := ParseCategory(v); ok && c != None && t.Valid() {
			s.continents[t][id] = c
		}
		return
	}
	for _, k := range []region.Kind{region.KindState, region.KindCounty, region.KindCountry} {
		switch bucket {
		case coloredBucket(k):
			if b, err := strconv.ParseBool(v); err == nil && b {
				s.colored[k][id] = true
			}
			return
		case categoryBucket(k):
			if c, ok := ParseCategory(v); ok && c != None {
				s.cats[k][id] = c
			}
			return
		}
	}
}

// 文档注释：类别模式切换
// 背景：同一类别再次选择即清除（删除条目），不同类别直接覆盖；二值映射与类别映射并行维护，进度与填色读取二值映射。
// 约束：cat 为 None 时清除条目；清除时两个映射都删除该 id，不留下“已着色但无类别”的残留。
func (s *Store) ToggleCategory(kind region.Kind, id string, cat Category) Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggleCategoryLocked(kind, id, cat)
}

func (s *Store) toggleCategoryLocked(kind region.Kind, id string, cat Category) Category {
	cats, ok := s.cats[kind]
	if !ok {
		return None
	}
	next := cat
	if cats[id] == cat {
		next = None
	}
	s.setCategoryLocked(kind, id, next)
	return next
}

// setCategoryLocked 写入（next 非 None）或清除一个条目，二值映射与类别映射同步
func (s *Store) setCategoryLocked(kind region.Kind, id string, next Category) {
	cats, ok := s.cats[kind]
	if !ok {
		return
	}
	if next == None {
		delete(cats, id)
		delete(s.colored[kind], id)
		s.del(categoryBucket(kind), id)
		s.del(coloredBucket(kind), id)
		metrics.TogglesTotal.WithLabelValues(string(kind), "cleared").Inc()
	} else {
		cats[id] = next
		s.colored[kind][id] = true
		s.put(categoryBucket(kind), id, string(next))
		s.put(coloredBucket(kind), id, "true")
		metrics.TogglesTotal.WithLabelValues(string(kind), "set").Inc()
	}
	logger.L().Debug("coloring_toggle", "kind", kind, "id", id, "category", string(next))
}

// 文档注释：二值模式切换
// 约束：翻转为 false 时删除键而不是存 false，使映射键集恰好等于已着色 id 集合；返回切换后的着色状态。
func (s *Store) ToggleBinary(kind region.Kind, id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.toggleBinaryLocked(kind, id)
}

func (s *Store) toggleBinaryLocked(kind region.Kind, id string) bool {
	m, ok := s.colored[kind]
	if !ok {
		return false
	}
	if m[id] {
		delete(m, id)
		delete(s.cats[kind], id)
		s.del(coloredBucket(kind), id)
		s.del(categoryBucket(kind), id)
		metrics.TogglesTotal.WithLabelValues(string(kind), "cleared").Inc()
		logger.L().Debug("coloring_toggle", "kind", kind, "id", id, "colored", false)
		return false
	}
	m[id] = true
	s.put(coloredBucket(kind), id, "true")
	metrics.TogglesTotal.WithLabelValues(string(kind), "set").Inc()
	logger.L().Debug("coloring_toggle", "kind", kind, "id", id, "colored", true)
	return true
}

// 文档注释：县切换并重算所属州
// 背景：州着色当且仅当至少一个 FIPS 前缀匹配的县已着色；条目可能被重置等操作带外删除，因此每次全量扫描县映射而不是维护增量计数。
// 约束：cat 为 None 时走二值切换，否则走类别切换；state.Fips 为空时无法判定归属，跳过州重算；返回州的着色状态。
func (s *Store) ToggleCounty(id string, state StateRef, cat Category) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cat == None {
		s.toggleBinaryLocked(region.KindCounty, id)
	} else {
		s.toggleCategoryLocked(region.KindCounty, id, cat)
	}
	if state.Fips == "" || state.ID == "" {
		logger.L().Debug("coloring_state_recompute_skipped", "county", id, "state", state.ID)
		return s.colored[region.KindState][state.ID]
	}
	colored := s.anyCountyColoredLocked(state.Fips)
	states := s.colored[region.KindState]
	switch {
	case colored && !states[state.ID]:
		states[state.ID] = true
		s.put(BucketStates, state.ID, "true")
	case !colored && states[state.ID]:
		delete(states, state.ID)
		s.del(BucketStates, state.ID)
	}
	logger.L().Debug("coloring_state_recompute", "state", state.ID, "fips", state.Fips, "colored", colored)
	return colored
}

func (s *Store) anyCountyColoredLocked(fips string) bool {
	for cid, ok := range s.colored[region.KindCounty] {
		if ok && region.StateFipsFromID(cid) == fips {
			return true
		}
	}
	return false
}

// 文档注释：大洲视图下的类别切换
// 背景：大洲映射记录在该大洲视图中标记的国家；国家映射是进度与世界视图的依据。
// 约束：新类别只由大洲映射中的条目决定（同类别即清除），同一结果同时写入大洲映射与国家映射，两者不会分叉。
func (s *Store) ToggleContinent(t continent.Tag, id string, cat Category) Category {
	s.mu.Lock()
	defer s.mu.Unlock()
	m, ok := s.continents[t]
	if !ok {
		return None
	}
	next := cat
	if m[id] == cat {
		next = None
	}
	if next == None {
		delete(m, id)
		s.del(ContinentBucket(t), id)
		metrics.TogglesTotal.WithLabelValues("continent", "cleared").Inc()
	} else {
		m[id] = next
		s.put(ContinentBucket(t), id, string(next))
		metrics.TogglesTotal.WithLabelValues("continent", "set").Inc()
	}
	s.setCategoryLocked(region.KindCountry, id, next)
	logger.L().Debug("coloring_toggle", "kind", "continent", "continent", t, "id", id, "category", string(next))
	return next
}

// Reset 清空全部层级映射与大洲映射
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.clearLocked()
	if s.persist != nil {
		for _, b := range Buckets() {
			ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
			if err := s.persist.Clear(ctx, b); err != nil {
				metrics.PersistErrorsTotal.WithLabelValues("clear").Inc()
				logger.L().Warn("coloring_persist_error", "op", "clear", "bucket", b, "err", err)
			}
			cancel()
		}
	}
	metrics.ResetsTotal.Inc()
	logger.L().Info("coloring_reset")
}

// SetCountyTotals 记录每个州（FIPS）的县总数，用于州填色深浅
func (s *Store) SetCountyTotals(totals map[string]int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range totals {
		s.countyTotals[k] = v
	}
}

// Colored 查询二值着色状态
func (s *Store) Colored(kind region.Kind, id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.colored[kind][id]
}

// CategoryOf 查询类别；未着色时返回 None
func (s *Store) CategoryOf(kind region.Kind, id string) Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cats[kind][id]
}

// ContinentCategory 查询大洲映射中的类别
func (s *Store) ContinentCategory(t continent.Tag, id string) Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.continents[t][id]
}

// Snapshot 返回某层级二值映射的副本
func (s *Store) Snapshot(kind region.Kind) map[string]bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]bool, len(s.colored[kind]))
	for k, v := range s.colored[kind] {
		out[k] = v
	}
	return out
}

// CategorySnapshot 返回某层级类别映射的副本
func (s *Store) CategorySnapshot(kind region.Kind) map[string]Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Category, len(s.cats[kind]))
	for k, v := range s.cats[kind] {
		out[k] = v
	}
	return out
}

// ContinentSnapshot 返回某大洲映射的副本
func (s *Store) ContinentSnapshot(t continent.Tag) map[string]Category {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]Category, len(s.continents[t]))
	for k, v := range s.continents[t] {
		out[k] = v
	}
	return out
}

// CountyRatio：某州已着色县占比；县总数未知时以已记录县数为分母
func (s *Store) CountyRatio(fips string) float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.countyRatioLocked(fips)
}

func (s *Store) countyRatioLocked(fips string) float64 {
	if fips == "" {
		return 0
	}
	known, colored := 0, 0
	for cid, ok := range s.colored[region.KindCounty] {
		if region.StateFipsFromID(cid) != fips {
			continue
		}
		known++
		if ok {
			colored++
		}
	}
	total := s.countyTotals[fips]
	if total <= 0 {
		total = known
	}
	if total == 0 {
		return 0
	}
	r := float64(colored) / float64(total)
	if r > 1 {
		r = 1
	}
	return r
}

func (s *Store) put(bucket, id, value string) {
	if s.persist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.persist.Put(ctx, bucket, id, value); err != nil {
		metrics.PersistErrorsTotal.WithLabelValues("put").Inc()
		logger.L().Warn("coloring_persist_error", "op", "put", "bucket", bucket, "id", id, "err", err)
	}
}

func (s *Store) del(bucket, id string) {
	if s.persist == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
	defer cancel()
	if err := s.persist.Delete(ctx, bucket, id); err != nil {
		metrics.PersistErrorsTotal.WithLabelValues("delete").Inc()
		logger.L().Warn("coloring_persist_error", "op", "delete", "bucket", bucket, "id", id, "err", err)
	}
}

func coloredBucket(k region.Kind) string {
	switch k {
	case region.KindState:
		return BucketStates
	case region.KindCounty:
		return BucketCounties
	}
	return BucketCountries
}

func categoryBucket(k region.Kind) string {
	switch k {
	case region.KindState:
		return BucketStateCategories
	case region.KindCounty:
		return BucketCountyCategories
	}
	return BucketCountryCategories
}
