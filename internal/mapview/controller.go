// 包 mapview：地图视图状态机，串联过滤、识别、着色与视口计算
package mapview

import (
	"errors"
	"sync"

	"visitmap/internal/atlas"
	"visitmap/internal/coloring"
	"visitmap/internal/continent"
	"visitmap/internal/filter"
	"visitmap/internal/geo"
	"visitmap/internal/logger"
	"visitmap/internal/region"
	"visitmap/internal/viewport"
)

// Mode：地图模式
type Mode string

const (
	ModeWorld      Mode = "world"
	ModeContinents Mode = "continents"
	ModeStates     Mode = "states"
	ModeCounties   Mode = "counties"
)

var (
	ErrUnknownMode      = errors.New("mapview: unknown mode")
	ErrUnknownContinent = errors.New("mapview: unknown continent")
)

// ParseMode 解析模式名
func ParseMode(s string) (Mode, error) {
	switch m := Mode(s); m {
	case ModeWorld, ModeContinents, ModeStates, ModeCounties:
		return m, nil
	}
	return "", ErrUnknownMode
}

// 初始区域总数：州 50，县 3143
const (
	InitialStateCount  = 50
	InitialCountyCount = 3143
)

// RenderedRegion：交给渲染层的一个区域
type RenderedRegion struct {
	Key       string `json:"key"`
	ID        string `json:"id"`
	Name      string `json:"name"`
	StateFips string `json:"state_fips,omitempty"`
	Fill      string `json:"fill"`
	HoverFill string `json:"hover_fill"`
	Hovered   bool   `json:"hovered"`
}

// State：视图状态快照
type State struct {
	Mode              Mode              `json:"mode"`
	SelectedState     string            `json:"selected_state,omitempty"`
	SelectedStateFips string            `json:"selected_state_fips,omitempty"`
	Continent         continent.Tag     `json:"continent,omitempty"`
	Category          coloring.Category `json:"category,omitempty"`
	HoveredID         string            `json:"hovered_id,omitempty"`
	HoveredName       string            `json:"hovered_name,omitempty"`
	RegionCount       int               `json:"region_count"`
}

// 文档注释：视图控制器
// 背景：对应单个用户会话的事件模型（点击、悬停、模式切换、渲染），所有事件串行执行；着色存储与视口调度器由调用方持有并注入。
// 约束：过滤器的数量上报在 Render 持锁期间回调，因此回调写入走不加锁的内部方法；视口计算只在缩放范围（州内县 / 大洲）变化时重新调度。
type Controller struct {
	mu sync.Mutex

	store  *coloring.Store
	filter *filter.Filter
	sched  *viewport.Scheduler

	mode              Mode
	selectedState     string
	selectedStateFips string
	continent         continent.Tag
	category          coloring.Category
	hoveredID         string
	hoveredName       string
	regionCount       int
	lastScope         string
	totalsKnown       bool
}

// NewController 创建控制器；初始为州模式
func NewController(store *coloring.Store, sched *viewport.Scheduler, fallbackLimit int) *Controller {
	c := &Controller{store: store, sched: sched, mode: ModeStates, regionCount: InitialStateCount}
	c.filter = &filter.Filter{FallbackLimit: fallbackLimit, Report: c.setCountLocked}
	return c
}

// SetMode 切换模式：切到州或世界清除州选择；离开大洲模式清除当前大洲
func (c *Controller) SetMode(m Mode) {
	c.mu.Lock()
	defer c.mu.Unlock()
	prev := c.mode
	c.mode = m
	if m == ModeStates || m == ModeWorld {
		c.selectedState, c.selectedStateFips = "", ""
	}
	if m != ModeContinents {
		c.continent = ""
	}
	switch m {
	case ModeStates:
		c.regionCount = InitialStateCount
	case ModeCounties:
		if prev != ModeCounties {
			c.regionCount = InitialCountyCount
		}
	}
	c.hoveredID, c.hoveredName = "", ""
	logger.L().Debug("mapview_mode", "from", prev, "to", m)
}

// SetCategory 设置当前类别；None 表示未选择
func (c *Controller) SetCategory(cat coloring.Category) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.category = cat
}

// 文档注释：区域点击
// 背景：世界/大洲模式切换国家着色（未选类别时为二值切换）；大洲模式同时记录到当前大洲的映射。州模式要求已选类别，县模式未选类别时为二值切换。
// 约束：县模式未选州时点击即选州，fips 非空时一并记录；返回值表示是否发生了着色变更。
func (c *Controller) OnRegionClick(id, name, fips string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" {
		return false
	}
	switch c.mode {
	case ModeWorld, ModeContinents:
		if c.category == coloring.None {
			c.store.ToggleBinary(region.KindCountry, id)
		} else {
			if c.mode == ModeContinents && c.continent != "" {
				c.store.ToggleContinent(c.continent, id, c.category)
			} else {
				c.store.ToggleCategory(region.KindCountry, id, c.category)
			}
		}
		return true
	case ModeStates:
		if c.category == coloring.None {
			logger.L().Debug("mapview_click_ignored", "mode", c.mode, "id", id, "reason", "no_category")
			return false
		}
		c.store.ToggleCategory(region.KindState, id, c.category)
		return true
	case ModeCounties:
		if c.selectedState == "" {
			c.selectedState = id
			if fips != "" {
				c.selectedStateFips = fips
			}
			logger.L().Debug("mapview_state_selected", "state", id, "name", name, "fips", fips)
			return false
		}
		c.store.ToggleCounty(id, coloring.StateRef{ID: c.selectedState, Fips: c.selectedStateFips}, c.category)
		return true
	}
	return false
}

// 文档注释：签到着色
// 背景：由定位结果驱动，与点击走同一路径，但只着色不取消：区域在当前层级已着色时不做任何事。
// 约束：未选类别时使用 Visited；县模式未选州时签到结果为州，效果等同点击选州。
func (c *Controller) CheckIn(id, name, fips string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if id == "" {
		return false
	}
	kind := regionKindOf(c.geometryKindLocked())
	if kind != region.KindState || c.mode != ModeCounties {
		if c.store.Colored(kind, id) {
			return false
		}
	}
	cat := c.category
	if cat == coloring.None {
		cat = coloring.Visited
	}
	switch {
	case kind == region.KindCountry:
		if c.mode == ModeContinents && c.continent != "" && c.store.ContinentCategory(c.continent, id) == coloring.None {
			c.store.ToggleContinent(c.continent, id, cat)
		} else {
			c.store.ToggleCategory(region.KindCountry, id, cat)
		}
	case kind == region.KindState && c.mode == ModeCounties:
		c.selectedState = id
		if fips != "" {
			c.selectedStateFips = fips
		}
		return false
	case kind == region.KindState:
		c.store.ToggleCategory(region.KindState, id, cat)
	case kind == region.KindCounty:
		c.store.ToggleCounty(id, coloring.StateRef{ID: c.selectedState, Fips: c.selectedStateFips}, cat)
	}
	logger.L().Info("mapview_checkin", "kind", kind, "id", id, "name", name, "category", string(cat))
	return true
}

// BackToStateSelection 清除州选择
func (c *Controller) BackToStateSelection() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.selectedState, c.selectedStateFips = "", ""
}

// SelectContinent 设置当前大洲（仅大洲模式下生效于过滤）
func (c *Controller) SelectContinent(t continent.Tag) error {
	if !t.Valid() {
		return ErrUnknownContinent
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.continent = t
	return nil
}

// ClearContinent 清除当前大洲
func (c *Controller) ClearContinent() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.continent = ""
}

func (c *Controller) OnHoverEnter(id, name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hoveredID, c.hoveredName = id, name
}

func (c *Controller) OnHoverLeave() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.hoveredID, c.hoveredName = "", ""
}

// OnFilteredCountChanged 外部上报过滤后数量
func (c *Controller) OnFilteredCountChanged(n int) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.setCountLocked(n)
}

// setCountLocked 仅在数量变化时更新（调用方已持锁）
func (c *Controller) setCountLocked(n int) {
	if n == c.regionCount {
		return
	}
	logger.L().Debug("mapview_region_count", "from", c.regionCount, "to", n)
	c.regionCount = n
}

// Reset 清空着色并清除州/大洲选择
func (c *Controller) Reset() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.store.Reset()
	c.selectedState, c.selectedStateFips = "", ""
	c.continent = ""
	c.hoveredID, c.hoveredName = "", ""
	c.lastScope = ""
	if c.sched != nil {
		c.sched.Reset()
	}
}

// GeometryKind 返回当前应渲染的几何文档类型
func (c *Controller) GeometryKind() atlas.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.geometryKindLocked()
}

func (c *Controller) geometryKindLocked() atlas.Kind {
	switch {
	case c.mode == ModeWorld || c.mode == ModeContinents:
		return atlas.KindCountries
	case c.mode == ModeCounties && c.selectedState != "":
		return atlas.KindCounties
	}
	return atlas.KindStates
}

// RegionKind 返回当前点击/识别所用的区域层级
func (c *Controller) RegionKind() region.Kind {
	c.mu.Lock()
	defer c.mu.Unlock()
	return regionKindOf(c.geometryKindLocked())
}

func regionKindOf(k atlas.Kind) region.Kind {
	switch k {
	case atlas.KindCountries:
		return region.KindCountry
	case atlas.KindCounties:
		return region.KindCounty
	}
	return region.KindState
}

// Snapshot 返回当前视图状态
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State{
		Mode:              c.mode,
		SelectedState:     c.selectedState,
		SelectedStateFips: c.selectedStateFips,
		Continent:         c.continent,
		Category:          c.category,
		HoveredID:         c.hoveredID,
		HoveredName:       c.hoveredName,
		RegionCount:       c.regionCount,
	}
}

// Viewport 返回当前已应用的视口
func (c *Controller) Viewport() viewport.View {
	if c.sched == nil {
		return viewport.DefaultView()
	}
	return c.sched.Current()
}

// Progress 按当前模式统计进度
func (c *Controller) Progress() coloring.ProgressReport {
	c.mu.Lock()
	defer c.mu.Unlock()
	var colored map[string]bool
	switch c.mode {
	case ModeWorld:
		colored = c.store.Snapshot(region.KindCountry)
	case ModeContinents:
		if c.continent == "" {
			colored = c.store.Snapshot(region.KindCountry)
			break
		}
		colored = map[string]bool{}
		for id := range c.store.ContinentSnapshot(c.continent) {
			colored[id] = true
		}
	case ModeStates:
		colored = c.store.Snapshot(region.KindState)
	case ModeCounties:
		colored = c.store.Snapshot(region.KindCounty)
		if c.selectedStateFips != "" {
			for id := range colored {
				if region.StateFipsFromID(id) != c.selectedStateFips {
					delete(colored, id)
				}
			}
		}
	}
	return coloring.Progress(colored, c.regionCount)
}

// 文档注释：渲染当前视图
// 背景：features 为 GeometryKind 对应的完整文档；依次执行过滤、识别、填色，并在缩放范围变化时调度视口计算。
// 约束：过滤数量经 Report 回调写入 regionCount；无需缩放的范围将视口重置为默认。
func (c *Controller) Render(features []geo.Feature) []RenderedRegion {
	c.mu.Lock()
	defer c.mu.Unlock()

	gk := c.geometryKindLocked()
	kind := regionKindOf(gk)
	if kind == region.KindCounty && !c.totalsKnown {
		c.store.SetCountyTotals(countyTotals(features))
		c.totalsKnown = true
	}
	filtered := c.filter.Apply(features, c.filterViewLocked())

	stateColored := false
	if kind == region.KindCounty {
		stateColored = c.store.Colored(region.KindState, c.selectedState)
	}
	out := make([]RenderedRegion, 0, len(filtered))
	for _, f := range filtered {
		id, name := region.Identify(f, kind)
		r := RenderedRegion{Key: f.Key, ID: id, Name: name, Hovered: id != "" && id == c.hoveredID}
		var fill coloring.Fill
		switch kind {
		case region.KindCountry:
			cat := c.store.CategoryOf(region.KindCountry, id)
			if c.mode == ModeContinents && c.continent != "" {
				cat = c.store.ContinentCategory(c.continent, id)
			}
			fill = coloring.CountryFill(c.store.Colored(region.KindCountry, id), cat)
		case region.KindState:
			r.StateFips = region.StateFips(f)
			fill = coloring.StateFill(c.store.Colored(region.KindState, id), c.store.CountyRatio(r.StateFips))
		case region.KindCounty:
			r.StateFips = region.CountyStateFips(f)
			if r.StateFips == "" {
				r.StateFips = c.selectedStateFips
			}
			fill = coloring.CountyFill(c.store.Colored(region.KindCounty, id), stateColored)
		}
		r.Fill, r.HoverFill = fill.Base, fill.Hover
		out = append(out, r)
	}
	c.scheduleViewportLocked(filtered)
	return out
}

func (c *Controller) filterViewLocked() filter.View {
	v := filter.View{
		SelectedState:     c.selectedState,
		SelectedStateFips: c.selectedStateFips,
	}
	switch c.mode {
	case ModeWorld:
		v.Scope = filter.ScopeWorld
	case ModeContinents:
		v.Scope = filter.ScopeContinent
		v.Continent = c.continent
	case ModeStates:
		v.Scope = filter.ScopeStates
	case ModeCounties:
		v.Scope = filter.ScopeCounties
	}
	return v
}

func (c *Controller) scheduleViewportLocked(filtered []geo.Feature) {
	if c.sched == nil {
		return
	}
	scope := ""
	switch {
	case c.mode == ModeCounties && c.selectedState != "":
		scope = "counties:" + c.selectedState + ":" + c.selectedStateFips
	case c.mode == ModeContinents && c.continent != "":
		scope = "continent:" + string(c.continent)
	}
	if scope == c.lastScope {
		return
	}
	c.lastScope = scope
	switch {
	case scope == "":
		c.sched.Reset()
	case c.mode == ModeContinents:
		center, zoom := c.continent.DefaultView()
		c.sched.Set(viewport.View{Center: &center, Zoom: zoom})
		c.sched.Schedule(filtered, viewport.KindContinent)
	default:
		c.sched.Schedule(filtered, viewport.KindCountry)
	}
	logger.L().Debug("mapview_viewport_scope", "scope", scope, "features", len(filtered))
}

// countyTotals 统计每个州 FIPS 下的县数量
func countyTotals(features []geo.Feature) map[string]int {
	out := map[string]int{}
	for _, f := range features {
		if fips := region.CountyStateFips(f); fips != "" {
			out[fips]++
		}
	}
	return out
}
