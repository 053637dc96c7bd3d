// 包 filter：按当前视图范围收窄要素集合
package filter

import (
	"strings"

	"visitmap/internal/continent"
	"visitmap/internal/geo"
	"visitmap/internal/logger"
	"visitmap/internal/metrics"
	"visitmap/internal/region"
)

// Scope：过滤范围
type Scope string

const (
	ScopeWorld     Scope = "world"
	ScopeContinent Scope = "continent"
	ScopeStates    Scope = "states"
	ScopeCounties  Scope = "counties"
)

// View：执行过滤所需的视图上下文
type View struct {
	Scope             Scope
	SelectedState     string
	SelectedStateFips string
	Continent         continent.Tag
}

// DefaultFallbackLimit 大洲分类全部落空时回退展示的要素数
const DefaultFallbackLimit = 20

// 文档注释：区域过滤器
// 背景：每次执行恰好通过 Report 上报一次过滤后数量，作为进度总数的旁路通道，与返回列表分离。
// 约束：不修改输入切片；返回的切片可能与输入共享底层数组（恒等过滤时）。
type Filter struct {
	FallbackLimit int
	Report        func(int)
}

// Apply 按视图过滤要素
func (f *Filter) Apply(features []geo.Feature, v View) []geo.Feature {
	var out []geo.Feature
	switch v.Scope {
	case ScopeContinent:
		if v.Continent == "" {
			out = features
		} else {
			out = f.byContinent(features, v.Continent)
		}
	case ScopeCounties:
		if v.SelectedState == "" && v.SelectedStateFips == "" {
			// 未选州时调用方应传入州级要素
			out = features
		} else {
			out = byState(features, v.SelectedState, v.SelectedStateFips)
		}
	default:
		out = features
	}
	metrics.FilterRunsTotal.WithLabelValues(string(v.Scope)).Inc()
	logger.L().Debug("filter_applied", "scope", v.Scope, "in", len(features), "out", len(out))
	if f != nil && f.Report != nil {
		f.Report(len(out))
	}
	return out
}

func (f *Filter) byContinent(features []geo.Feature, tag continent.Tag) []geo.Feature {
	out := make([]geo.Feature, 0, len(features)/4)
	misses := 0
	for _, ft := range features {
		a2, a3, name := region.CountryCodes(ft)
		t, ok := continent.Classify(a2, a3, name)
		if !ok {
			misses++
			continue
		}
		if t == tag {
			out = append(out, ft)
		}
	}
	if misses > 0 {
		logger.L().Debug("filter_unclassified", "continent", tag, "count", misses)
	}
	if len(out) > 0 || len(features) == 0 {
		return out
	}
	limit := DefaultFallbackLimit
	if f != nil && f.FallbackLimit > 0 {
		limit = f.FallbackLimit
	}
	if limit > len(features) {
		limit = len(features)
	}
	metrics.FilterFallbackTotal.Inc()
	logger.L().Warn("filter_continent_fallback", "continent", tag, "limit", limit)
	return features[:limit:limit]
}

// byState：能算出州 FIPS 前缀的县只按 FIPS 匹配；算不出时才比较所属州名
func byState(features []geo.Feature, state, fips string) []geo.Feature {
	want := normalizeName(state)
	out := make([]geo.Feature, 0, 64)
	for _, ft := range features {
		if fips != "" {
			if code := region.CountyStateFips(ft); code != "" {
				if code == fips {
					out = append(out, ft)
				}
				continue
			}
		}
		if owner := normalizeName(region.OwnerStateName(ft)); owner != "" && owner == want {
			out = append(out, ft)
		}
	}
	return out
}

func normalizeName(s string) string { return strings.ToLower(strings.TrimSpace(s)) }
