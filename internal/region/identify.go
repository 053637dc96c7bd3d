// 包 region：区域身份推导（规范 id 与显示名）与州 FIPS 代码提取
package region

import (
	"regexp"
	"strings"

	"visitmap/internal/geo"
)

// Kind：地图层级
type Kind string

const (
	KindCountry Kind = "country"
	KindState   Kind = "state"
	KindCounty  Kind = "county"
)

// 文档注释：属性访问优先级（按顺序尝试，首个非空值胜出）
// 背景：不同数据源对同一字段使用不同键名（Natural Earth 大写、world-atlas/us-atlas 小写）；以数据表形式声明，避免分散的条件分支。
// 约束：Natural Earth 用 "-99" 表示缺失的 ISO 代码，按缺失处理。
var (
	countryCodeKeys      = []string{"ISO_A3", "ISO_A2"}
	countryNameKeys      = []string{"NAME_LONG", "NAME", "NAME_EN", "ADMIN", "name"}
	countryLabelKeys     = []string{"NAME", "NAME_LONG", "NAME_EN", "ADMIN", "name"}
	countryLabelCodeKeys = []string{"ISO_A2", "ISO_A3"}
	stateNameKeys        = []string{"name", "NAME"}
	countyFipsKeys       = []string{"fips", "FIPS", "GEOID"}
	countyNameKeys       = []string{"name", "NAME"}
	countyStateKeys      = []string{"state", "STATE_NAME"}
)

var (
	fipsLike   = regexp.MustCompile(`^\d{1,5}$`)
	whitespace = regexp.MustCompile(`\s+`)
)

// 文档注释：推导要素的规范 id 与显示名
// 背景：着色映射以 id 为键，渲染与点击必须得到相同 id 才能正确往返；纯函数，同一输入恒得同一输出。
// 约束：县级识别仅在已选中州时有意义，由调用方决定传入的 kind；所有分支最终回落到合成键 f.Key。
func Identify(f geo.Feature, kind Kind) (id, name string) {
	switch kind {
	case KindState:
		v := first(f, stateNameKeys)
		return orElse(v, f.ID, f.Key), orElse(v, f.ID, f.Key)
	case KindCounty:
		return countyID(f), countyName(f)
	default:
		code := firstCode(f, countryCodeKeys)
		label := first(f, countryNameKeys)
		id = orElse(code, label, f.ID, f.Key)
		name = orElse(first(f, countryLabelKeys), firstCode(f, countryLabelCodeKeys), f.ID, f.Key)
		return id, name
	}
}

func countyID(f geo.Feature) string {
	if v := first(f, countyFipsKeys); v != "" {
		return v
	}
	if fipsLike.MatchString(f.ID) {
		return f.ID
	}
	state := first(f, countyStateKeys)
	name := first(f, countyNameKeys)
	if state != "" || name != "" {
		return whitespace.ReplaceAllString(state+"-"+name, "-")
	}
	return orElse(f.ID, f.Key)
}

func countyName(f geo.Feature) string {
	state := first(f, countyStateKeys)
	name := first(f, countyNameKeys)
	if state != "" && name != "" {
		return name + ", " + state
	}
	return orElse(name, state, f.ID, f.Key)
}

// CountryCodes 返回洲分类所需的 ISO-2、ISO-3 与国家名
func CountryCodes(f geo.Feature) (isoA2, isoA3, name string) {
	return firstCode(f, []string{"ISO_A2"}), firstCode(f, []string{"ISO_A3"}), first(f, countryLabelKeys)
}

// OwnerStateName 返回县要素声明的所属州名
func OwnerStateName(f geo.Feature) string { return first(f, countyStateKeys) }

func first(f geo.Feature, keys []string) string {
	for _, k := range keys {
		if v := f.Prop(k); v != "" {
			return v
		}
	}
	return ""
}

func firstCode(f geo.Feature, keys []string) string {
	for _, k := range keys {
		if v := f.Prop(k); v != "" && v != "-99" {
			return v
		}
	}
	return ""
}

func orElse(vals ...string) string {
	for _, v := range vals {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
