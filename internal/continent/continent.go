// 包 continent：国家到大洲的静态映射与分类
package continent

import (
	"strings"

	"visitmap/internal/geo"
)

// Tag：六个固定的大洲标签
type Tag string

const (
	Asia         Tag = "asia"
	Europe       Tag = "europe"
	Africa       Tag = "africa"
	NorthAmerica Tag = "north-america"
	SouthAmerica Tag = "south-america"
	Oceania      Tag = "oceania"
)

// All 按展示顺序列出全部大洲
var All = []Tag{Asia, Europe, Africa, NorthAmerica, SouthAmerica, Oceania}

// Valid 判断标签是否为已知大洲
func (t Tag) Valid() bool {
	for _, v := range All {
		if v == t {
			return true
		}
	}
	return false
}

// Name 返回大洲显示名
func (t Tag) Name() string { return displayNames[t] }

// DefaultView 返回拟合完成前使用的默认中心与缩放
func (t Tag) DefaultView() (geo.Point, float64) {
	v, ok := defaultViews[t]
	if !ok {
		return geo.Point{}, 1
	}
	return v.center, v.zoom
}

// 文档注释：国家所属大洲分类
// 背景：世界地图数据源字段不一（Natural Earth 带 ISO 代码，world-atlas 仅有名称），按 ISO-2 → ISO-3 → 名称精确 → 名称双向包含 的顺序查找。
// 约束：查不到时返回 ok=false，调用方将其视为“未分类”排除出大洲视图，不做猜测；名称包含匹配按表顺序进行，结果确定。
func Classify(isoA2, isoA3, name string) (Tag, bool) {
	if t, ok := byISO2[strings.TrimSpace(isoA2)]; ok && isoA2 != "" {
		return t, true
	}
	if t, ok := byISO3[strings.TrimSpace(isoA3)]; ok && isoA3 != "" {
		return t, true
	}
	n := strings.TrimSpace(name)
	if n == "" {
		return "", false
	}
	if t, ok := byName[n]; ok {
		return t, true
	}
	for _, e := range nameTable {
		if strings.Contains(n, e.name) || strings.Contains(e.name, n) {
			return e.tag, true
		}
	}
	return "", false
}

type view struct {
	center geo.Point
	zoom   float64
}

var displayNames = map[Tag]string{
	Asia:         "Asia",
	Europe:       "Europe",
	Africa:       "Africa",
	NorthAmerica: "North America",
	SouthAmerica: "South America",
	Oceania:      "Oceania",
}

var defaultViews = map[Tag]view{
	Asia:         {geo.Point{Lon: 100, Lat: 35}, 1.2},
	Europe:       {geo.Point{Lon: 15, Lat: 55}, 2.0},
	Africa:       {geo.Point{Lon: 20, Lat: 0}, 1.3},
	NorthAmerica: {geo.Point{Lon: -100, Lat: 40}, 1.5},
	SouthAmerica: {geo.Point{Lon: -60, Lat: -15}, 1.8},
	Oceania:      {geo.Point{Lon: 150, Lat: -25}, 2.5},
}
