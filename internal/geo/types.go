// 包 geo：地理要素的最小数据结构与文档解码（GeoJSON/TopoJSON），供区域识别、过滤与视口计算共享
package geo

import (
	"encoding/json"
	"math"
	"strconv"
	"strings"
)

// 文档注释：地理要素（边界 + 属性袋）
// 背景：统一承载国家/州/县等层级的要素记录；属性键名因数据源而异，由 region 包按优先级列表读取。
// 约束：Key 为文档内稳定的合成标识（geo-<序号>），仅作最低优先级的 id 来源；ID 为原始要素 id 的文本形式，缺失时为空。
type Feature struct {
	Key        string
	ID         string
	Properties map[string]any
	Geometry   Geometry
}

// Geometry：按 GeoJSON 约定的多面集合；每个多边形第一环为外环，其后为洞
type Geometry struct {
	Polygons []Polygon
}

type Polygon struct {
	Rings [][]Point
}

// 点坐标（WGS84，经度在前）
type Point struct {
	Lon float64
	Lat float64
}

// BBox：经纬度包围盒
type BBox struct {
	MinLon float64
	MinLat float64
	MaxLon float64
	MaxLat float64
}

// Center 返回包围盒的地理中心，经度折回 (-180, 180]
func (b BBox) Center() Point {
	return Point{Lon: NormalizeLon((b.MinLon + b.MaxLon) / 2), Lat: (b.MinLat + b.MaxLat) / 2}
}

// Prop 读取属性并转为文本；字符串去除首尾空白，数值按最短形式格式化，其余类型视为缺失
func (f Feature) Prop(key string) string {
	if f.Properties == nil {
		return ""
	}
	return Text(f.Properties[key])
}

// Text：将任意 JSON 标量转为文本
func Text(v any) string {
	switch x := v.(type) {
	case string:
		return strings.TrimSpace(x)
	case json.Number:
		return x.String()
	case float64:
		if math.IsNaN(x) || math.IsInf(x, 0) {
			return ""
		}
		return strconv.FormatFloat(x, 'f', -1, 64)
	case int:
		return strconv.Itoa(x)
	case int64:
		return strconv.FormatInt(x, 10)
	default:
		return ""
	}
}
