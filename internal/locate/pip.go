package locate

import "visitmap/internal/geo"

// 文档注释：点入多边形判定（Even-Odd）
// 背景：外环命中且不在任何洞内视为命中；多面结构逐个多边形判定。
// 约束：坐标为经纬度平面近似，边界上的点结果不稳定，由最近邻兜底。
func pointInPoly(pt geo.Point, poly geo.Polygon) bool {
	if len(poly.Rings) == 0 || !pointInRing(pt, poly.Rings[0]) {
		return false
	}
	for _, hole := range poly.Rings[1:] {
		if pointInRing(pt, hole) {
			return false
		}
	}
	return true
}

func pointInRing(pt geo.Point, ring []geo.Point) bool {
	n := len(ring)
	if n < 3 {
		return false
	}
	inside := false
	x, y := pt.Lon, pt.Lat
	for i, j := 0, n-1; i < n; j, i = i, i+1 {
		xi, yi := ring[i].Lon, ring[i].Lat
		xj, yj := ring[j].Lon, ring[j].Lat
		if (yi > y) != (yj > y) && x < (xj-xi)*(y-yi)/(yj-yi+1e-12)+xi {
			inside = !inside
		}
	}
	return inside
}

func inBBox(pt geo.Point, b geo.BBox) bool {
	return pt.Lon >= b.MinLon && pt.Lon <= b.MaxLon && pt.Lat >= b.MinLat && pt.Lat <= b.MaxLat
}
