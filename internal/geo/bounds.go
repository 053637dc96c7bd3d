package geo

import "math"

// 文档注释：要素集合的联合包围盒
// 背景：视口拟合需要过滤后子集的经纬度范围；跨越 180° 经线的要素（如斐济、阿拉斯加群岛）按平移到 [0,360) 后的较窄范围计算。
// 约束：忽略 NaN/Inf 坐标；没有任何有效坐标时返回 ok=false，由调用方保留原视口。
func Bounds(features []Feature) (BBox, bool) {
	west := newAccum()
	east := newAccum()
	for i := range features {
		for _, poly := range features[i].Geometry.Polygons {
			for _, ring := range poly.Rings {
				for _, pt := range ring {
					if !finite(pt) {
						continue
					}
					west.add(pt.Lon, pt.Lat)
					lon := pt.Lon
					if lon < 0 {
						lon += 360
					}
					east.add(lon, pt.Lat)
				}
			}
		}
	}
	if west.n == 0 {
		return BBox{}, false
	}
	b := west.box()
	if eb := east.box(); eb.MaxLon-eb.MinLon < b.MaxLon-b.MinLon {
		b = eb
	}
	return b, true
}

// FeatureBounds 返回单个要素的包围盒
func FeatureBounds(f Feature) (BBox, bool) {
	return Bounds([]Feature{f})
}

// NormalizeLon 将经度折回 (-180, 180]
func NormalizeLon(lon float64) float64 {
	for lon > 180 {
		lon -= 360
	}
	for lon <= -180 {
		lon += 360
	}
	return lon
}

type accum struct {
	b BBox
	n int
}

func newAccum() *accum {
	return &accum{b: BBox{MinLon: math.Inf(1), MinLat: math.Inf(1), MaxLon: math.Inf(-1), MaxLat: math.Inf(-1)}}
}

func (a *accum) add(lon, lat float64) {
	a.n++
	a.b.MinLon = math.Min(a.b.MinLon, lon)
	a.b.MaxLon = math.Max(a.b.MaxLon, lon)
	a.b.MinLat = math.Min(a.b.MinLat, lat)
	a.b.MaxLat = math.Max(a.b.MaxLat, lat)
}

func (a *accum) box() BBox { return a.b }

func finite(p Point) bool {
	return !math.IsNaN(p.Lon) && !math.IsNaN(p.Lat) && !math.IsInf(p.Lon, 0) && !math.IsInf(p.Lat, 0)
}
