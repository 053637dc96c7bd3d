// 包 locate：坐标/IP 到地图区域的定位（用于 check-in 着色）
package locate

import (
	"math"
	"sync"
	"time"

	"visitmap/internal/geo"
	"visitmap/internal/logger"
	"visitmap/internal/metrics"
	"visitmap/internal/region"
	"visitmap/internal/utils"
)

// Result：定位结果；Approx 表示非 PIP 精确命中（最近质心兜底）
type Result struct {
	ID         string      `json:"id"`
	Name       string      `json:"name"`
	Kind       region.Kind `json:"kind"`
	Approx     bool        `json:"approx"`
	DistanceKm float64     `json:"distance_km,omitempty"`
}

type index struct {
	first *geo.Feature
	n     int
	feats []geo.Feature
	boxes []geo.BBox
	ids   []string
	names []string
	kd    *kdNode
}

// 文档注释：区域定位器（包围盒候选 → PIP 命中 → 最近质心兜底）
// 背景：要素集合由调用方传入（与渲染使用同一份），按类型缓存构建好的索引；集合变化时重建索引并清空结果缓存。
// 约束：最近邻仅在 radiusKm 内生效；结果以 类型+geohash(6) 为键缓存。
type Locator struct {
	mu       sync.Mutex
	indexes  map[region.Kind]*index
	cache    *LRU
	radiusKm float64
}

func NewLocator(ttl time.Duration, radiusKm float64) *Locator {
	if ttl <= 0 {
		ttl = time.Hour
	}
	if radiusKm <= 0 {
		radiusKm = 50
	}
	return &Locator{indexes: map[region.Kind]*index{}, cache: NewLRU(4096, ttl), radiusKm: radiusKm}
}

// NewFromEnv 读取 LOCATE_CACHE_TTL_S 与 LOCATE_RADIUS_KM
func NewFromEnv() *Locator {
	return NewLocator(utils.EnvSeconds("LOCATE_CACHE_TTL_S", 3600), utils.EnvFloat("LOCATE_RADIUS_KM", 50))
}

// RegionAt 返回坐标所在的区域
func (l *Locator) RegionAt(features []geo.Feature, kind region.Kind, lon, lat float64) (Result, bool) {
	if math.IsNaN(lon) || math.IsNaN(lat) || math.IsInf(lon, 0) || math.IsInf(lat, 0) || lat < -90 || lat > 90 {
		return Result{}, false
	}
	lon = geo.NormalizeLon(lon)
	idx := l.indexFor(kind, features)
	if idx == nil {
		metrics.LocateTotal.WithLabelValues("miss").Inc()
		return Result{}, false
	}
	key := string(kind) + ":" + encodeGeohash(lat, lon, 6)
	if r, ok := l.cache.Get(key); ok {
		metrics.LocateTotal.WithLabelValues("cache").Inc()
		return r, true
	}
	pt := geo.Point{Lon: lon, Lat: lat}
	for i := range idx.feats {
		if !inBBox(pt, idx.boxes[i]) {
			continue
		}
		for _, p := range idx.feats[i].Geometry.Polygons {
			if pointInPoly(pt, p) {
				r := Result{ID: idx.ids[i], Name: idx.names[i], Kind: kind}
				l.cache.Set(key, r)
				metrics.LocateTotal.WithLabelValues("hit").Inc()
				logger.L().Debug("locate_hit", "kind", kind, "id", r.ID)
				return r, true
			}
		}
	}
	if idx.kd != nil {
		c, d := nearest(idx.kd, lon, lat)
		if c.idx >= 0 && d <= l.radiusKm {
			r := Result{ID: idx.ids[c.idx], Name: idx.names[c.idx], Kind: kind, Approx: true, DistanceKm: d}
			l.cache.Set(key, r)
			metrics.LocateTotal.WithLabelValues("nearest").Inc()
			logger.L().Debug("locate_nearest", "kind", kind, "id", r.ID, "km", d)
			return r, true
		}
	}
	metrics.LocateTotal.WithLabelValues("miss").Inc()
	return Result{}, false
}

func (l *Locator) indexFor(kind region.Kind, features []geo.Feature) *index {
	if len(features) == 0 {
		return nil
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if idx, ok := l.indexes[kind]; ok && idx.first == &features[0] && idx.n == len(features) {
		return idx
	}
	idx := buildIndex(kind, features)
	l.indexes[kind] = idx
	l.cache.Purge()
	logger.L().Debug("locate_index_built", "kind", kind, "features", len(features))
	return idx
}

func buildIndex(kind region.Kind, features []geo.Feature) *index {
	idx := &index{
		first: &features[0],
		n:     len(features),
		feats: features,
		boxes: make([]geo.BBox, len(features)),
		ids:   make([]string, len(features)),
		names: make([]string, len(features)),
	}
	var cs []centroid
	for i, f := range features {
		idx.ids[i], idx.names[i] = region.Identify(f, kind)
		idx.boxes[i] = rawBox(f)
		if c, ok := featureCentroid(f); ok {
			c.idx = i
			cs = append(cs, c)
		}
	}
	idx.kd = buildKD(cs, 0)
	return idx
}

// rawBox 不做跨经线处理的包围盒，与 PIP 使用同一坐标
func rawBox(f geo.Feature) geo.BBox {
	b := geo.BBox{MinLon: math.Inf(1), MinLat: math.Inf(1), MaxLon: math.Inf(-1), MaxLat: math.Inf(-1)}
	for _, p := range f.Geometry.Polygons {
		for _, r := range p.Rings {
			for _, pt := range r {
				b.MinLon = math.Min(b.MinLon, pt.Lon)
				b.MaxLon = math.Max(b.MaxLon, pt.Lon)
				b.MinLat = math.Min(b.MinLat, pt.Lat)
				b.MaxLat = math.Max(b.MaxLat, pt.Lat)
			}
		}
	}
	return b
}

// featureCentroid 取顶点最多的外环的顶点均值
func featureCentroid(f geo.Feature) (centroid, bool) {
	var best []geo.Point
	for _, p := range f.Geometry.Polygons {
		if len(p.Rings) > 0 && len(p.Rings[0]) > len(best) {
			best = p.Rings[0]
		}
	}
	if len(best) == 0 {
		return centroid{}, false
	}
	var sx, sy float64
	for _, pt := range best {
		sx += pt.Lon
		sy += pt.Lat
	}
	n := float64(len(best))
	return centroid{lon: sx / n, lat: sy / n}, true
}
