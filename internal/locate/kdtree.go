package locate

import "math"

// centroid：要素质心，idx 指向索引中的要素
type centroid struct {
	lon, lat float64
	idx      int
}

// 文档注释：KD-Tree 最近邻（二维经纬）
// 背景：点击点落在海岸线简化误差或小岛附近时 PIP 不命中，按最近质心兜底；半径上限避免远海误归属。
// 约束：经度/纬度交替分割；仅支持最近一个点查询。
type kdNode struct {
	c    centroid
	ax   int // 0:lon,1:lat
	l, r *kdNode
}

func buildKD(cs []centroid, depth int) *kdNode {
	if len(cs) == 0 {
		return nil
	}
	ax := depth % 2
	mid := len(cs) / 2
	selectNth(cs, mid, ax)
	return &kdNode{
		c:  cs[mid],
		ax: ax,
		l:  buildKD(cs[:mid], depth+1),
		r:  buildKD(cs[mid+1:], depth+1),
	}
}

// 原地 nth 元素选择
func selectNth(a []centroid, n, ax int) {
	lo, hi := 0, len(a)-1
	for lo < hi {
		p := partition(a, lo, hi, (lo+hi)/2, ax)
		if p == n {
			return
		}
		if n < p {
			hi = p - 1
		} else {
			lo = p + 1
		}
	}
}

func partition(a []centroid, lo, hi, pivot, ax int) int {
	pv := a[pivot]
	a[pivot], a[hi] = a[hi], a[pivot]
	i := lo
	for j := lo; j < hi; j++ {
		if less(a[j], pv, ax) {
			a[i], a[j] = a[j], a[i]
			i++
		}
	}
	a[i], a[hi] = a[hi], a[i]
	return i
}

func less(x, y centroid, ax int) bool {
	if ax == 0 {
		return x.lon < y.lon
	}
	return x.lat < y.lat
}

// nearest 返回最近质心与距离（千米）
func nearest(node *kdNode, lon, lat float64) (centroid, float64) {
	best := centroid{idx: -1}
	bestD := math.MaxFloat64
	var dfs func(n *kdNode)
	dfs = func(n *kdNode) {
		if n == nil {
			return
		}
		if d := haversine(lat, lon, n.c.lat, n.c.lon); d < bestD {
			bestD, best = d, n.c
		}
		key, q := lon, n.c.lon
		if n.ax == 1 {
			key, q = lat, n.c.lat
		}
		first, second := n.l, n.r
		if key > q {
			first, second = n.r, n.l
		}
		dfs(first)
		// 分割平面距离小于当前最优时才需要遍历另一侧（1° 约 111km）
		if math.Abs(key-q) < bestD/111.0 {
			dfs(second)
		}
	}
	dfs(node)
	return best, bestD
}

// 球面距离（Haversine），返回千米
func haversine(lat1, lon1, lat2, lon2 float64) float64 {
	const R = 6371.0
	dLat := (lat2 - lat1) * math.Pi / 180
	dLon := (lon2 - lon1) * math.Pi / 180
	a := math.Sin(dLat/2)*math.Sin(dLat/2) + math.Cos(lat1*math.Pi/180)*math.Cos(lat2*math.Pi/180)*math.Sin(dLon/2)*math.Sin(dLon/2)
	return R * 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))
}
