// 包 viewport：把过滤后的要素子集适配到像素视口（中心 + 缩放）
package viewport

import (
	"math"

	"visitmap/internal/geo"
)

// Projection：经纬度到像素；ok=false 表示该点落在投影的可见区域之外
type Projection interface {
	Project(p geo.Point) (x, y float64, ok bool)
}

// 参考画布尺寸：渲染层在该尺寸下绘制，再整体缩放
const (
	RefWidth  = 960.0
	RefHeight = 500.0
)

// Linear：大洲视图使用的经纬度线性近似，参考画布固定为 960×500
type Linear struct{}

func (Linear) Project(p geo.Point) (float64, float64, bool) {
	return (p.Lon + 180) * RefWidth / 360, (90 - p.Lat) * RefHeight / 180, true
}

// 文档注释：圆锥等积投影
// 背景：与渲染层的 geoConicEqualArea 参数保持一致（旋转、中心、标准纬线、缩放、平移），视口计算才能与绘制结果对齐。
// 约束：角度参数以度为单位；n 接近 0 时退化为圆柱等积的情形未实现，调用方需给出不对称的标准纬线。
type conicEqualArea struct {
	rotate float64
	n, c   float64
	r0     float64
	k      float64
	tx, ty float64
	cx, cy float64
}

func newConicEqualArea(rotate, centerLon, centerLat, p0, p1, scale, tx, ty float64) *conicEqualArea {
	sy0 := math.Sin(rad(p0))
	n := (sy0 + math.Sin(rad(p1))) / 2
	c := 1 + sy0*(2*n-sy0)
	p := &conicEqualArea{rotate: rotate, n: n, c: c, r0: math.Sqrt(c) / n, k: scale, tx: tx, ty: ty}
	p.cx, p.cy = p.raw(rad(centerLon), rad(centerLat))
	return p
}

func (p *conicEqualArea) raw(lambda, phi float64) (float64, float64) {
	r := math.Sqrt(math.Max(0, p.c-2*p.n*math.Sin(phi))) / p.n
	lambda *= p.n
	return r * math.Sin(lambda), p.r0 - r*math.Cos(lambda)
}

func (p *conicEqualArea) Project(pt geo.Point) (float64, float64, bool) {
	lambda := rad(pt.Lon + p.rotate)
	if lambda > math.Pi {
		lambda -= 2 * math.Pi
	} else if lambda < -math.Pi {
		lambda += 2 * math.Pi
	}
	x, y := p.raw(lambda, rad(pt.Lat))
	return p.tx + p.k*(x-p.cx), p.ty - p.k*(y-p.cy), true
}

type extent struct{ x0, y0, x1, y1 float64 }

func (e extent) contains(x, y float64) bool {
	return x >= e.x0 && x < e.x1 && y >= e.y0 && y < e.y1
}

// 文档注释：美国本土 + 阿拉斯加 + 夏威夷的复合投影
// 背景：渲染层以 geoAlbersUsa 绘制州/县地图；三个子投影各自有裁剪窗口，点按经纬度范围选择子投影。
// 约束：依次尝试本土、阿拉斯加、夏威夷，取第一个投影结果落在自身裁剪窗口内的子投影；都不满足的点视为不可见。
type AlbersUsa struct {
	lower48, alaska, hawaii *conicEqualArea
	l48Clip, akClip, hiClip extent
}

// DefaultAlbersUsa 返回渲染层默认参数（scale 1070，平移到参考画布中心）
func DefaultAlbersUsa() *AlbersUsa { return NewAlbersUsa(1070, RefWidth/2, RefHeight/2) }

func NewAlbersUsa(k, x, y float64) *AlbersUsa {
	return &AlbersUsa{
		lower48: newConicEqualArea(96, -0.6, 38.7, 29.5, 45.5, k, x, y),
		alaska:  newConicEqualArea(154, -2, 58.5, 55, 65, k*0.35, x-0.307*k, y+0.201*k),
		hawaii:  newConicEqualArea(157, -3, 19.9, 8, 18, k, x-0.205*k, y+0.212*k),
		l48Clip: extent{x - 0.455*k, y - 0.238*k, x + 0.455*k, y + 0.238*k},
		akClip:  extent{x - 0.425*k, y + 0.120*k, x - 0.214*k, y + 0.234*k},
		hiClip:  extent{x - 0.214*k, y + 0.166*k, x - 0.115*k, y + 0.234*k},
	}
}

func (a *AlbersUsa) Project(p geo.Point) (float64, float64, bool) {
	if x, y, _ := a.lower48.Project(p); a.l48Clip.contains(x, y) {
		return x, y, true
	}
	if x, y, _ := a.alaska.Project(p); a.akClip.contains(x, y) {
		return x, y, true
	}
	if x, y, _ := a.hawaii.Project(p); a.hiClip.contains(x, y) {
		return x, y, true
	}
	return 0, 0, false
}

func rad(d float64) float64 { return d * math.Pi / 180 }
