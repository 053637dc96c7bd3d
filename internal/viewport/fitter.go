package viewport

import (
	"errors"
	"math"

	"visitmap/internal/geo"
)

// Kind：视口适配场景
type Kind string

const (
	// KindCountry：国家内部（州内县），AlbersUsa 投影
	KindCountry Kind = "country"
	// KindContinent：大洲，线性近似投影
	KindContinent Kind = "continent"
)

var (
	ErrNoBounds  = errors.New("viewport: no finite bounds")
	ErrProjected = errors.New("viewport: bounds outside projection")
)

// Size：渲染表面的像素尺寸；零值按参考画布尺寸处理
type Size struct {
	Width  float64
	Height float64
}

// View：发布给渲染层的中心（经纬度）与缩放；Center 为 nil 表示使用默认视图
type View struct {
	Center *geo.Point `json:"center"`
	Zoom   float64    `json:"zoom"`
}

// DefaultView 未缩放的初始视图
func DefaultView() View { return View{Zoom: 1} }

// 文档注释：视口适配器
// 背景：渲染层的缩放以参考画布为基准，因此投影宽高在参考画布坐标下计算，再与容器可用区域比较。
// 约束：Margin 为单侧留白比例；国家内部缩放下限 CountryMin，大洲缩放夹在 [ContinentMin, ContinentMax]；计算失败返回错误，调用方保留旧视图。
type Fitter struct {
	Margin       float64
	CountryMin   float64
	ContinentMin float64
	ContinentMax float64
	Albers       Projection
	Linear       Projection
}

// NewFitter 以渲染层默认参数创建适配器
func NewFitter() *Fitter {
	return &Fitter{
		Margin:       0.175,
		CountryMin:   1,
		ContinentMin: 0.8,
		ContinentMax: 8,
		Albers:       DefaultAlbersUsa(),
		Linear:       Linear{},
	}
}

// Fit 计算要素子集的视图
func (f *Fitter) Fit(features []geo.Feature, size Size, kind Kind) (View, error) {
	box, ok := geo.Bounds(features)
	if !ok {
		return View{}, ErrNoBounds
	}
	return f.FitBox(box, size, kind)
}

// FitBox 对给定包围盒计算视图：投影左上与右下两角，取宽高两个方向缩放比的较小者
func (f *Fitter) FitBox(box geo.BBox, size Size, kind Kind) (View, error) {
	proj := f.Albers
	if kind == KindContinent {
		proj = f.Linear
	}
	x0, y0, ok0 := proj.Project(geo.Point{Lon: box.MinLon, Lat: box.MaxLat})
	x1, y1, ok1 := proj.Project(geo.Point{Lon: box.MaxLon, Lat: box.MinLat})
	if !ok0 || !ok1 {
		return View{}, ErrProjected
	}
	w, h := size.Width, size.Height
	if w <= 0 {
		w = RefWidth
	}
	if h <= 0 {
		h = RefHeight
	}
	zoom := math.Min(
		w*(1-2*f.Margin)/math.Abs(x1-x0),
		h*(1-2*f.Margin)/math.Abs(y1-y0),
	)
	if kind == KindContinent {
		zoom = math.Max(f.ContinentMin, math.Min(zoom, f.ContinentMax))
	} else {
		zoom = math.Max(zoom, f.CountryMin)
	}
	if math.IsNaN(zoom) || math.IsInf(zoom, 0) {
		return View{}, ErrProjected
	}
	c := box.Center()
	return View{Center: &c, Zoom: zoom}, nil
}
