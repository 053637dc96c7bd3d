package api

import (
	"visitmap/internal/atlas"
	"visitmap/internal/coloring"
	"visitmap/internal/locate"
	"visitmap/internal/mapview"
)

// 文档注释：请求与返回结构（对外）
// 背景：前端按事件逐条提交（点击、悬停、模式切换），服务端保持会话状态；返回体尽量携带最新状态，减少前端二次拉取。
// 约束：字段稳定；新增字段需评估前端依赖。
type modeRequest struct {
	Mode string `json:"mode"`
}

type categoryRequest struct {
	Category string `json:"category"`
}

type regionRequest struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Fips string `json:"fips"`
}

type continentRequest struct {
	Continent string `json:"continent"`
}

type checkinRequest struct {
	IP  string   `json:"ip"`
	Lon *float64 `json:"lon"`
	Lat *float64 `json:"lat"`
}

type clickResponse struct {
	Changed bool          `json:"changed"`
	State   mapview.State `json:"state"`
}

type renderResponse struct {
	Kind        atlas.Kind               `json:"kind"`
	RegionCount int                      `json:"region_count"`
	Regions     []mapview.RenderedRegion `json:"regions"`
}

type checkinResponse struct {
	Source    string        `json:"source"`
	Region    locate.Result `json:"region"`
	Changed   bool          `json:"changed"`
	Duplicate bool          `json:"duplicate,omitempty"`
	State     mapview.State `json:"state"`
}

type categoryInfo struct {
	Name  coloring.Category `json:"name"`
	Label string            `json:"label"`
	Color string            `json:"color"`
}

type errorResponse struct {
	Error string `json:"error"`
}
