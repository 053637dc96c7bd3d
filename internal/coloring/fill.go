package coloring

import (
	"fmt"
	"math"
	"strconv"
)

// 基础色板
const (
	FillNone       = "#f3f4f6"
	FillNoneHover  = "#e5e7eb"
	FillColored    = "#4ade80"
	FillHover      = "#22c55e"
	FillStateLow   = "#a5f3d0"
	FillStateHigh  = "#4ade80"
	FillStateHover = "#86efac"
	FillTint       = "#d1fae5"
	FillTintHover  = "#a5f3d0"
)

// Fill：一次渲染使用的常态与悬停颜色
type Fill struct {
	Base  string
	Hover string
}

// StateFill 按已着色县占比在两个端点之间插值
func StateFill(colored bool, ratio float64) Fill {
	if !colored {
		return Fill{Base: FillNone, Hover: FillNoneHover}
	}
	return Fill{Base: Shade(FillStateLow, FillStateHigh, ratio), Hover: FillStateHover}
}

// CountyFill：县自身着色优先，其次为所属州已着色时的浅色
func CountyFill(colored, stateColored bool) Fill {
	switch {
	case colored:
		return Fill{Base: FillColored, Hover: FillHover}
	case stateColored:
		return Fill{Base: FillTint, Hover: FillTintHover}
	}
	return Fill{Base: FillNone, Hover: FillNoneHover}
}

// CountryFill 国家填色；有类别时使用类别色
func CountryFill(colored bool, cat Category) Fill {
	if cat != None {
		return Fill{Base: cat.Color(), Hover: cat.Color()}
	}
	if colored {
		return Fill{Base: FillColored, Hover: FillHover}
	}
	return Fill{Base: FillNone, Hover: FillNoneHover}
}

// Shade 在两个 #rrggbb 颜色间按 t∈[0,1] 线性插值；解析失败时返回 from
func Shade(from, to string, t float64) string {
	if math.IsNaN(t) || t < 0 {
		t = 0
	}
	if t > 1 {
		t = 1
	}
	a, okA := parseHex(from)
	b, okB := parseHex(to)
	if !okA || !okB {
		return from
	}
	var out [3]int
	for i := range out {
		out[i] = int(math.Round(float64(a[i]) + (float64(b[i])-float64(a[i]))*t))
	}
	return fmt.Sprintf("#%02x%02x%02x", out[0], out[1], out[2])
}

func parseHex(s string) ([3]int, bool) {
	var rgb [3]int
	if len(s) != 7 || s[0] != '#' {
		return rgb, false
	}
	for i := 0; i < 3; i++ {
		v, err := strconv.ParseUint(s[1+2*i:3+2*i], 16, 8)
		if err != nil {
			return rgb, false
		}
		rgb[i] = int(v)
	}
	return rgb, true
}
