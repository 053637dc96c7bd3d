package coloring

// Category：着色类别；空值表示未选择类别
type Category string

const (
	None     Category = ""
	Visited  Category = "visited"
	Passed   Category = "passed"
	Favorite Category = "favorite"
	Want     Category = "want"
)

// Categories 按展示顺序列出全部类别
var Categories = []Category{Visited, Passed, Favorite, Want}

// ParseCategory 解析类别名；空串解析为 None
func ParseCategory(s string) (Category, bool) {
	if s == "" || s == "none" {
		return None, true
	}
	for _, c := range Categories {
		if string(c) == s {
			return c, true
		}
	}
	return None, false
}

// Label 返回类别显示名
func (c Category) Label() string {
	switch c {
	case Visited:
		return "Visited"
	case Passed:
		return "Passed Through"
	case Favorite:
		return "Favorite"
	case Want:
		return "Want to Visit"
	}
	return "None"
}

// Color 返回图例颜色
func (c Category) Color() string {
	switch c {
	case Visited:
		return "#3b82f6"
	case Passed:
		return "#eab308"
	case Favorite:
		return "#ec4899"
	case Want:
		return "#a855f7"
	}
	return "#6b7280"
}
