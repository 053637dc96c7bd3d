package region

import (
	"regexp"
	"strings"

	"visitmap/internal/geo"
)

var (
	stateFipsKeys = []string{"fips", "FIPS", "STATEFP", "STATE"}
	digits        = regexp.MustCompile(`^\d+$`)
)

// 文档注释：州级要素的 2 位 FIPS 代码
// 背景：州 id 通常是州名，而县 id 是 5 位 FIPS；二者通过州 FIPS 前缀关联。
// 约束：优先显式 FIPS 属性（取前两位，不足两位左补零）；否则仅接受 1–2 位或 5 位数字的原始 id；均不满足时返回空。
func StateFips(f geo.Feature) string {
	for _, k := range stateFipsKeys {
		if v := f.Prop(k); v != "" {
			if len(v) >= 2 {
				return padLeft(v[:2], 2)
			}
			return padLeft(v, 2)
		}
	}
	return StateFipsFromID(f.ID)
}

// StateFipsFromID 从数字 id 推导州 FIPS：1–2 位左补零，4–5 位按 5 位县代码取前两位
func StateFipsFromID(id string) string {
	if !digits.MatchString(id) {
		return ""
	}
	switch len(id) {
	case 1, 2:
		return padLeft(id, 2)
	case 4, 5:
		return padLeft(id, 5)[:2]
	}
	return ""
}

// 文档注释：县要素所属州的 FIPS 前缀（用于过滤）
// 背景：us-atlas 县数据在 id 中携带 5 位 FIPS（如 "06001"），部分来源在属性 fips/GEOID 中携带。
// 约束：数字开头的 id 优先（补齐 5 位后取前两位）；其次 FIPS 属性；都没有时返回空，调用方改用州名匹配。
func CountyStateFips(f geo.Feature) string {
	id := f.ID
	if id == "" {
		id = f.Prop("id")
	}
	if id != "" && id[0] >= '0' && id[0] <= '9' {
		return padLeft(id, 5)[:2]
	}
	for _, k := range countyFipsKeys {
		if v := f.Prop(k); v != "" {
			return padLeft(v, 5)[:2]
		}
	}
	return ""
}

func padLeft(s string, n int) string {
	if len(s) >= n {
		return s
	}
	return strings.Repeat("0", n-len(s)) + s
}
