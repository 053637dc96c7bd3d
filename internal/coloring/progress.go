package coloring

import "math"

// ProgressReport：进度计数、百分比与提示语
type ProgressReport struct {
	Colored int     `json:"colored"`
	Total   int     `json:"total"`
	Percent float64 `json:"percent"`
	Message string  `json:"message"`
}

// Progress 统计映射中为 true 的条目；total<=0 时百分比为 0
func Progress(colored map[string]bool, total int) ProgressReport {
	n := 0
	for _, v := range colored {
		if v {
			n++
		}
	}
	pct := 0.0
	if total > 0 {
		pct = math.Round(float64(n)/float64(total)*1000) / 10
	}
	return ProgressReport{Colored: n, Total: total, Percent: pct, Message: progressMessage(n, pct)}
}

func progressMessage(n int, pct float64) string {
	switch {
	case n == 0:
		return "Get started!"
	case pct < 25:
		return "Great start! Keep coloring."
	case pct < 50:
		return "You're doing well! Keep going."
	case pct < 75:
		return "More than halfway done!"
	case pct < 100:
		return "Almost there!"
	}
	return "Perfect! You've colored all regions!"
}
