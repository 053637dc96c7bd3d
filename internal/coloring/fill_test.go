package coloring

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestShade(t *testing.T) {
	assert.Equal(t, FillStateLow, Shade(FillStateLow, FillStateHigh, 0))
	assert.Equal(t, FillStateHigh, Shade(FillStateLow, FillStateHigh, 1))
	assert.Equal(t, FillStateHigh, Shade(FillStateLow, FillStateHigh, 7))
	assert.Equal(t, "#808080", Shade("#000000", "#ffffff", 0.5))
	assert.Equal(t, "bad", Shade("bad", "#ffffff", 0.5))
}

func TestFills(t *testing.T) {
	assert.Equal(t, Fill{FillNone, FillNoneHover}, StateFill(false, 1))
	assert.Equal(t, Fill{FillStateLow, FillStateHover}, StateFill(true, 0))

	assert.Equal(t, Fill{FillColored, FillHover}, CountyFill(true, false))
	assert.Equal(t, Fill{FillTint, FillTintHover}, CountyFill(false, true))
	assert.Equal(t, Fill{FillNone, FillNoneHover}, CountyFill(false, false))

	assert.Equal(t, Fill{FillColored, FillHover}, CountryFill(true, None))
	assert.Equal(t, Visited.Color(), CountryFill(true, Visited).Base)
}

func TestProgress(t *testing.T) {
	cases := []struct {
		colored int
		total   int
		msg     string
	}{
		{0, 50, "Get started!"},
		{5, 50, "Great start! Keep coloring."},
		{15, 50, "You're doing well! Keep going."},
		{30, 50, "More than halfway done!"},
		{45, 50, "Almost there!"},
		{50, 50, "Perfect! You've colored all regions!"},
	}
	for _, c := range cases {
		m := map[string]bool{"off": false}
		for i := 0; i < c.colored; i++ {
			m[string(rune('a'+i%26))+string(rune('A'+i/26))] = true
		}
		r := Progress(m, c.total)
		assert.Equal(t, c.colored, r.Colored)
		assert.Equal(t, c.msg, r.Message)
	}
	assert.Zero(t, Progress(map[string]bool{"x": true}, 0).Percent)
}
