package mapview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitmap/internal/atlas"
	"visitmap/internal/coloring"
	"visitmap/internal/continent"
	"visitmap/internal/geo"
	"visitmap/internal/region"
	"visitmap/internal/viewport"
)

func square(minLon, minLat, maxLon, maxLat float64) geo.Geometry {
	ring := []geo.Point{
		{Lon: minLon, Lat: minLat}, {Lon: maxLon, Lat: minLat},
		{Lon: maxLon, Lat: maxLat}, {Lon: minLon, Lat: maxLat},
		{Lon: minLon, Lat: minLat},
	}
	return geo.Geometry{Polygons: []geo.Polygon{{Rings: [][]geo.Point{ring}}}}
}

func stateFeature(fips, name string) geo.Feature {
	return geo.Feature{Key: "s" + fips, ID: fips, Properties: map[string]any{"name": name}, Geometry: square(-120, 33, -116, 37)}
}

func countyFeature(fips string) geo.Feature {
	return geo.Feature{Key: "c" + fips, ID: fips, Properties: map[string]any{"name": "c" + fips}, Geometry: square(-120, 33, -119, 34)}
}

func countryFeature(a2, name string, g geo.Geometry) geo.Feature {
	return geo.Feature{Key: "w" + a2, Properties: map[string]any{"ISO_A2": a2, "NAME": name}, Geometry: g}
}

func newController(t *testing.T) (*Controller, *coloring.Store) {
	t.Helper()
	st := coloring.NewStore(nil)
	sched := viewport.NewScheduler(viewport.NewFitter(), nil, time.Millisecond)
	return NewController(st, sched, 0), st
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("counties")
	require.NoError(t, err)
	assert.Equal(t, ModeCounties, m)
	_, err = ParseMode("galaxy")
	assert.ErrorIs(t, err, ErrUnknownMode)
}

func TestStatesClick_RequiresCategory(t *testing.T) {
	c, st := newController(t)
	assert.False(t, c.OnRegionClick("California", "California", "06"))
	assert.False(t, st.Colored(region.KindState, "California"))

	c.SetCategory(coloring.Visited)
	assert.True(t, c.OnRegionClick("California", "California", "06"))
	assert.True(t, st.Colored(region.KindState, "California"))
	assert.Equal(t, coloring.Visited, st.CategoryOf(region.KindState, "California"))

	assert.True(t, c.OnRegionClick("California", "California", "06"))
	assert.False(t, st.Colored(region.KindState, "California"))
}

func TestCounties_SelectThenColor(t *testing.T) {
	c, st := newController(t)
	c.SetMode(ModeCounties)
	c.SetCategory(coloring.Visited)
	assert.Equal(t, atlas.KindStates, c.GeometryKind())

	assert.False(t, c.OnRegionClick("California", "California", "06"))
	s := c.Snapshot()
	assert.Equal(t, "California", s.SelectedState)
	assert.Equal(t, "06", s.SelectedStateFips)
	assert.Equal(t, atlas.KindCounties, c.GeometryKind())
	assert.Equal(t, region.KindCounty, c.RegionKind())

	assert.True(t, c.OnRegionClick("06001", "Alameda", ""))
	assert.True(t, st.Colored(region.KindCounty, "06001"))
	assert.True(t, st.Colored(region.KindState, "California"))

	assert.True(t, c.OnRegionClick("06001", "Alameda", ""))
	assert.False(t, st.Colored(region.KindCounty, "06001"))
	assert.False(t, st.Colored(region.KindState, "California"))
}

func TestWorldClick_BinaryWithoutCategory(t *testing.T) {
	c, st := newController(t)
	c.SetMode(ModeWorld)
	assert.True(t, c.OnRegionClick("FR", "France", ""))
	assert.True(t, st.Colored(region.KindCountry, "FR"))
	assert.Equal(t, coloring.None, st.CategoryOf(region.KindCountry, "FR"))
	assert.True(t, c.OnRegionClick("FR", "France", ""))
	assert.False(t, st.Colored(region.KindCountry, "FR"))
}

func TestContinentClick_RecordsContinentCategory(t *testing.T) {
	c, st := newController(t)
	c.SetMode(ModeContinents)
	require.NoError(t, c.SelectContinent(continent.Europe))
	c.SetCategory(coloring.Favorite)
	assert.True(t, c.OnRegionClick("FR", "France", ""))
	assert.Equal(t, coloring.Favorite, st.ContinentCategory(continent.Europe, "FR"))
	assert.Equal(t, coloring.Favorite, st.CategoryOf(region.KindCountry, "FR"))

	assert.ErrorIs(t, c.SelectContinent("atlantis"), ErrUnknownContinent)
}

func TestContinentClick_CountryColoredInWorldView(t *testing.T) {
	c, st := newController(t)
	c.SetCategory(coloring.Visited)
	assert.True(t, c.OnRegionClick("JP", "Japan", ""))

	c.SetMode(ModeContinents)
	require.NoError(t, c.SelectContinent(continent.Asia))
	assert.True(t, c.OnRegionClick("JP", "Japan", ""))
	assert.True(t, st.Colored(region.KindCountry, "JP"))
	assert.Equal(t, coloring.Visited, st.CategoryOf(region.KindCountry, "JP"))
	assert.Equal(t, coloring.Visited, st.ContinentCategory(continent.Asia, "JP"))
	assert.Equal(t, 1, c.Progress().Colored)

	assert.True(t, c.OnRegionClick("JP", "Japan", ""))
	assert.False(t, st.Colored(region.KindCountry, "JP"))
	assert.Equal(t, coloring.None, st.ContinentCategory(continent.Asia, "JP"))
	assert.Equal(t, 0, c.Progress().Colored)
}

func TestSetMode_ClearsSelection(t *testing.T) {
	c, _ := newController(t)
	c.SetMode(ModeCounties)
	c.OnRegionClick("Texas", "Texas", "48")
	c.OnHoverEnter("48201", "Harris")
	c.SetMode(ModeStates)
	s := c.Snapshot()
	assert.Empty(t, s.SelectedState)
	assert.Empty(t, s.SelectedStateFips)
	assert.Empty(t, s.HoveredID)
	assert.Equal(t, InitialStateCount, s.RegionCount)

	c.SetMode(ModeContinents)
	require.NoError(t, c.SelectContinent(continent.Asia))
	c.SetMode(ModeWorld)
	assert.Empty(t, c.Snapshot().Continent)
}

func TestBackToStateSelection(t *testing.T) {
	c, _ := newController(t)
	c.SetMode(ModeCounties)
	c.OnRegionClick("Texas", "Texas", "48")
	c.BackToStateSelection()
	assert.Empty(t, c.Snapshot().SelectedState)
	assert.Equal(t, atlas.KindStates, c.GeometryKind())
}

func TestHover(t *testing.T) {
	c, _ := newController(t)
	c.OnHoverEnter("California", "California")
	out := c.Render([]geo.Feature{stateFeature("06", "California"), stateFeature("48", "Texas")})
	require.Len(t, out, 2)
	assert.True(t, out[0].Hovered)
	assert.False(t, out[1].Hovered)
	c.OnHoverLeave()
	assert.Empty(t, c.Snapshot().HoveredName)
}

func TestRender_CountiesFilterAndCount(t *testing.T) {
	c, _ := newController(t)
	c.SetMode(ModeCounties)
	c.SetCategory(coloring.Visited)
	c.OnRegionClick("California", "California", "06")
	c.OnRegionClick("06002", "c06002", "")

	counties := []geo.Feature{countyFeature("06001"), countyFeature("06002"), countyFeature("06003"), countyFeature("48201")}
	out := c.Render(counties)
	require.Len(t, out, 3)
	assert.Equal(t, 3, c.Snapshot().RegionCount)
	assert.Equal(t, "06", out[0].StateFips)
	assert.Equal(t, coloring.FillTint, out[0].Fill)
	assert.Equal(t, coloring.FillColored, out[1].Fill)

	p := c.Progress()
	assert.Equal(t, 1, p.Colored)
	assert.Equal(t, 3, p.Total)
}

func TestRender_StateFillUsesCountyRatio(t *testing.T) {
	c, st := newController(t)
	c.SetMode(ModeCounties)
	c.SetCategory(coloring.Visited)
	c.OnRegionClick("California", "California", "06")
	c.Render([]geo.Feature{countyFeature("06001"), countyFeature("06002")})
	c.OnRegionClick("06001", "c06001", "")
	c.OnRegionClick("06002", "c06002", "")
	require.InDelta(t, 1.0, st.CountyRatio("06"), 1e-9)

	c.SetMode(ModeStates)
	out := c.Render([]geo.Feature{stateFeature("06", "California"), stateFeature("48", "Texas")})
	require.Len(t, out, 2)
	assert.Equal(t, coloring.StateFill(true, 1).Base, out[0].Fill)
	assert.Equal(t, coloring.FillNone, out[1].Fill)
}

func TestRender_ContinentFiltersAndFits(t *testing.T) {
	c, _ := newController(t)
	c.SetMode(ModeContinents)
	require.NoError(t, c.SelectContinent(continent.Europe))
	world := []geo.Feature{
		countryFeature("FR", "France", square(-5, 42, 8, 51)),
		countryFeature("DE", "Germany", square(6, 47, 15, 55)),
		countryFeature("BR", "Brazil", square(-74, -34, -34, 5)),
	}
	out := c.Render(world)
	require.Len(t, out, 2)
	assert.Equal(t, 2, c.Snapshot().RegionCount)

	assert.Eventually(t, func() bool {
		v := c.Viewport()
		return v.Center != nil && v.Center.Lon > 0 && v.Center.Lon < 10
	}, time.Second, 5*time.Millisecond)
}

func TestRender_StatesResetViewport(t *testing.T) {
	c, _ := newController(t)
	c.Render([]geo.Feature{stateFeature("06", "California")})
	assert.Nil(t, c.Viewport().Center)
	assert.Equal(t, 1.0, c.Viewport().Zoom)
}

func TestOnFilteredCountChanged(t *testing.T) {
	c, _ := newController(t)
	c.OnFilteredCountChanged(12)
	assert.Equal(t, 12, c.Snapshot().RegionCount)
	c.OnFilteredCountChanged(12)
	assert.Equal(t, 12, c.Snapshot().RegionCount)
}

func TestReset(t *testing.T) {
	c, st := newController(t)
	c.SetCategory(coloring.Want)
	c.OnRegionClick("Ohio", "Ohio", "39")
	c.SetMode(ModeCounties)
	c.OnRegionClick("Ohio", "Ohio", "39")
	c.Reset()
	assert.False(t, st.Colored(region.KindState, "Ohio"))
	assert.Empty(t, c.Snapshot().SelectedState)
	assert.Equal(t, viewport.DefaultView(), c.Viewport())
}

func TestCheckIn_MarksOnly(t *testing.T) {
	c, st := newController(t)
	assert.True(t, c.CheckIn("Oregon", "Oregon", "41"))
	assert.Equal(t, coloring.Visited, st.CategoryOf(region.KindState, "Oregon"))
	assert.False(t, c.CheckIn("Oregon", "Oregon", "41"))
	assert.True(t, st.Colored(region.KindState, "Oregon"))

	c.SetMode(ModeCounties)
	assert.False(t, c.CheckIn("Oregon", "Oregon", "41"))
	assert.Equal(t, "41", c.Snapshot().SelectedStateFips)
	assert.True(t, c.CheckIn("41051", "Multnomah", ""))
	assert.True(t, st.Colored(region.KindCounty, "41051"))
	assert.False(t, c.CheckIn("41051", "Multnomah", ""))
}
