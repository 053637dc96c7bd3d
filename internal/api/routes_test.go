package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"visitmap/internal/atlas"
	"visitmap/internal/coloring"
	"visitmap/internal/geo"
	"visitmap/internal/locate"
	"visitmap/internal/mapview"
	"visitmap/internal/middleware"
	"visitmap/internal/region"
	"visitmap/internal/store"
	"visitmap/internal/viewport"
)

type fakeAtlas struct {
	docs map[atlas.Kind][]geo.Feature
	err  error
}

func (f *fakeAtlas) Features(_ context.Context, k atlas.Kind) ([]geo.Feature, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.docs[k], nil
}

func box(minLon, minLat, maxLon, maxLat float64) geo.Geometry {
	ring := []geo.Point{
		{Lon: minLon, Lat: minLat}, {Lon: maxLon, Lat: minLat},
		{Lon: maxLon, Lat: maxLat}, {Lon: minLon, Lat: maxLat},
		{Lon: minLon, Lat: minLat},
	}
	return geo.Geometry{Polygons: []geo.Polygon{{Rings: [][]geo.Point{ring}}}}
}

func testAtlas() *fakeAtlas {
	return &fakeAtlas{docs: map[atlas.Kind][]geo.Feature{
		atlas.KindStates: {
			{Key: "geo-0", ID: "06", Properties: map[string]any{"name": "California"}, Geometry: box(-124, 32, -114, 42)},
			{Key: "geo-1", ID: "48", Properties: map[string]any{"name": "Texas"}, Geometry: box(-106, 26, -94, 36)},
		},
		atlas.KindCountries: {
			{Key: "geo-0", Properties: map[string]any{"ISO_A2": "FR", "NAME": "France"}, Geometry: box(-5, 42, 8, 51)},
			{Key: "geo-1", Properties: map[string]any{"ISO_A2": "BR", "NAME": "Brazil"}, Geometry: box(-74, -34, -34, 5)},
		},
	}}
}

type fixture struct {
	handler http.Handler
	store   *coloring.Store
	atlas   *fakeAtlas
}

func newFixture(t *testing.T, rc *redis.Client) *fixture {
	t.Helper()
	st := coloring.NewStore(nil)
	sched := viewport.NewScheduler(viewport.NewFitter(), nil, time.Millisecond)
	fa := testAtlas()
	mux := BuildRoutes(Deps{
		Controller: mapview.NewController(st, sched, 0),
		Atlas:      fa,
		Locator:    locate.NewLocator(time.Minute, 50),
		Redis:      rc,
	})
	return &fixture{handler: middleware.Wrap(mux), store: st, atlas: fa}
}

func (f *fixture) do(t *testing.T, method, path string, body any, hdr ...string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	for i := 0; i+1 < len(hdr); i += 2 {
		req.Header.Set(hdr[i], hdr[i+1])
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func decodeBody[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &v))
	return v
}

func TestClickFlow(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/click", map[string]string{"id": "California"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[clickResponse](t, rec).Changed)

	rec = f.do(t, http.MethodPost, "/category", map[string]string{"category": "visited"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, coloring.Visited, decodeBody[mapview.State](t, rec).Category)

	rec = f.do(t, http.MethodPost, "/click", map[string]string{"id": "California", "name": "California", "fips": "06"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decodeBody[clickResponse](t, rec).Changed)
	assert.True(t, f.store.Colored(region.KindState, "California"))

	rec = f.do(t, http.MethodGet, "/progress", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	p := decodeBody[coloring.ProgressReport](t, rec)
	assert.Equal(t, 1, p.Colored)
	assert.Equal(t, mapview.InitialStateCount, p.Total)
	assert.Equal(t, "no-store", rec.Header().Get("cache-control"))
}

func TestBadRequests(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/mode", map[string]string{"mode": "galaxy"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/category", map[string]string{"category": "lived"}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/click", map[string]string{}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/continent", map[string]string{"continent": "atlantis"}).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodGet, "/mode", nil).Code)
	assert.Equal(t, http.StatusMethodNotAllowed, f.do(t, http.MethodPut, "/hover", nil).Code)

	req := httptest.NewRequest(http.MethodPost, "/mode", bytes.NewBufferString("{"))
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenderAndHover(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodPost, "/hover", map[string]string{"id": "Texas", "name": "Texas"}).Code)
	rec := f.do(t, http.MethodGet, "/render", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[renderResponse](t, rec)
	assert.Equal(t, atlas.KindStates, out.Kind)
	require.Len(t, out.Regions, 2)
	assert.Equal(t, "06", out.Regions[0].StateFips)
	assert.True(t, out.Regions[1].Hovered)
	assert.Equal(t, 2, out.RegionCount)

	assert.Equal(t, http.StatusNoContent, f.do(t, http.MethodDelete, "/hover", nil).Code)
	assert.Empty(t, decodeBody[mapview.State](t, f.do(t, http.MethodGet, "/state", nil)).HoveredID)

	f.atlas.err = errors.New("offline")
	assert.Equal(t, http.StatusBadGateway, f.do(t, http.MethodGet, "/render", nil).Code)
}

func TestModeContinentAndReset(t *testing.T) {
	f := newFixture(t, nil)
	require.Equal(t, http.StatusOK, f.do(t, http.MethodPost, "/mode", map[string]string{"mode": "continents"}).Code)
	rec := f.do(t, http.MethodPost, "/continent", map[string]string{"continent": "europe"})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "europe", string(decodeBody[mapview.State](t, rec).Continent))

	rec = f.do(t, http.MethodGet, "/render", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[renderResponse](t, rec)
	assert.Equal(t, atlas.KindCountries, out.Kind)
	require.Len(t, out.Regions, 1)
	assert.Equal(t, "FR", out.Regions[0].ID)

	f.do(t, http.MethodPost, "/click", map[string]string{"id": "FR"})
	assert.True(t, f.store.Colored(region.KindCountry, "FR"))

	rec = f.do(t, http.MethodPost, "/reset", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeBody[mapview.State](t, rec).Continent)
	assert.False(t, f.store.Colored(region.KindCountry, "FR"))

	rec = f.do(t, http.MethodGet, "/viewport", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 1.0, decodeBody[viewport.View](t, rec).Zoom)
}

func TestCategories(t *testing.T) {
	f := newFixture(t, nil)
	out := decodeBody[[]categoryInfo](t, f.do(t, http.MethodGet, "/categories", nil))
	require.Len(t, out, len(coloring.Categories))
	assert.Equal(t, coloring.Visited, out[0].Name)
	assert.Equal(t, "Visited", out[0].Label)
}

func TestCheckin_Coords(t *testing.T) {
	f := newFixture(t, nil)
	rec := f.do(t, http.MethodPost, "/checkin", map[string]float64{"lon": -118.24, "lat": 34.05})
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[checkinResponse](t, rec)
	assert.Equal(t, "coords", out.Source)
	assert.Equal(t, "California", out.Region.ID)
	assert.True(t, out.Changed)
	assert.Equal(t, coloring.Visited, f.store.CategoryOf(region.KindState, "California"))

	rec = f.do(t, http.MethodPost, "/checkin", map[string]float64{"lon": -118.24, "lat": 34.05})
	require.Equal(t, http.StatusOK, rec.Code)
	assert.False(t, decodeBody[checkinResponse](t, rec).Changed)
	assert.True(t, f.store.Colored(region.KindState, "California"))

	assert.Equal(t, http.StatusNotFound, f.do(t, http.MethodPost, "/checkin", map[string]float64{"lon": 2, "lat": 48}).Code)
	assert.Equal(t, http.StatusBadRequest, f.do(t, http.MethodPost, "/checkin", map[string]float64{"lon": 2}).Code)
}

func TestCheckin_Dedupe(t *testing.T) {
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer rc.Close()
	f := newFixture(t, rc)
	body := map[string]any{"ip": "203.0.113.7", "lon": -97.7, "lat": 30.3}

	out := decodeBody[checkinResponse](t, f.do(t, http.MethodPost, "/checkin", body))
	assert.True(t, out.Changed)
	assert.False(t, out.Duplicate)
	assert.True(t, mr.Exists(checkinBloomKey))

	out = decodeBody[checkinResponse](t, f.do(t, http.MethodPost, "/checkin", body))
	assert.True(t, out.Duplicate)
	assert.False(t, out.Changed)

	buckets, err := store.NewRedis(rc, "").Buckets(context.Background())
	require.NoError(t, err)
	assert.Empty(t, buckets)
	for _, k := range mr.Keys() {
		assert.NotContains(t, k, store.DefaultRedisPrefix)
	}
}

func TestCheckin_EdgeCountry(t *testing.T) {
	f := newFixture(t, nil)
	f.do(t, http.MethodPost, "/mode", map[string]string{"mode": "world"})
	rec := f.do(t, http.MethodPost, "/checkin", nil, "X-EO-Geo-CountryCodeAlpha2", "fr")
	require.Equal(t, http.StatusOK, rec.Code)
	out := decodeBody[checkinResponse](t, rec)
	assert.Equal(t, "edge", out.Source)
	assert.Equal(t, "FR", out.Region.ID)
	assert.True(t, f.store.Colored(region.KindCountry, "FR"))
}

func TestCheckin_NoSource(t *testing.T) {
	f := newFixture(t, nil)
	assert.Equal(t, http.StatusServiceUnavailable, f.do(t, http.MethodPost, "/checkin", nil).Code)
}

func TestBloomPositions(t *testing.T) {
	a := bloomPositions([]byte("x"), 1024, 4)
	b := bloomPositions([]byte("x"), 1024, 4)
	assert.Equal(t, a, b)
	for _, p := range a {
		assert.Less(t, p, int64(1024))
	}
	first, err := bloomCheckAndSet(context.Background(), nil, "k", a, time.Minute)
	require.NoError(t, err)
	assert.True(t, first)
}
