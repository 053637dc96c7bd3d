package atlas

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const statesDoc = `{"type":"FeatureCollection","features":[
 {"type":"Feature","id":"06","properties":{"name":"California"},
  "geometry":{"type":"Polygon","coordinates":[[[-124,32],[-114,32],[-114,42],[-124,42],[-124,32]]]}},
 {"type":"Feature","id":"48","properties":{"name":"Texas"},
  "geometry":{"type":"Polygon","coordinates":[[[-106,26],[-94,26],[-94,36],[-106,36],[-106,26]]]}}
]}`

func newDocServer(t *testing.T, body string) (*httptest.Server, *int32) {
	var hits int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&hits, 1)
		if r.URL.Path == "/missing.json" {
			http.NotFound(w, r)
			return
		}
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &hits
}

func TestFeatures_HTTPAndMemo(t *testing.T) {
	srv, hits := newDocServer(t, statesDoc)
	m := Manifest{Sources: map[Kind]Entry{KindStates: {URL: srv.URL + "/states.json"}}}
	s := NewSource(m, nil, 0, time.Second)

	fs, err := s.Features(context.Background(), KindStates)
	require.NoError(t, err)
	require.Len(t, fs, 2)
	assert.Equal(t, "California", fs[0].Prop("name"))

	_, err = s.Features(context.Background(), KindStates)
	require.NoError(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))

	s.Invalidate(KindStates)
	_, err = s.Features(context.Background(), KindStates)
	require.NoError(t, err)
	assert.EqualValues(t, 2, atomic.LoadInt32(hits))
}

func TestFeatures_RedisCacheSharedAcrossSources(t *testing.T) {
	srv, hits := newDocServer(t, statesDoc)
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	m := Manifest{Sources: map[Kind]Entry{KindStates: {URL: srv.URL + "/states.json"}}}

	_, err := NewSource(m, rc, time.Hour, time.Second).Features(context.Background(), KindStates)
	require.NoError(t, err)
	fs, err := NewSource(m, rc, time.Hour, time.Second).Features(context.Background(), KindStates)
	require.NoError(t, err)
	assert.Len(t, fs, 2)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
	assert.Len(t, mr.Keys(), 1)
}

func TestFeatures_FileAndErrors(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "states.json")
	require.NoError(t, os.WriteFile(path, []byte(statesDoc), 0o644))
	srv, _ := newDocServer(t, "")
	m := Manifest{Sources: map[Kind]Entry{
		KindStates:    {Path: path},
		KindCounties:  {URL: srv.URL + "/missing.json"},
		KindCountries: {Path: filepath.Join(dir, "nope.json")},
	}}
	s := NewSource(m, nil, 0, time.Second)

	fs, err := s.Features(context.Background(), KindStates)
	require.NoError(t, err)
	assert.Len(t, fs, 2)

	_, err = s.Features(context.Background(), KindCounties)
	assert.Error(t, err)
	_, err = s.Features(context.Background(), KindCountries)
	assert.Error(t, err)
	_, err = s.Features(context.Background(), Kind("provinces"))
	assert.ErrorIs(t, err, ErrUnknownKind)
}

func TestLoadManifest(t *testing.T) {
	m, err := LoadManifest("")
	require.NoError(t, err)
	assert.Contains(t, m.Sources[KindCounties].URL, "us-atlas@3/counties-10m.json")

	path := filepath.Join(t.TempDir(), "atlas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("sources:\n  countries:\n    path: /data/world.json\n    object: land\n"), 0o644))
	m, err = LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, Entry{Path: "/data/world.json", Object: "land"}, m.Sources[KindCountries])
	assert.Equal(t, "states", m.Sources[KindStates].Object)

	require.NoError(t, os.WriteFile(path, []byte("sources: [\n"), 0o644))
	_, err = LoadManifest(path)
	assert.Error(t, err)
}

func TestRefresh_BypassesRedisAndKeepsOldOnFailure(t *testing.T) {
	srv, hits := newDocServer(t, statesDoc)
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	m := Manifest{Sources: map[Kind]Entry{
		KindStates:   {URL: srv.URL + "/states.json"},
		KindCounties: {URL: srv.URL + "/missing.json"},
	}}
	s := NewSource(m, rc, time.Hour, time.Second)
	before, err := s.Features(context.Background(), KindStates)
	require.NoError(t, err)

	require.NoError(t, s.Refresh(context.Background(), KindStates))
	assert.EqualValues(t, 2, atomic.LoadInt32(hits))
	after, err := s.Features(context.Background(), KindStates)
	require.NoError(t, err)
	assert.Len(t, after, 2)
	assert.NotSame(t, &before[0], &after[0])
	assert.Equal(t, []Kind{KindStates}, s.loaded())

	assert.Error(t, s.Refresh(context.Background(), KindCounties))
	assert.Equal(t, []Kind{KindStates}, s.loaded())
}

func TestNextWeekdayAt(t *testing.T) {
	loc := time.UTC
	// 2026-10-12 是周一
	mon := time.Date(2026, 10, 12, 2, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 10, 12, 3, 0, 0, 0, loc), nextWeekdayAt(mon, time.Monday, 3))
	late := time.Date(2026, 10, 12, 4, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 10, 19, 3, 0, 0, 0, loc), nextWeekdayAt(late, time.Monday, 3))
	fri := time.Date(2026, 10, 16, 12, 0, 0, 0, loc)
	assert.Equal(t, time.Date(2026, 10, 19, 3, 0, 0, 0, loc), nextWeekdayAt(fri, time.Monday, 3))
}

func TestFeatures_UndecodableDocumentNotCached(t *testing.T) {
	var body atomic.Value
	body.Store("<html>bad gateway</html>")
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(body.Load().(string)))
	}))
	t.Cleanup(srv.Close)
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	url := srv.URL + "/states.json"
	s := NewSource(Manifest{Sources: map[Kind]Entry{KindStates: {URL: url}}}, rc, time.Hour, time.Second)
	ctx := context.Background()

	_, err := s.Features(ctx, KindStates)
	require.Error(t, err)
	assert.False(t, mr.Exists(cacheKey(KindStates, url)))

	body.Store(statesDoc)
	fs, err := s.Features(ctx, KindStates)
	require.NoError(t, err)
	assert.Len(t, fs, 2)
	assert.True(t, mr.Exists(cacheKey(KindStates, url)))

	body.Store("{\"type\":\"FeatureCollection\",\"features\":[")
	require.Error(t, s.Refresh(ctx, KindStates))
	cached, err := mr.Get(cacheKey(KindStates, url))
	require.NoError(t, err)
	assert.Equal(t, statesDoc, cached)
	fs, err = s.Features(ctx, KindStates)
	require.NoError(t, err)
	assert.Len(t, fs, 2)
}

func TestFeatures_EvictsUndecodableCacheEntry(t *testing.T) {
	srv, hits := newDocServer(t, statesDoc)
	mr := miniredis.RunT(t)
	rc := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	url := srv.URL + "/states.json"
	require.NoError(t, mr.Set(cacheKey(KindStates, url), "<html>"))
	s := NewSource(Manifest{Sources: map[Kind]Entry{KindStates: {URL: url}}}, rc, time.Hour, time.Second)
	ctx := context.Background()

	_, err := s.Features(ctx, KindStates)
	require.Error(t, err)
	assert.False(t, mr.Exists(cacheKey(KindStates, url)))
	assert.EqualValues(t, 0, atomic.LoadInt32(hits))

	fs, err := s.Features(ctx, KindStates)
	require.NoError(t, err)
	assert.Len(t, fs, 2)
	assert.EqualValues(t, 1, atomic.LoadInt32(hits))
}
