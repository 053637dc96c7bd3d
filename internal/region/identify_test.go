package region

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"visitmap/internal/geo"
)

func feat(id, key string, props map[string]any) geo.Feature {
	return geo.Feature{ID: id, Key: key, Properties: props}
}

func TestIdentifyCountryPriority(t *testing.T) {
	cases := []struct {
		name     string
		f        geo.Feature
		wantID   string
		wantName string
	}{
		{"iso3 first", feat("840", "geo-1", map[string]any{"ISO_A3": "USA", "ISO_A2": "US", "NAME": "United States of America"}), "USA", "United States of America"},
		{"iso2 when iso3 missing", feat("", "geo-1", map[string]any{"ISO_A3": "-99", "ISO_A2": "FR", "NAME": "France"}), "FR", "France"},
		{"long name before short", feat("", "geo-1", map[string]any{"NAME_LONG": "Republic of Korea", "NAME": "South Korea"}), "Republic of Korea", "South Korea"},
		{"world-atlas lowercase name", feat("036", "geo-1", map[string]any{"name": "Australia"}), "Australia", "Australia"},
		{"raw id", feat("250", "geo-1", map[string]any{}), "250", "250"},
		{"synthetic key", feat("", "geo-7", nil), "geo-7", "geo-7"},
		{"name falls back to code", feat("", "geo-1", map[string]any{"ISO_A2": "DE"}), "DE", "DE"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			id, name := Identify(tc.f, KindCountry)
			assert.Equal(t, tc.wantID, id)
			assert.Equal(t, tc.wantName, name)
		})
	}
}

func TestIdentifyState(t *testing.T) {
	id, name := Identify(feat("06", "geo-0", map[string]any{"name": "California"}), KindState)
	assert.Equal(t, "California", id)
	assert.Equal(t, "California", name)

	id, _ = Identify(feat("06", "geo-0", nil), KindState)
	assert.Equal(t, "06", id)

	id, _ = Identify(feat("", "geo-3", nil), KindState)
	assert.Equal(t, "geo-3", id)
}

func TestIdentifyCounty(t *testing.T) {
	id, name := Identify(feat("", "geo-0", map[string]any{"fips": "06001", "name": "Alameda", "state": "California"}), KindCounty)
	assert.Equal(t, "06001", id)
	assert.Equal(t, "Alameda, California", name)

	id, name = Identify(feat("06075", "geo-0", map[string]any{"name": "San Francisco"}), KindCounty)
	assert.Equal(t, "06075", id)
	assert.Equal(t, "San Francisco", name)

	id, name = Identify(feat("", "geo-0", map[string]any{"name": "Los  Angeles", "state": "New Mexico"}), KindCounty)
	assert.Equal(t, "New-Mexico-Los-Angeles", id)
	assert.Equal(t, "Los  Angeles, New Mexico", name)

	id, name = Identify(feat("", "geo-9", nil), KindCounty)
	assert.Equal(t, "geo-9", id)
	assert.Equal(t, "geo-9", name)
}

func TestIdentifyIsStable(t *testing.T) {
	f := feat("", "geo-4", map[string]any{"ISO_A2": "JP", "NAME": "Japan"})
	for _, kind := range []Kind{KindCountry, KindState, KindCounty} {
		id1, name1 := Identify(f, kind)
		id2, name2 := Identify(f, kind)
		assert.Equal(t, id1, id2)
		assert.Equal(t, name1, name2)
	}
}

func TestStateFips(t *testing.T) {
	assert.Equal(t, "06", StateFips(feat("", "", map[string]any{"fips": "06"})))
	assert.Equal(t, "06", StateFips(feat("", "", map[string]any{"fips": "6"})))
	assert.Equal(t, "06", StateFips(feat("", "", map[string]any{"fips": float64(6)})))
	assert.Equal(t, "06", StateFips(feat("6", "", nil)))
	assert.Equal(t, "48", StateFips(feat("48", "", nil)))
	assert.Equal(t, "06", StateFips(feat("06001", "", nil)))
	assert.Empty(t, StateFips(feat("California", "", nil)))
	assert.Empty(t, StateFips(feat("123", "", nil)))
}

func TestStateFipsFromID(t *testing.T) {
	assert.Equal(t, "06", StateFipsFromID("06001"))
	assert.Equal(t, "06", StateFipsFromID("6001"))
	assert.Equal(t, "36", StateFipsFromID("36"))
	assert.Empty(t, StateFipsFromID("California-Alameda"))
	assert.Empty(t, StateFipsFromID(""))
}

func TestCountyStateFips(t *testing.T) {
	assert.Equal(t, "06", CountyStateFips(feat("06001", "", nil)))
	assert.Equal(t, "06", CountyStateFips(feat("6001", "", nil)))
	assert.Equal(t, "06", CountyStateFips(feat("", "", map[string]any{"id": "06003"})))
	assert.Equal(t, "53", CountyStateFips(feat("", "", map[string]any{"GEOID": "53033"})))
	assert.Empty(t, CountyStateFips(feat("", "", map[string]any{"state": "Texas"})))
}
