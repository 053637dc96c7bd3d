package continent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestClassify(t *testing.T) {
	cases := []struct {
		name             string
		iso2, iso3, text string
		want             Tag
		ok               bool
	}{
		{"iso2", "US", "USA", "United States of America", NorthAmerica, true},
		{"iso3 when iso2 unknown", "-99", "FRA", "France", Europe, true},
		{"exact name", "", "", "Kenya", Africa, true},
		{"name with padding", "", "", "  Japan ", Asia, true},
		{"short form inside long form", "", "", "United States", NorthAmerica, true},
		{"long form containing table key", "", "", "Republic of Peru", SouthAmerica, true},
		{"unknown", "", "", "Atlantis", "", false},
		{"blank name", "", "", "   ", "", false},
		{"nothing", "", "", "", "", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := Classify(tc.iso2, tc.iso3, tc.text)
			assert.Equal(t, tc.ok, ok)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestTagMetadata(t *testing.T) {
	assert.True(t, Oceania.Valid())
	assert.False(t, Tag("antarctica").Valid())
	assert.Equal(t, "North America", NorthAmerica.Name())

	center, zoom := Europe.DefaultView()
	assert.Equal(t, 15.0, center.Lon)
	assert.Equal(t, 55.0, center.Lat)
	assert.Equal(t, 2.0, zoom)

	_, zoom = Tag("nowhere").DefaultView()
	assert.Equal(t, 1.0, zoom)
}

func TestTablesCoverAllTags(t *testing.T) {
	seen := map[Tag]bool{}
	for _, tag := range byISO2 {
		seen[tag] = true
	}
	for _, tag := range All {
		assert.True(t, seen[tag], "no ISO-2 entry for %s", tag)
	}
}
