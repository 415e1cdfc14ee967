package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWellFormedTable(t *testing.T) {
	cat, rowErrs, err := Load("../testdata/species.csv")
	require.NoError(t, err)
	assert.Empty(t, rowErrs)
	assert.Equal(t, 6, cat.Len())

	idx, ok := cat.IndexOf("Wolf")
	require.True(t, ok)
	wolf := cat.Get(idx)
	assert.Equal(t, TerrestrialCarnivore, wolf.Ecology)
	assert.EqualValues(t, 24, wolf.ProcreationInterval())
	assert.Equal(t, 1, wolf.WalkSpeed())
	assert.Equal(t, 2, wolf.RunSpeed())

	kelpIdx, ok := cat.IndexOf("Kelp")
	require.True(t, ok)
	kelp := cat.Get(kelpIdx)
	assert.Equal(t, AquaticPlant, kelp.Ecology)
	assert.EqualValues(t, 4, kelp.ProcreationInterval())
}

func TestLoadMissingFile(t *testing.T) {
	_, _, err := Load("../testdata/does-not-exist.csv")
	require.Error(t, err)
}

func TestFingerprintStableAcrossLoads(t *testing.T) {
	first, _, err := Load("../testdata/species.csv")
	require.NoError(t, err)
	second, _, err := Load("../testdata/species.csv")
	require.NoError(t, err)
	assert.Equal(t, first.Fingerprint(), second.Fingerprint())
}

func TestRowErrorsAreAggregatedNotFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "species.csv")
	content := "Wolf,10,22,1200,Landbewohner Tier Fleischfresser,animals/wolf.png\n" +
		"Broken,1,2,3,NotARealAttribute,sprite\n" +
		"AlsoBroken,1,2,3,Landbewohner Pflanze Tier,sprite\n" +
		"NoDiet,1,2,3,Landbewohner Tier,sprite\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cat, rowErrs, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 1, cat.Len())
	assert.Len(t, rowErrs, 3)
}

func TestEmptyCatalogIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "species.csv")
	content := "Broken,1,2,3,NotARealAttribute,sprite\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	_, rowErrs, err := Load(path)
	require.Error(t, err)
	assert.Len(t, rowErrs, 1)
}

func TestAttributeExclusivity(t *testing.T) {
	cases := []struct {
		name  string
		field string
		valid bool
	}{
		{"both mediums", "Wasserbewohner Landbewohner Pflanze", false},
		{"neither medium", "Pflanze", false},
		{"both kingdoms", "Wasserbewohner Pflanze Tier", false},
		{"animal without diet", "Wasserbewohner Tier", false},
		{"plant with diet", "Wasserbewohner Pflanze Pflanzenfresser", false},
		{"animal both diets", "Wasserbewohner Tier Pflanzenfresser Fleischfresser", false},
		{"valid herbivore", "Landbewohner Tier Pflanzenfresser", true},
		{"case insensitive", "landbewohner tier pflanzenfresser", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, reason := parseAttributes(c.field)
			if c.valid {
				assert.Empty(t, reason)
			} else {
				assert.NotEmpty(t, reason)
			}
		})
	}
}
