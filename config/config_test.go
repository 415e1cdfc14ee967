package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWellFormedConfig(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ecotile.yaml")
	content := "world_seed: 1337\nspecies_table: ./testdata/species.csv\nstep_period_ms: 250\nlog_level: debug\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 1337, c.WorldSeed)
	assert.Equal(t, "./testdata/species.csv", c.SpeciesTable)
	assert.Equal(t, 250, c.StepPeriodMs)
	assert.Equal(t, "debug", c.LogLevel)
}

func TestLoadAppliesDefaultsForMissingFields(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ecotile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world_seed: 7\n"), 0o644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.EqualValues(t, 7, c.WorldSeed)
	assert.Equal(t, defaultSpeciesTable, c.SpeciesTable)
	assert.Equal(t, defaultStepPeriodMs, c.StepPeriodMs)
	assert.Equal(t, defaultLogLevel, c.LogLevel)
}

func TestLoadMissingFileIsFatal(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "does-not-exist.yaml"))
	require.Error(t, err)
}

func TestLoadMalformedYAMLIsFatal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ecotile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("world_seed: [1337\n"), 0o644))

	_, err := Load(path)
	require.Error(t, err)
}
