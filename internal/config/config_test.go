package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindProjectRootByDataDir(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, DataDirName), 0o755))
	deep := filepath.Join(root, "bin", "linux")
	require.NoError(t, os.MkdirAll(deep, 0o755))

	got, err := FindProjectRoot(deep)
	require.NoError(t, err)
	want, _ := filepath.EvalSymlinks(root)
	gotReal, _ := filepath.EvalSymlinks(got)
	assert.Equal(t, want, gotReal)
}

func TestResolveDefaults(t *testing.T) {
	c := Config{Root: "/srv/borders"}
	require.NoError(t, c.Resolve())
	data := filepath.Join("/srv/borders", DataDirName)
	assert.Equal(t, data, c.DataDir)
	assert.Equal(t, filepath.Join(data, DefaultCountriesFile), c.CountriesPath)
	assert.Equal(t, filepath.Join(data, DefaultKMLFile), c.KMLPath)
	assert.Equal(t, filepath.Join(data, DefaultOutputFile), c.OutputPath)
	assert.Equal(t, filepath.Join(data, "countries.db"), c.SQLitePath)
}

func TestResolveKeepsExplicitPaths(t *testing.T) {
	c := Config{DataDir: "/data", KMLPath: "/in/world.kml.xz"}
	require.NoError(t, c.Resolve())
	assert.Equal(t, "/in/world.kml.xz", c.KMLPath)
	assert.Equal(t, filepath.Join("/data", DefaultCountriesFile), c.CountriesPath)
	assert.Empty(t, c.Root)
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	c := Config{DataDir: dir}
	require.NoError(t, c.Resolve())

	err := c.Validate()
	require.True(t, errors.Is(err, ErrFileMissing))
	assert.Contains(t, err.Error(), DefaultCountriesFile)

	require.NoError(t, os.WriteFile(c.CountriesPath, []byte("h\n"), 0o644))
	err = c.Validate()
	require.ErrorIs(t, err, ErrFileMissing)
	assert.Contains(t, err.Error(), DefaultKMLFile)

	require.NoError(t, os.WriteFile(c.KMLPath, []byte("<kml/>"), 0o644))
	assert.NoError(t, c.Validate())
}
