package discovery

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir string, names ...string) {
	t.Helper()
	for _, name := range names {
		path := filepath.Join(dir, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
		require.NoError(t, os.WriteFile(path, []byte("header|row\n"), 0o644))
	}
}

func TestGnafLoadItems(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "NSW_X_psv.psv", "NSW_STREET_psv.psv", "VIC_STREET_psv.psv")

	var stmts []string
	for _, prefix := range []string{"NSW", "VIC"} {
		found, err := GnafLoadItems(dir, dir, "raw_gnaf", prefix)
		require.NoError(t, err)
		stmts = append(stmts, found...)
	}

	require.Len(t, stmts, 3)
	assert.Contains(t, stmts[0], "COPY raw_gnaf.street FROM ")
	assert.Contains(t, stmts[1], "COPY raw_gnaf.x FROM ")
	assert.Contains(t, stmts[2], "COPY raw_gnaf.street FROM ")
	for _, stmt := range stmts {
		assert.Contains(t, stmt, "DELIMITER '|' CSV HEADER;")
	}
}

func TestGnafLoadItemsTranslatesToServerDir(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "standard/NSW_LOCALITY_psv.psv")

	stmts, err := GnafLoadItems(dir, "/mnt/gnaf", "raw_gnaf", "NSW")
	require.NoError(t, err)
	require.Len(t, stmts, 1)
	assert.Contains(t, stmts[0], "FROM '/mnt/gnaf/standard/NSW_LOCALITY_psv.psv'")
}

func TestGnafLoadItemsEmptyDir(t *testing.T) {
	stmts, err := GnafLoadItems(t.TempDir(), "/mnt/gnaf", "raw_gnaf", "NSW")
	require.NoError(t, err)
	assert.Empty(t, stmts)
}

func TestTranslatePathFixesBackslashes(t *testing.T) {
	path := TranslatePath(`C:\gnaf\standard\NSW_LOCALITY_psv.psv`, `C:\gnaf`, "/mnt/gnaf")
	assert.Equal(t, "/mnt/gnaf/standard/NSW_LOCALITY_psv.psv", path)
}

func TestShapefileLoadItems(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir,
		"ACT_LOCALITY_POLYGON_shp.shp",
		"NSW_LOCALITY_POLYGON_shp.shp",
		"ACT_LOCALITY_CLASS_AUT_shp.dbf",
		"NSW_LOCALITY_CLASS_AUT_shp.dbf",
		"ACT_LOCALITY_POLYGON_shp.dbf", // sidecar of the .shp, not standalone
		"readme.txt",
	)

	creates, appends, err := ShapefileLoadItems(dir, []string{"ACT", "NSW"}, "raw_admin_bdys")
	require.NoError(t, err)

	require.Len(t, creates, 2)
	require.Len(t, appends, 2)

	byTable := map[string]ShapefileItem{}
	for _, item := range creates {
		byTable[item.Table] = item
	}

	polygon, ok := byTable["aus_locality_polygon"]
	require.True(t, ok)
	assert.True(t, polygon.Spatial)
	assert.True(t, polygon.DeleteTable)
	assert.Equal(t, "raw_admin_bdys", polygon.Schema)

	aut, ok := byTable["aus_locality_class_aut"]
	require.True(t, ok)
	assert.False(t, aut.Spatial)

	for _, item := range appends {
		assert.False(t, item.DeleteTable)
	}
}

func TestShapefileLoadItemsSkipsTownPointsLocalityDBF(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "town points/ACT_LOCALITY_shp.dbf")

	creates, appends, err := ShapefileLoadItems(dir, []string{"ACT"}, "raw_admin_bdys")
	require.NoError(t, err)
	assert.Empty(t, creates)
	assert.Empty(t, appends)
}
