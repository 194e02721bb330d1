package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/minus34/gnaf-loader-go/database"
	"github.com/minus34/gnaf-loader-go/scripts"
	"github.com/minus34/gnaf-loader-go/settings"
)

func testLoader(subdivide bool) *Loader {
	cfg := settings.Config{
		PGUser:             "postgres",
		RawGnafSchema:      "raw_gnaf",
		RawAdminBdysSchema: "raw_admin_bdys",
		AdminBdysSchema:    "admin_bdys",
		GnafSchema:         "gnaf",
		MaxWorkers:         4,
	}
	return New(cfg, nil, database.Features{SubdivideSupported: subdivide}, nil)
}

func TestCreateTagTableSQL(t *testing.T) {
	sql := testLoader(true).createTagTableSQL()

	assert.Contains(t, sql, "CREATE TABLE gnaf.address_principal_admin_boundaries")
	assert.Contains(t, sql, "gnaf_pid text NOT NULL")
	for _, pair := range []string{"ce", "lga", "ward", "sed", "led"} {
		assert.Contains(t, sql, pair+"_pid text")
		assert.Contains(t, sql, pair+"_name text")
	}
}

func TestTagInsertSQLUsesAnalysisTables(t *testing.T) {
	sql := testLoader(true).tagInsertSQL()

	assert.Contains(t, sql, "LEFT OUTER JOIN gnaf.temp_commonwealth_electorates_analysis_tags AS ce")
	assert.Contains(t, sql, "ce.bdy_pid")
	assert.Contains(t, sql, "FROM gnaf.address_principals AS pnts")
}

func TestTagInsertSQLWithoutSubdivide(t *testing.T) {
	sql := testLoader(false).tagInsertSQL()

	assert.Contains(t, sql, "temp_commonwealth_electorates_tags")
	assert.NotContains(t, sql, "_analysis_tags")
}

func TestTagTableName(t *testing.T) {
	bdy := AdminBdy{Table: "local_government_areas", PIDField: "lga_pid", NameField: "name"}

	assert.Equal(t, "local_government_areas_analysis", testLoader(true).tagTableName(bdy))
	assert.Equal(t, "local_government_areas", testLoader(false).tagTableName(bdy))
}

func TestPrepBdyResolvesEveryPlaceholder(t *testing.T) {
	l := testLoader(true)

	for _, template := range []string{
		scripts.BdyTagTempTableTemplate,
		scripts.BdyTagTemplate,
		scripts.BdyTagCleanTemplate,
	} {
		for _, bdy := range tagBdyList {
			sql, err := l.prepBdy(template, bdy)
			require.NoError(t, err)
			assert.NotContains(t, sql, "%TABLE%")
		}
	}
}

func TestAnalysisSQLCoversEveryBoundary(t *testing.T) {
	l := testLoader(true)

	for _, bdy := range AdminBdyList {
		sql, err := l.analysisSQL(bdy)
		require.NoError(t, err)
		assert.Contains(t, sql, "admin_bdys."+bdy.Table+"_analysis")
		assert.Contains(t, sql, bdy.NameField+" AS name")
	}
}

func TestAnalysisSQLKeepsLocalityPostcode(t *testing.T) {
	l := testLoader(true)

	sql, err := l.analysisSQL(AdminBdy{Table: "locality_bdys", PIDField: "locality_pid", NameField: "locality_name"})
	require.NoError(t, err)
	assert.Contains(t, sql, "admin_bdys.locality_bdys_analysis")
	assert.Contains(t, sql, "postcode")

	sql, err = l.analysisSQL(AdminBdy{Table: "state_bdys", PIDField: "state_pid", NameField: "state_name"})
	require.NoError(t, err)
	assert.NotContains(t, sql, "postcode")
}

func TestTagPrefix(t *testing.T) {
	assert.Equal(t, "ce", tagPrefix("ce_pid"))
	assert.Equal(t, "ward", tagPrefix("ward_pid"))
}

func fakeLoader(states []string, db *fakeDB, importer *fakeImporter) *Loader {
	cfg := settings.Config{
		PGUser:             "postgres",
		RawGnafSchema:      "raw_gnaf",
		RawAdminBdysSchema: "raw_admin_bdys",
		AdminBdysSchema:    "admin_bdys",
		GnafSchema:         "gnaf",
		StatesToLoad:       states,
		MaxWorkers:         2,
	}
	return New(cfg, db, database.Features{}, importer)
}

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644))
}

func TestLoadRawGnafFailsWithoutPSVFiles(t *testing.T) {
	l := fakeLoader([]string{"ACT"}, &fakeDB{}, nil)
	l.cfg.GnafDir = t.TempDir()
	l.cfg.GnafServerDir = l.cfg.GnafDir

	err := l.loadRawGnaf(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no raw GNAF PSV files")
}

func TestLoadAdminBdysFailsWithoutShapefiles(t *testing.T) {
	l := fakeLoader([]string{"ACT"}, &fakeDB{}, &fakeImporter{})
	l.cfg.AdminBdysDir = t.TempDir()

	err := l.loadAdminBdys(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no admin boundary files")
}

func TestLoadAdminBdysImportsAuthorityCodeFiles(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ACT_LOCALITY_POLYGON_shp.shp")
	touch(t, dir, "AUTHORITY_CODE_LOCALITY_CLASS_AUT_shp.dbf")
	touch(t, dir, "AUTHORITY_CODE_STATE_AUT_shp.dbf")

	importer := &fakeImporter{}
	l := fakeLoader([]string{"ACT"}, &fakeDB{}, importer)
	l.cfg.AdminBdysDir = dir

	require.NoError(t, l.loadAdminBdys(context.Background()))

	assert.Len(t, importer.importedMatching("locality_polygon"), 1)
	assert.Len(t, importer.importedMatching("locality_class_aut"), 1)
	assert.Len(t, importer.importedMatching("state_aut"), 1)
}

func TestLoadAdminBdysContinuesPastImportFailure(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ACT_STATE_POLYGON_shp.shp")
	touch(t, dir, "NSW_STATE_POLYGON_shp.shp")

	importer := &fakeImporter{failOn: "nsw_state_polygon"}
	l := fakeLoader([]string{"ACT", "NSW"}, &fakeDB{}, importer)
	l.cfg.AdminBdysDir = dir

	require.NoError(t, l.loadAdminBdys(context.Background()))

	assert.Len(t, importer.imported, 2)
}

func TestLoadAdminBdysToleratesPrepGroupFailure(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "ACT_LOCALITY_POLYGON_shp.shp")

	db := &fakeDB{failOn: "admin_bdys.state_bdys"}
	l := fakeLoader([]string{"ACT"}, db, &fakeImporter{})
	l.cfg.AdminBdysDir = dir

	require.NoError(t, l.loadAdminBdys(context.Background()))

	assert.NotEmpty(t, db.executedMatching("admin_bdys.locality_bdys"))
}

func TestCreateReferenceTablesRefreshesStatistics(t *testing.T) {
	db := &fakeDB{}
	l := fakeLoader([]string{"ACT"}, db, nil)

	require.NoError(t, l.createReferenceTables(context.Background()))

	assert.Len(t, db.executedMatching("ANALYZE gnaf.temp_addresses"), 1)
	assert.Len(t, db.executedMatching("VACUUM ANALYZE gnaf.address_secondary_lookup"), 1)
}

func TestLoadAdminBdysSkipsOutbackDeleteForSA(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "SA_LOCALITY_POLYGON_shp.shp")

	db := &fakeDB{}
	l := fakeLoader([]string{"SA"}, db, &fakeImporter{})
	l.cfg.AdminBdysDir = dir

	require.NoError(t, l.loadAdminBdys(context.Background()))

	assert.Empty(t, db.executedMatching("SA999999"))
}
