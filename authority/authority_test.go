package authority

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanRenamesDbfColumns(t *testing.T) {
	db := &fakeDB{
		tables:  []string{"aus_address_type_aut"},
		columns: map[string][]string{"aus_address_type_aut": {"gid", "code_aut", "name_aut", "dscpn_aut"}},
		counts:  map[string]int64{"aus_address_type_aut": 2, "temp_aut": 2},
	}

	require.NoError(t, Clean(context.Background(), db, "raw_gnaf", false))

	renames := db.executedMatching("RENAME COLUMN")
	require.Len(t, renames, 3)
	assert.Contains(t, renames[0], "RENAME COLUMN code_aut TO code")
	assert.Contains(t, renames[2], "RENAME COLUMN dscpn_aut TO description")

	assert.Empty(t, db.executedMatching("ADD COLUMN"))
	assert.Empty(t, db.executedMatching("TRUNCATE"))
}

func TestCleanAddsMissingDescription(t *testing.T) {
	db := &fakeDB{
		tables:  []string{"aus_geocode_type_aut"},
		columns: map[string][]string{"aus_geocode_type_aut": {"gid", "code_aut", "name_aut"}},
		counts:  map[string]int64{"aus_geocode_type_aut": 5, "temp_aut": 5},
	}

	require.NoError(t, Clean(context.Background(), db, "raw_gnaf", false))

	assert.Len(t, db.executedMatching("RENAME COLUMN"), 2)
	require.Len(t, db.executedMatching("ADD COLUMN"), 1)
	assert.Contains(t, db.executedMatching("ADD COLUMN")[0], "ADD COLUMN description text")
}

func TestCleanRemovesDuplicateRows(t *testing.T) {
	db := &fakeDB{
		tables:  []string{"aus_flat_type_aut"},
		columns: map[string][]string{"aus_flat_type_aut": {"code", "name", "description"}},
		// rows (1,A,null), (1,A,null), (2,B,d): 3 rows, 2 distinct
		counts: map[string]int64{"aus_flat_type_aut": 3, "temp_aut": 2},
	}

	require.NoError(t, Clean(context.Background(), db, "raw_gnaf", false))

	assert.Empty(t, db.executedMatching("RENAME COLUMN"))
	require.Len(t, db.executedMatching("TRUNCATE"), 1)
	require.Len(t, db.executedMatching("INSERT INTO"), 1)
	assert.Contains(t, db.executedMatching("INSERT INTO")[0], "SELECT * FROM raw_gnaf.temp_aut")
}

func TestCleanIsIdempotent(t *testing.T) {
	db := &fakeDB{
		tables:  []string{"aus_flat_type_aut"},
		columns: map[string][]string{"aus_flat_type_aut": {"code", "name", "description"}},
		counts:  map[string]int64{"aus_flat_type_aut": 2, "temp_aut": 2},
	}

	require.NoError(t, Clean(context.Background(), db, "raw_gnaf", false))
	assert.Empty(t, db.executedMatching("TRUNCATE"), "no duplicates, nothing to reload")
}

func TestCleanNullsMeshblockDescriptions(t *testing.T) {
	db := &fakeDB{
		tables:  []string{"aus_mb_category_class_aut"},
		columns: map[string][]string{"aus_mb_category_class_aut": {"code", "name", "description"}},
		counts:  map[string]int64{"aus_mb_category_class_aut": 4, "temp_aut": 4},
	}

	require.NoError(t, Clean(context.Background(), db, "raw_admin_bdys", false))
	require.Len(t, db.executedMatching("SET description = NULL"), 1)
}

func TestCleanRejectsUnknownLayout(t *testing.T) {
	db := &fakeDB{
		tables:  []string{"aus_mystery_aut"},
		columns: map[string][]string{"aus_mystery_aut": {"foo", "bar"}},
	}

	err := Clean(context.Background(), db, "raw_gnaf", false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 authority tables")
}

func TestCleanCreatesCodePrimaryKey(t *testing.T) {
	db := &fakeDB{
		tables:  []string{"aus_state_aut"},
		columns: map[string][]string{"aus_state_aut": {"code", "name", "description"}},
		counts:  map[string]int64{"aus_state_aut": 9, "temp_aut": 9},
	}

	require.NoError(t, Clean(context.Background(), db, "raw_admin_bdys", true))

	require.Len(t, db.executedMatching("DROP CONSTRAINT IF EXISTS aus_state_aut_pkey"), 1)
	require.Len(t, db.executedMatching("ADD CONSTRAINT aus_state_aut_pkey PRIMARY KEY (code)"), 1)
}

// key failures are collected across the whole sweep before the run fails,
// so every table still gets cleaned
func TestCleanKeyFailureIsFatalAfterSweep(t *testing.T) {
	db := &fakeDB{
		failOn: "ADD CONSTRAINT",
		tables: []string{"aus_state_aut", "aus_locality_class_aut"},
		columns: map[string][]string{
			"aus_state_aut":          {"code", "name", "description"},
			"aus_locality_class_aut": {"code", "name", "description"},
		},
		counts: map[string]int64{"aus_state_aut": 9, "aus_locality_class_aut": 5, "temp_aut": 5},
	}

	err := Clean(context.Background(), db, "raw_admin_bdys", true)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "2 authority tables")
	assert.Len(t, db.executedMatching("DROP CONSTRAINT"), 2)
}
