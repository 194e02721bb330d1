// Package authority deduplicates the lookup ("authority code") tables and
// establishes primary keys on them. Recent Geoscape releases ship these
// with duplicate rows and, depending on the file format and vintage,
// inconsistent column names.
package authority

import (
	"context"
	"fmt"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/minus34/gnaf-loader-go/database"
)

type rename struct {
	from, to string
}

// Known source vintages and the renames that bring each to the canonical
// {code, name, description} shape. DBF-sourced tables truncate column
// names at 10 characters, hence "descriptio".
var vintages = []struct {
	name    string
	renames []rename
}{
	{"dbf-2016", []rename{{"code_aut", "code"}, {"name_aut", "name"}, {"dscpn_aut", "description"}}},
	{"dbf-2020", []rename{{"code_aut", "code"}, {"name_aut", "name"}, {"desc_aut", "description"}}},
	{"shp-2021", []rename{{"code_aut", "code"}, {"name_aut", "name"}, {"descriptio", "description"}}},
	{"dbf-nodesc", []rename{{"code_aut", "code"}, {"name_aut", "name"}}},
}

// Clean normalizes and deduplicates every authority table in schema. With
// createKeys it also drops any synthetic gid primary key and puts one on
// the code column instead. A failure there means the source data still has
// duplicate codes after dedup - a genuine data integrity defect - so after
// all tables are processed any such failure makes the whole run fatal.
// Row dedup itself is self-healing and never fatal.
func Clean(ctx context.Context, db database.DB, schema string, createKeys bool) error {
	tables, err := authorityTables(ctx, db, schema)
	if err != nil {
		return err
	}

	errorCount := 0

	for _, table := range tables {
		if err := cleanTable(ctx, db, schema, table, createKeys); err != nil {
			errorCount++
			log.Warnf("CAN'T CLEAN AUTHORITY TABLE %s.%s : %v", schema, table, err)
		}
	}

	if errorCount > 0 {
		return errors.Errorf("%d authority tables in %s couldn't be fixed - check the source data for duplicate codes",
			errorCount, schema)
	}

	log.Infof("\t\t- %d authority tables deduplicated", len(tables))
	return nil
}

func authorityTables(ctx context.Context, db database.Querier, schema string) ([]string, error) {
	rows, err := db.Query(ctx,
		`SELECT table_name
		 FROM information_schema.tables
		 WHERE table_schema = $1
		   AND table_type = 'BASE TABLE'
		   AND table_name LIKE '%\_aut'`, schema)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list authority tables in %s", schema)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var table string
		if err := rows.Scan(&table); err != nil {
			return nil, err
		}
		tables = append(tables, table)
	}

	return tables, rows.Err()
}

func cleanTable(ctx context.Context, db database.DB, schema, table string, createKeys bool) error {
	if err := normalizeColumns(ctx, db, schema, table); err != nil {
		return err
	}

	// the meshblock category table carries inconsistent descriptions
	// between states; null them rather than keep one state's wording
	if table == "aus_mb_category_class_aut" {
		if _, err := db.Exec(ctx, fmt.Sprintf("UPDATE %s.%s SET description = NULL", schema, table)); err != nil {
			return err
		}
	}

	if err := dedupRows(ctx, db, schema, table); err != nil {
		return err
	}

	if createKeys {
		if err := createCodeKey(ctx, db, schema, table); err != nil {
			return err
		}
	}

	_, err := db.Exec(ctx, fmt.Sprintf("VACUUM ANALYZE %s.%s", schema, table))
	return err
}

// normalizeColumns applies the rename list for the table's source vintage.
// An unrecognized column layout is an error, not something to silently
// skip: it means a new release changed the format again.
func normalizeColumns(ctx context.Context, db database.DB, schema, table string) error {
	columns, err := tableColumns(ctx, db, schema, table)
	if err != nil {
		return err
	}

	if !columns["code"] {
		renames, err := renamesFor(columns)
		if err != nil {
			return errors.Wrapf(err, "%s.%s", schema, table)
		}

		for _, r := range renames {
			_, err := db.Exec(ctx, fmt.Sprintf("ALTER TABLE %s.%s RENAME COLUMN %s TO %s",
				schema, table, r.from, r.to))
			if err != nil {
				return err
			}
			columns[r.to] = true
		}
	}

	// DBF-only vintages have no description at all
	if !columns["description"] {
		_, err := db.Exec(ctx, fmt.Sprintf("ALTER TABLE %s.%s ADD COLUMN description text", schema, table))
		if err != nil {
			return err
		}
	}

	return nil
}

func renamesFor(columns map[string]bool) ([]rename, error) {
	for _, vintage := range vintages {
		match := true
		for _, r := range vintage.renames {
			if !columns[r.from] {
				match = false
				break
			}
		}
		if match {
			return vintage.renames, nil
		}
	}
	return nil, errors.New("unknown authority table column layout - has the release format changed?")
}

func tableColumns(ctx context.Context, db database.Querier, schema, table string) (map[string]bool, error) {
	rows, err := db.Query(ctx,
		"SELECT column_name FROM information_schema.columns WHERE table_schema = $1 AND table_name = $2",
		schema, table)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	columns := make(map[string]bool)
	for rows.Next() {
		var column string
		if err := rows.Scan(&column); err != nil {
			return nil, err
		}
		columns[column] = true
	}

	return columns, rows.Err()
}

// dedupRows replaces the table's contents with its distinct rows, but only
// when duplicates exist. Idempotent: a second run removes nothing.
func dedupRows(ctx context.Context, db database.DB, schema, table string) error {
	var oldCount int64
	if err := db.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s.%s", schema, table)).Scan(&oldCount); err != nil {
		return err
	}

	_, err := db.Exec(ctx, fmt.Sprintf(
		"DROP TABLE IF EXISTS %[1]s.temp_aut; CREATE TABLE %[1]s.temp_aut AS SELECT DISTINCT code, name, description FROM %[1]s.%[2]s",
		schema, table))
	if err != nil {
		return err
	}
	defer db.Exec(ctx, fmt.Sprintf("DROP TABLE IF EXISTS %s.temp_aut", schema))

	var newCount int64
	if err := db.QueryRow(ctx, fmt.Sprintf("SELECT count(*) FROM %s.temp_aut", schema)).Scan(&newCount); err != nil {
		return err
	}

	if duplicates := oldCount - newCount; duplicates > 0 {
		_, err = db.Exec(ctx, fmt.Sprintf("TRUNCATE TABLE %s.%s", schema, table))
		if err != nil {
			return err
		}
		_, err = db.Exec(ctx, fmt.Sprintf(
			"INSERT INTO %s.%s (code, name, description) SELECT * FROM %s.temp_aut", schema, table, schema))
		if err != nil {
			return err
		}

		log.Infof("\t\t- %d duplicates removed from %s.%s", duplicates, schema, table)
	}

	return nil
}

// createCodeKey swaps the synthetic gid primary key shp2pgsql creates for
// one on the authority code itself.
func createCodeKey(ctx context.Context, db database.Execer, schema, table string) error {
	_, err := db.Exec(ctx, fmt.Sprintf("ALTER TABLE ONLY %s.%s DROP CONSTRAINT IF EXISTS %s_pkey",
		schema, table, table))
	if err != nil {
		return err
	}

	_, err = db.Exec(ctx, fmt.Sprintf("ALTER TABLE ONLY %[1]s.%[2]s ADD CONSTRAINT %[2]s_pkey PRIMARY KEY (code)",
		schema, table))
	if err != nil {
		return errors.Wrap(err, "duplicate authority code(s)")
	}

	return nil
}
