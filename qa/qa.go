// Package qa computes per-table, per-state row counts for the load and
// diffs them against the previous release. QA is observability, not
// correctness: nothing in here is allowed to fail the pipeline.
package qa

import (
	"context"
	"fmt"
	"sort"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/minus34/gnaf-loader-go/database"
)

// ComparisonRow is one table's row count difference against the previous
// release: difference = new - old.
type ComparisonRow struct {
	TableName  string
	Difference int64
	NewCount   int64
	OldCount   int64
}

// BuildCounts rebuilds <schema>.qa with a total and per-state row count
// for every table in schema. Tables without a state column fall back to a
// whole-of-Australia count; a table that can't be counted at all is just a
// warning.
func BuildCounts(ctx context.Context, db database.DB, schema, owner string) error {
	_, err := db.Exec(ctx, fmt.Sprintf(
		`DROP TABLE IF EXISTS %[1]s.qa;
		 CREATE TABLE %[1]s.qa (table_name text, aus integer, act integer, nsw integer, nt integer, ot integer,
		     qld integer, sa integer, tas integer, vic integer, wa integer);
		 ALTER TABLE %[1]s.qa OWNER TO %[2]s`, schema, owner))
	if err != nil {
		return errors.Wrapf(err, "unable to create %s.qa", schema)
	}

	tables, err := schemaTables(ctx, db, schema)
	if err != nil {
		return err
	}

	for _, table := range tables {
		sql := fmt.Sprintf(
			`INSERT INTO %[1]s.qa
			 SELECT '%[2]s', SUM(AUS), SUM(ACT), SUM(NSW), SUM(NT), SUM(OT), SUM(QLD), SUM(SA), SUM(TAS), SUM(VIC), SUM(WA)
			 FROM (
			     SELECT 1 AS AUS,
			     CASE WHEN state = 'ACT' THEN 1 ELSE 0 END AS ACT,
			     CASE WHEN state = 'NSW' THEN 1 ELSE 0 END AS NSW,
			     CASE WHEN state = 'NT' THEN 1 ELSE 0 END AS NT,
			     CASE WHEN state = 'OT' THEN 1 ELSE 0 END AS OT,
			     CASE WHEN state = 'QLD' THEN 1 ELSE 0 END AS QLD,
			     CASE WHEN state = 'SA' THEN 1 ELSE 0 END AS SA,
			     CASE WHEN state = 'TAS' THEN 1 ELSE 0 END AS TAS,
			     CASE WHEN state = 'VIC' THEN 1 ELSE 0 END AS VIC,
			     CASE WHEN state = 'WA' THEN 1 ELSE 0 END AS WA
			     FROM %[1]s.%[2]s) AS sqt`, schema, table)

		if _, err := db.Exec(ctx, sql); err != nil {
			// no state column - count the whole table instead
			fallback := fmt.Sprintf("INSERT INTO %[1]s.qa (table_name, aus) SELECT '%[2]s', count(*) FROM %[1]s.%[2]s",
				schema, table)
			if _, err := db.Exec(ctx, fallback); err != nil {
				log.Warnf("couldn't get row count for %s.%s : %v", schema, table, err)
			}
		}
	}

	_, err = db.Exec(ctx, fmt.Sprintf("ANALYZE %s.qa", schema))
	return err
}

// CompareWithPrevious diffs this run's counts against the previous release
// schema, persists the result to <schema>.qa_comparison and logs it as an
// aligned table. A missing previous schema is a warning, never an error.
func CompareWithPrevious(ctx context.Context, db database.DB, schema, previousSchema, owner string) error {
	if previousSchema == "" {
		log.Warnf("\t\t- no previous schema configured for %s - row count comparison not done", schema)
		return nil
	}

	exists, err := database.SchemaExists(ctx, db, previousSchema)
	if err != nil {
		return err
	}
	if !exists {
		log.Warnf("\t\t- previous schema (%s) doesn't exist - row count comparison not done", previousSchema)
		return nil
	}

	newCounts, err := totalCounts(ctx, db, schema)
	if err != nil {
		return err
	}
	oldCounts, err := totalCounts(ctx, db, previousSchema)
	if err != nil {
		return err
	}

	rows := Compare(newCounts, oldCounts)

	_, err = db.Exec(ctx, fmt.Sprintf(
		`DROP TABLE IF EXISTS %[1]s.qa_comparison;
		 CREATE TABLE %[1]s.qa_comparison (table_name text, difference integer, new_count integer, old_count integer);
		 ALTER TABLE %[1]s.qa_comparison OWNER TO %[2]s`, schema, owner))
	if err != nil {
		return err
	}

	for _, row := range rows {
		_, err = db.Exec(ctx, fmt.Sprintf(
			"INSERT INTO %s.qa_comparison VALUES ('%s', %d, %d, %d)",
			schema, row.TableName, row.Difference, row.NewCount, row.OldCount))
		if err != nil {
			return err
		}
	}

	for _, line := range RenderComparison(rows) {
		log.Info(line)
	}

	_, err = db.Exec(ctx, fmt.Sprintf("ANALYZE %s.qa_comparison", schema))
	return err
}

// Compare joins new and old counts by table name. Tables present on only
// one side are skipped - they have nothing to diff against.
func Compare(newCounts, oldCounts map[string]int64) []ComparisonRow {
	var rows []ComparisonRow
	for table, newCount := range newCounts {
		oldCount, ok := oldCounts[table]
		if !ok {
			continue
		}
		rows = append(rows, ComparisonRow{
			TableName:  table,
			Difference: newCount - oldCount,
			NewCount:   newCount,
			OldCount:   oldCount,
		})
	}

	sort.Slice(rows, func(i, j int) bool { return rows[i].TableName < rows[j].TableName })
	return rows
}

// RenderComparison formats comparison rows as the aligned table logged at
// the end of a run.
func RenderComparison(rows []ComparisonRow) []string {
	border := "\t\t------------------------------------------------------------------------"

	lines := []string{
		border,
		fmt.Sprintf("\t\t|%-39s|%10s|%9s|%9s|", "table_name", "difference", "new_count", "old_count"),
		border,
	}
	for _, row := range rows {
		lines = append(lines, fmt.Sprintf("\t\t|%-39s|%10d|%9d|%9d|",
			row.TableName, row.Difference, row.NewCount, row.OldCount))
	}

	return append(lines, border)
}

func totalCounts(ctx context.Context, db database.Querier, schema string) (map[string]int64, error) {
	rows, err := db.Query(ctx, fmt.Sprintf("SELECT table_name, aus FROM %s.qa", schema))
	if err != nil {
		return nil, errors.Wrapf(err, "unable to read %s.qa", schema)
	}
	defer rows.Close()

	counts := make(map[string]int64)
	for rows.Next() {
		var table string
		var aus *int64
		if err := rows.Scan(&table, &aus); err != nil {
			return nil, err
		}
		if aus != nil {
			counts[table] = *aus
		}
	}

	return counts, rows.Err()
}

func schemaTables(ctx context.Context, db database.Querier, schema string) ([]string, error) {
	rows, err := db.Query(ctx,
		`SELECT table_name FROM information_schema.tables
		 WHERE table_schema = $1 AND table_name NOT IN ('qa', 'qa_comparison')
		 ORDER BY table_name`, schema)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to list tables in %s", schema)
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
