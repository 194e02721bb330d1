// Package partition splits one large SQL statement into independent
// variants, each scoped to a disjoint slice of its source table, so they
// can run concurrently without lock contention. Disjoint key ranges (not
// arbitrary row counts) are what make the variants safe to parallelize:
// Postgres serializes conflicting writes, non-overlapping ranges never
// conflict.
package partition

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"

	"github.com/minus34/gnaf-loader-go/database"
)

// Below this id span the overhead of partitioning outweighs the benefit
// and the statement should run unpartitioned.
const MinSplitRows = 10000

// SplitByID reads the min and max of table's numeric id column and emits
// chunks statement variants, each constrained to a half-open id range
// (lo, hi]. The ranges are contiguous and together cover (min-1, max], so
// the union of the variants' effects equals the unpartitioned statement.
// Returns nil when the table is too small to be worth splitting.
func SplitByID(ctx context.Context, db database.Querier, sql, schema, table, alias, idField string, chunks int) ([]string, error) {
	var min, max *int64

	query := fmt.Sprintf("SELECT MIN(%s), MAX(%s) FROM %s.%s", idField, idField, schema, table)
	if err := db.QueryRow(ctx, query).Scan(&min, &max); err != nil {
		return nil, errors.Wrapf(err, "unable to get %s range for %s.%s", idField, schema, table)
	}
	if min == nil || max == nil {
		// empty table
		return nil, nil
	}

	span := *max - *min
	if span < int64(chunks) || span < MinSplitRows {
		return nil, nil
	}

	perChunk := span/int64(chunks) + 1

	stmts := make([]string, 0, chunks)
	start := *min - 1
	for i := 0; i < chunks; i++ {
		end := *min + int64(i+1)*perChunk - 1
		if end > *max || i == chunks-1 {
			end = *max
		}

		predicate := fmt.Sprintf("%s.%s > %d AND %s.%s <= %d", alias, idField, start, alias, idField, end)
		stmts = append(stmts, spliceWhere(sql, predicate))
		start = end
	}

	return stmts, nil
}

// SplitByState emits one statement variant per state, constrained to that
// state's rows ahead of the trailing GROUP BY. States partition the data
// naturally, so the variants are disjoint by construction.
func SplitByState(sql string, states []string) []string {
	stmts := make([]string, 0, len(states))
	for _, state := range states {
		stmts = append(stmts, strings.Replace(sql, "GROUP BY ",
			fmt.Sprintf("WHERE state = '%s' GROUP BY ", state), 1))
	}
	return stmts
}

// spliceWhere adds a range predicate to a statement: ANDed onto an
// existing WHERE clause, otherwise as a new one, in either case ahead of a
// trailing GROUP BY.
func spliceWhere(sql, predicate string) string {
	sql = strings.TrimRight(sql, " \t\n;")

	keyword := "WHERE"
	if strings.Contains(sql, "WHERE ") {
		keyword = "AND"
	}

	if idx := strings.LastIndex(sql, "GROUP BY"); idx >= 0 {
		return fmt.Sprintf("%s%s %s %s;", sql[:idx], keyword, predicate, sql[idx:])
	}

	return fmt.Sprintf("%s %s %s;", sql, keyword, predicate)
}
