package authority

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"
)

// fakeDB scripts the catalog queries and row counts Clean relies on, and
// records every executed statement.
type fakeDB struct {
	mu     sync.Mutex
	execed []string

	failOn  string              // Exec fails on statements containing this
	tables  []string            // authority table listing
	columns map[string][]string // table -> column names
	counts  map[string]int64    // table (or "temp_aut") -> row count
}

func (f *fakeDB) Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	f.mu.Lock()
	f.execed = append(f.execed, sql)
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(sql, f.failOn) {
		return pgconn.CommandTag{}, errors.New("boom")
	}
	return pgconn.CommandTag{}, nil
}

func (f *fakeDB) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	if strings.Contains(sql, "information_schema.tables") {
		return &stringRows{values: f.tables}, nil
	}
	if strings.Contains(sql, "information_schema.columns") {
		return &stringRows{values: f.columns[args[1].(string)]}, nil
	}
	return &stringRows{}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	if strings.Contains(sql, "temp_aut") {
		return countRow{f.counts["temp_aut"]}
	}
	for table, count := range f.counts {
		if strings.Contains(sql, "."+table) {
			return countRow{count}
		}
	}
	return countRow{}
}

func (f *fakeDB) executedMatching(substr string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []string
	for _, sql := range f.execed {
		if strings.Contains(sql, substr) {
			matches = append(matches, sql)
		}
	}
	return matches
}

type stringRows struct {
	values []string
	idx    int
}

func (r *stringRows) Close()                                       {}
func (r *stringRows) Err() error                                   { return nil }
func (r *stringRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *stringRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *stringRows) Next() bool                                   { r.idx++; return r.idx <= len(r.values) }
func (r *stringRows) Values() ([]any, error)                       { return nil, nil }
func (r *stringRows) RawValues() [][]byte                          { return nil }
func (r *stringRows) Conn() *pgx.Conn                              { return nil }

func (r *stringRows) Scan(dest ...any) error {
	*dest[0].(*string) = r.values[r.idx-1]
	return nil
}

type countRow struct {
	count int64
}

func (r countRow) Scan(dest ...any) error {
	*dest[0].(*int64) = r.count
	return nil
}
