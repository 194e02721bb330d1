package pipeline

import (
	"context"
	"strings"
	"sync"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pkg/errors"

	"github.com/minus34/gnaf-loader-go/discovery"
)

// fakeDB accepts every statement and answers every query with zero rows,
// which keeps the loader on its happy path while recording what it ran.
type fakeDB struct {
	mu     sync.Mutex
	execed []string

	failOn string // Exec fails on statements containing this
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
	return &emptyRows{}, nil
}

func (f *fakeDB) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return zeroRow{}
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

type emptyRows struct{}

func (r *emptyRows) Close()                                       {}
func (r *emptyRows) Err() error                                   { return nil }
func (r *emptyRows) CommandTag() pgconn.CommandTag                { return pgconn.CommandTag{} }
func (r *emptyRows) FieldDescriptions() []pgconn.FieldDescription { return nil }
func (r *emptyRows) Next() bool                                   { return false }
func (r *emptyRows) Scan(dest ...any) error                       { return nil }
func (r *emptyRows) Values() ([]any, error)                       { return nil, nil }
func (r *emptyRows) RawValues() [][]byte                          { return nil }
func (r *emptyRows) Conn() *pgx.Conn                              { return nil }

type zeroRow struct{}

func (zeroRow) Scan(dest ...any) error { return nil }

// fakeImporter records every file it is asked to import and fails the ones
// whose path contains failOn.
type fakeImporter struct {
	mu       sync.Mutex
	imported []string

	failOn string
}

func (f *fakeImporter) Import(ctx context.Context, item discovery.ShapefileItem) string {
	f.mu.Lock()
	f.imported = append(f.imported, item.FilePath)
	f.mu.Unlock()

	if f.failOn != "" && strings.Contains(strings.ToLower(item.FilePath), f.failOn) {
		return "IMPORT OF " + item.FilePath + " FAILED : boom"
	}
	return "SUCCESS"
}

func (f *fakeImporter) importedMatching(substr string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []string
	for _, path := range f.imported {
		if strings.Contains(strings.ToLower(path), substr) {
			matches = append(matches, path)
		}
	}
	return matches
}
