package database

import (
	"context"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeQuerier struct {
	name string
	err  error
}

func (f fakeQuerier) Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error) {
	return nil, nil
}

func (f fakeQuerier) QueryRow(ctx context.Context, sql string, args ...any) pgx.Row {
	return fakeRow{name: f.name, err: f.err}
}

type fakeRow struct {
	name string
	err  error
}

func (r fakeRow) Scan(dest ...any) error {
	if r.err != nil {
		return r.err
	}
	*dest[0].(*string) = r.name
	return nil
}

func TestSchemaExists(t *testing.T) {
	exists, err := SchemaExists(context.Background(), fakeQuerier{name: "gnaf"}, "gnaf")
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestSchemaExistsNoRows(t *testing.T) {
	exists, err := SchemaExists(context.Background(), fakeQuerier{err: pgx.ErrNoRows}, "gnaf_202508")
	require.NoError(t, err)
	assert.False(t, exists)
}

func TestSchemaExistsQueryError(t *testing.T) {
	_, err := SchemaExists(context.Background(), fakeQuerier{err: assert.AnError}, "gnaf")
	require.Error(t, err)
}
