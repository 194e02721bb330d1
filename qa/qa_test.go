package qa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompare(t *testing.T) {
	rows := Compare(map[string]int64{"t1": 100}, map[string]int64{"t1": 90})

	require.Len(t, rows, 1)
	assert.Equal(t, ComparisonRow{TableName: "t1", Difference: 10, NewCount: 100, OldCount: 90}, rows[0])
}

func TestCompareSkipsUnmatchedTables(t *testing.T) {
	rows := Compare(
		map[string]int64{"localities": 15000, "new_table": 5},
		map[string]int64{"localities": 14900, "dropped_table": 7},
	)

	require.Len(t, rows, 1)
	assert.Equal(t, "localities", rows[0].TableName)
	assert.Equal(t, int64(100), rows[0].Difference)
}

func TestCompareSortsByTableName(t *testing.T) {
	rows := Compare(
		map[string]int64{"streets": 1, "localities": 2, "address_principals": 3},
		map[string]int64{"streets": 1, "localities": 2, "address_principals": 3},
	)

	require.Len(t, rows, 3)
	assert.Equal(t, "address_principals", rows[0].TableName)
	assert.Equal(t, "localities", rows[1].TableName)
	assert.Equal(t, "streets", rows[2].TableName)
}

func TestCompareShrinkageIsNegative(t *testing.T) {
	rows := Compare(map[string]int64{"t1": 90}, map[string]int64{"t1": 100})
	require.Len(t, rows, 1)
	assert.Equal(t, int64(-10), rows[0].Difference)
}

func TestRenderComparison(t *testing.T) {
	lines := RenderComparison([]ComparisonRow{
		{TableName: "localities", Difference: 10, NewCount: 100, OldCount: 90},
	})

	require.Len(t, lines, 5)
	assert.Equal(t, "\t\t|table_name                             |difference|new_count|old_count|", lines[1])
	assert.Equal(t, "\t\t|localities                             |        10|      100|       90|", lines[3])

	// every row lines up with the header
	for _, line := range lines[1:4] {
		assert.Len(t, line, len(lines[1]))
	}
}

func TestRenderComparisonEmpty(t *testing.T) {
	lines := RenderComparison(nil)
	assert.Len(t, lines, 4, "borders and header only")
}
