// Package testutil provides testing utilities for tabclean
package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"

	"github.com/ajitpratap0/tabclean/pkg/table"
)

// TestLogger creates a test logger that writes to the test output.
// The logger is automatically cleaned up when the test completes.
func TestLogger(t *testing.T) *zap.Logger {
	return zaptest.NewLogger(t)
}

// TestContext creates a test context with a 30-second timeout.
// The caller must call the returned cancel function to avoid leaks.
func TestContext(_ *testing.T) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), 30*time.Second)
}

// Table builds a table from alternating column names and columns, failing
// the test on a shape error:
//
//	tbl := testutil.Table(t, "id", table.Column{table.Int(1)}, "name", table.TextColumn("a"))
func Table(t *testing.T, namesAndColumns ...interface{}) *table.Table {
	t.Helper()
	require.Zero(t, len(namesAndColumns)%2, "names and columns must alternate")

	names := make([]string, 0, len(namesAndColumns)/2)
	cols := make([]table.Column, 0, len(namesAndColumns)/2)
	for i := 0; i < len(namesAndColumns); i += 2 {
		name, ok := namesAndColumns[i].(string)
		require.True(t, ok, "argument %d must be a column name", i)
		col, ok := namesAndColumns[i+1].(table.Column)
		require.True(t, ok, "argument %d must be a table.Column", i+1)
		names = append(names, name)
		cols = append(cols, col)
	}

	tbl, err := table.FromColumns(names, cols)
	require.NoError(t, err)
	return tbl
}

// Ints builds an integer column.
func Ints(values ...int64) table.Column {
	col := make(table.Column, len(values))
	for i, v := range values {
		col[i] = table.Int(v)
	}
	return col
}

// Strings renders a column as text, with "<nil>" for null cells, which
// keeps assertions readable.
func Strings(col table.Column) []string {
	out := make([]string, len(col))
	for i, v := range col {
		if v.IsNull() {
			out[i] = "<nil>"
			continue
		}
		out[i] = v.String()
	}
	return out
}

// AssertEventually asserts that a condition becomes true within the specified timeout.
// It checks the condition every 10ms until it succeeds or the timeout expires.
func AssertEventually(t *testing.T, condition func() bool, timeout time.Duration, msg string) {
	t.Helper()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if condition() {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}

	t.Fatalf("condition not met within %v: %s", timeout, msg)
}
