package metrics

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectorCounts(t *testing.T) {
	c := NewCollector()

	c.RowsRead(10)
	c.RowsRead(5)
	c.RowsWritten(12)
	c.RecordQuality(3, map[string]int{"estado": 2}, map[string]int{"estado": 1, "id": 0})
	c.RecordQuality(1, map[string]int{"estado": 1}, nil)
	c.FileProcessed(StatusSuccess, time.Second)
	c.FileProcessed(StatusFailed, time.Millisecond)
	c.ObserveTransform("trim", time.Microsecond)

	assert.Equal(t, 15.0, testutil.ToFloat64(c.rowsRead))
	assert.Equal(t, 12.0, testutil.ToFloat64(c.rowsWritten))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.duplicatesFound))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.invalidValues.WithLabelValues("estado")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.filesProcessed.WithLabelValues(StatusFailed)))
	assert.Equal(t, 1, testutil.CollectAndCount(c.transformDuration))
}

func TestCollectorsAreIndependent(t *testing.T) {
	a, b := NewCollector(), NewCollector()
	a.RowsRead(1)
	assert.Zero(t, testutil.ToFloat64(b.rowsRead))
}

func TestWriteToTextfile(t *testing.T) {
	c := NewCollector()
	c.RowsWritten(7)

	path := filepath.Join(t.TempDir(), "tabclean.prom")
	require.NoError(t, c.WriteToTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(data), "tabclean_rows_written_total 7"), string(data))
}

func TestTimer(t *testing.T) {
	timer := NewTimer()
	time.Sleep(time.Millisecond)
	assert.GreaterOrEqual(t, timer.Stop(), time.Millisecond)
}
