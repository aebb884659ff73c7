package compressed

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAlgorithmForPath(t *testing.T) {
	assert.Equal(t, Gzip, AlgorithmForPath("out.csv.gz"))
	assert.Equal(t, Zstd, AlgorithmForPath("OUT.JSONL.ZST"))
	assert.Equal(t, LZ4, AlgorithmForPath("out.avro.lz4"))
	assert.Equal(t, None, AlgorithmForPath("out.csv"))
	assert.Equal(t, "out.csv", TrimExtension("out.csv.gz"))
	assert.Equal(t, "out.csv", TrimExtension("out.csv"))
}

func TestCommitPlain(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "out.csv")

	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "a;b\n")
	require.NoError(t, err)

	_, err = os.Stat(path)
	assert.True(t, os.IsNotExist(err), "nothing at the final path before commit")

	require.NoError(t, w.Commit())
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "a;b\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file removed")
}

func TestCommitGzip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv.gz")
	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "hola\n")
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	zr, err := gzip.NewReader(f)
	require.NoError(t, err)
	data, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Equal(t, "hola\n", string(data))
}

func TestCommitZstd(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.jsonl.zst")
	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "{}\n")
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	dec, err := zstd.NewReader(bytes.NewReader(raw))
	require.NoError(t, err)
	defer dec.Close()
	data, err := io.ReadAll(dec)
	require.NoError(t, err)
	assert.Equal(t, "{}\n", string(data))
}

func TestCommitLZ4(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv.lz4")
	w, err := Create(path)
	require.NoError(t, err)
	_, err = io.WriteString(w, "x;y\n1;2\n")
	require.NoError(t, err)
	require.NoError(t, w.Commit())

	f, err := os.Open(path)
	require.NoError(t, err)
	defer f.Close()
	data, err := io.ReadAll(lz4.NewReader(f))
	require.NoError(t, err)
	assert.Equal(t, "x;y\n1;2\n", string(data))
}

func TestAbortLeavesExistingFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.csv")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0o600))

	w, err := Create(path)
	require.NoError(t, err)
	_, _ = io.WriteString(w, "new")
	w.Abort()
	w.Abort()

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
	assert.NoError(t, w.Commit(), "commit after abort is a no-op")
}

func TestCommitFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("unix permissions")
	}
	dir := t.TempDir()

	fresh := filepath.Join(dir, "fresh.csv")
	w, err := Create(fresh)
	require.NoError(t, err)
	require.NoError(t, w.Commit())
	info, err := os.Stat(fresh)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o644), info.Mode().Perm(), "new outputs are world-readable")

	replaced := filepath.Join(dir, "replaced.csv")
	require.NoError(t, os.WriteFile(replaced, []byte("old"), 0o600))
	require.NoError(t, os.Chmod(replaced, 0o640))
	w, err = Create(replaced)
	require.NoError(t, err)
	_, err = io.WriteString(w, "new")
	require.NoError(t, err)
	require.NoError(t, w.Commit())
	info, err = os.Stat(replaced)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o640), info.Mode().Perm(), "replaced outputs keep their mode")
}
