// Package compressed opens output files for destinations. Files are written
// under a temporary name and renamed into place on Commit. A ".gz", ".zst"
// or ".lz4" suffix on the target path enables compression.
package compressed

import (
	"bufio"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"

	"github.com/ajitpratap0/tabclean/pkg/errors"
)

// Algorithm names a compression format.
type Algorithm string

const (
	None Algorithm = "none"
	Gzip Algorithm = "gzip"
	Zstd Algorithm = "zstd"
	LZ4  Algorithm = "lz4"
)

// AlgorithmForPath picks the compression implied by path's extension.
func AlgorithmForPath(path string) Algorithm {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".gz":
		return Gzip
	case ".zst":
		return Zstd
	case ".lz4":
		return LZ4
	}
	return None
}

// TrimExtension removes a compression extension from path, so that
// "out.csv.gz" reports its format as ".csv".
func TrimExtension(path string) string {
	if AlgorithmForPath(path) == None {
		return path
	}
	return strings.TrimSuffix(path, filepath.Ext(path))
}

// Wrapper is an output file being written.
type Wrapper struct {
	path       string
	file       *os.File
	buffered   *bufio.Writer
	compressor io.WriteCloser
	out        io.Writer
	done       bool
}

// Create opens a temporary file next to path, creating parent directories.
func Create(path string) (*Wrapper, error) {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create output directory").
			WithDetail("dir", dir)
	}
	file, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*.tmp")
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to create output file").
			WithDetail("path", path)
	}

	w := &Wrapper{path: path, file: file, buffered: bufio.NewWriterSize(file, 64*1024)}
	w.out = w.buffered

	switch AlgorithmForPath(path) {
	case Gzip:
		w.compressor = gzip.NewWriter(w.buffered)
	case Zstd:
		enc, err := zstd.NewWriter(w.buffered)
		if err != nil {
			w.Abort()
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "failed to create zstd encoder")
		}
		w.compressor = enc
	case LZ4:
		w.compressor = lz4.NewWriter(w.buffered)
	}
	if w.compressor != nil {
		w.out = w.compressor
	}
	return w, nil
}

// Write implements io.Writer.
func (w *Wrapper) Write(p []byte) (int, error) {
	return w.out.Write(p)
}

// Commit flushes everything and moves the file to its final path.
func (w *Wrapper) Commit() error {
	if w.done {
		return nil
	}
	w.done = true

	if w.compressor != nil {
		if err := w.compressor.Close(); err != nil {
			w.discard()
			return errors.Wrap(err, errors.ErrorTypeFile, "failed to finish compression").
				WithDetail("path", w.path)
		}
	}
	if err := w.buffered.Flush(); err != nil {
		w.discard()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to flush output").
			WithDetail("path", w.path)
	}
	if err := w.file.Chmod(outputMode(w.path)); err != nil {
		w.discard()
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to set output permissions").
			WithDetail("path", w.path)
	}
	if err := w.file.Close(); err != nil {
		_ = os.Remove(w.file.Name())
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to close output").
			WithDetail("path", w.path)
	}
	if err := os.Rename(w.file.Name(), w.path); err != nil {
		_ = os.Remove(w.file.Name())
		return errors.Wrap(err, errors.ErrorTypeFile, "failed to move output into place").
			WithDetail("path", w.path)
	}
	return nil
}

// outputMode keeps the permissions of a file being replaced. New files are
// world-readable, unlike the owner-only temporary file.
func outputMode(path string) os.FileMode {
	if info, err := os.Stat(path); err == nil && info.Mode().IsRegular() {
		return info.Mode().Perm()
	}
	return 0o644
}

// Abort drops the temporary file. It is a no-op after Commit.
func (w *Wrapper) Abort() {
	if w.done {
		return
	}
	w.done = true
	if w.compressor != nil {
		_ = w.compressor.Close()
	}
	w.discard()
}

func (w *Wrapper) discard() {
	_ = w.file.Close()
	_ = os.Remove(w.file.Name())
}
