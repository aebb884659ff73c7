package pipeline

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/destinations/compressed"
	"github.com/ajitpratap0/tabclean/pkg/connector/registry"
	"github.com/ajitpratap0/tabclean/pkg/errors"
)

// ExpandInputs resolves files and directories into the list of input files.
// Directories contribute, in name order, the files some source connector
// reads; subdirectories are not entered. Paths that do not exist are logged
// and skipped, and so are legacy ".xls" workbooks, which no connector reads.
// A path given explicitly is kept even when its extension is unknown, so the
// failure is reported for that file.
func ExpandInputs(paths []string, log *zap.Logger) ([]string, error) {
	if log == nil {
		log = zap.NewNop()
	}

	var files []string
	seen := make(map[string]struct{})
	add := func(path string) {
		if _, dup := seen[path]; dup {
			return
		}
		seen[path] = struct{}{}
		files = append(files, path)
	}

	for _, p := range paths {
		info, err := os.Stat(p)
		if err != nil {
			log.Warn("input not found, skipping", zap.String("path", p), zap.Error(err))
			continue
		}
		if !info.IsDir() {
			add(p)
			continue
		}

		entries, err := os.ReadDir(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeFile, "failed to list input directory").
				WithDetail("dir", p)
		}
		names := make([]string, 0, len(entries))
		for _, e := range entries {
			if !e.IsDir() {
				names = append(names, e.Name())
			}
		}
		sort.Strings(names)

		for _, name := range names {
			path := filepath.Join(p, name)
			if strings.EqualFold(filepath.Ext(name), ".xls") {
				log.Warn("legacy .xls workbooks are not supported, skipping", zap.String("path", path))
				continue
			}
			if _, ok := registry.SourceForPath(path); ok {
				add(path)
			}
		}
	}
	return files, nil
}

// OutputPath returns where the cleaned form of input is written. A single
// input goes to the configured file name when there is one; otherwise the
// output is named after the input stem plus suffix, in the output directory
// or next to the input.
func OutputPath(input string, out config.OutputConfig, single bool) string {
	if single && out.FileName != "" {
		return out.FileName
	}

	dir := out.Dir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	return filepath.Join(dir, stem(input)+out.Suffix+out.Extension())
}

// stem strips the directory, any compression extension and the format
// extension: "in/ventas.csv.gz" becomes "ventas".
func stem(path string) string {
	base := compressed.TrimExtension(filepath.Base(path))
	return strings.TrimSuffix(base, filepath.Ext(base))
}
