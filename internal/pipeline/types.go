package pipeline

import (
	"time"

	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/pkg/metrics"
	"github.com/ajitpratap0/tabclean/pkg/quality"
)

// PipelineConfig contains runtime settings that are not part of the cleaning
// definition itself.
type PipelineConfig struct {
	// Workers bounds how many output columns are computed at once. 0 means
	// one per CPU.
	Workers int
	// Metrics receives run metrics when set.
	Metrics *metrics.Collector
	Logger  *zap.Logger
}

// FileResult is the outcome of one input file.
type FileResult struct {
	Input    string          `json:"input"`
	Output   string          `json:"output,omitempty"`
	Report   *quality.Report `json:"report,omitempty"`
	Error    string          `json:"error,omitempty"`
	Duration time.Duration   `json:"duration_ns"`

	err error
}

// Err returns the failure of the file, nil on success.
func (r *FileResult) Err() error { return r.err }

// Summary is the outcome of a run over all inputs.
type Summary struct {
	RunID  string        `json:"run_id"`
	Files  []*FileResult `json:"files"`
	Failed int           `json:"failed"`
}

// Succeeded returns the number of files written.
func (s *Summary) Succeeded() int {
	return len(s.Files) - s.Failed
}
