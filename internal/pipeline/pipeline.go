// Package pipeline runs a cleaning definition over a batch of input files:
// each file is read, mapped onto the target columns, checked by the quality
// rules and written out.
//
// # Basic Usage
//
//	cfg, err := config.Load("limpieza.yaml")
//	if err != nil {
//	    return err
//	}
//	p, err := pipeline.New(cfg, &pipeline.PipelineConfig{Logger: logger.Get()})
//	if err != nil {
//	    return err
//	}
//	summary, err := p.Run(ctx, cfg.InputFiles)
//
// A failing file is logged and recorded in the summary; the remaining files
// are still processed.
package pipeline

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shirou/gopsutil/v3/process"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/connector/core"
	"github.com/ajitpratap0/tabclean/pkg/connector/registry"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/logger"
	"github.com/ajitpratap0/tabclean/pkg/mapping"
	"github.com/ajitpratap0/tabclean/pkg/metrics"
	"github.com/ajitpratap0/tabclean/pkg/quality"
)

// Pipeline applies one configuration to input files.
type Pipeline struct {
	cfg         *config.Config
	mapping     *mapping.Engine
	quality     *quality.Engine
	destination core.Destination
	metrics     *metrics.Collector
	logger      *zap.Logger

	mu      sync.Mutex
	sources map[string]core.Source
}

// New compiles cfg. Configuration errors, such as an unknown transform or
// output format, are reported here before any file is touched.
func New(cfg *config.Config, pc *PipelineConfig) (*Pipeline, error) {
	if pc == nil {
		pc = &PipelineConfig{}
	}
	log := pc.Logger
	if log == nil {
		log = logger.Get()
	}

	opts := mapping.Options{Workers: pc.Workers, Logger: log}
	if pc.Metrics != nil {
		opts.Observe = pc.Metrics.ObserveTransform
	}
	engine, err := mapping.Compile(cfg.Mappings, opts)
	if err != nil {
		return nil, err
	}

	dest, err := registry.CreateDestination(cfg.Output.Format, cfg.Output, log)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		cfg:         cfg,
		mapping:     engine,
		quality:     quality.NewEngine(cfg.Quality, log),
		destination: dest,
		metrics:     pc.Metrics,
		logger:      log.With(zap.String("component", "pipeline")),
		sources:     make(map[string]core.Source),
	}, nil
}

// Run expands inputs and processes every file in order. The returned error is
// only set when no file could be attempted; per-file failures are in the
// summary.
func (p *Pipeline) Run(ctx context.Context, inputs []string) (*Summary, error) {
	runID := uuid.NewString()
	ctx = logger.WithRunID(ctx, runID)
	log := logger.FromContext(ctx, p.logger)

	files, err := ExpandInputs(inputs, log)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, errors.New(errors.ErrorTypeFile, "no input files to process")
	}

	log.Info("starting run",
		zap.Int("files", len(files)),
		zap.Int("columns", len(p.mapping.Chains())),
		zap.String("format", p.cfg.Output.Format))

	summary := &Summary{RunID: runID, Files: make([]*FileResult, 0, len(files))}
	single := len(files) == 1
	// output path -> input that claimed it
	claimed := make(map[string]string, len(files))
	for _, path := range files {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		output := OutputPath(path, p.cfg.Output, single)
		key := filepath.Clean(output)
		var result *FileResult
		if first, taken := claimed[key]; taken {
			err := errors.Newf(errors.ErrorTypeFile, "output %s is already produced by %s", output, first).
				WithDetail("output", output).
				WithDetail("conflicts_with", first)
			result = p.finish(ctx, path, output, time.Now(), nil, err)
		} else {
			claimed[key] = path
			result = p.ProcessFile(ctx, path, output)
		}
		summary.Files = append(summary.Files, result)
		if result.err != nil {
			summary.Failed++
		}
	}

	fields := []zap.Field{
		zap.Int("succeeded", summary.Succeeded()),
		zap.Int("failed", summary.Failed),
	}
	if rss, ok := residentMemory(); ok {
		fields = append(fields, zap.Uint64("rss_bytes", rss))
	}
	log.Info("run finished", fields...)
	return summary, nil
}

// residentMemory reports the resident set size of this process.
func residentMemory() (uint64, bool) {
	proc, err := process.NewProcess(int32(os.Getpid()))
	if err != nil {
		return 0, false
	}
	info, err := proc.MemoryInfo()
	if err != nil {
		return 0, false
	}
	return info.RSS, true
}

// ProcessFile cleans one file into output.
func (p *Pipeline) ProcessFile(ctx context.Context, input, output string) *FileResult {
	start := time.Now()
	report, err := p.processFile(logger.WithFile(ctx, input), input, output)
	return p.finish(ctx, input, output, start, report, err)
}

// finish logs the outcome of one file, counts it and builds its result.
func (p *Pipeline) finish(ctx context.Context, input, output string, start time.Time, report *quality.Report, err error) *FileResult {
	log := logger.FromContext(logger.WithFile(ctx, input), p.logger)
	result := &FileResult{Input: input, Duration: time.Since(start)}

	status := metrics.StatusSuccess
	if err != nil {
		status = metrics.StatusFailed
		result.err = err
		result.Error = err.Error()
		log.Error("file failed", zap.Error(err), zap.Duration("duration", result.Duration))
	} else {
		result.Output = output
		result.Report = report
		log.Info("file written",
			zap.String("output", output),
			zap.Int("rows", report.RowsTotal),
			zap.Int("duplicates", report.DuplicatesFound),
			zap.Duration("duration", result.Duration))
	}
	if p.metrics != nil {
		p.metrics.FileProcessed(status, result.Duration)
	}
	return result
}

func (p *Pipeline) processFile(ctx context.Context, input, output string) (*quality.Report, error) {
	src, err := p.sourceFor(input)
	if err != nil {
		return nil, err
	}

	raw, err := src.Read(ctx, input)
	if err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.RowsRead(raw.Rows())
	}

	mapped, err := p.mapping.Apply(ctx, raw)
	if err != nil {
		return nil, err
	}

	clean, report := p.quality.Run(ctx, mapped)

	if err := p.destination.Write(ctx, output, clean); err != nil {
		return nil, err
	}
	if p.metrics != nil {
		p.metrics.RowsWritten(clean.Rows())
		p.metrics.RecordQuality(report.DuplicatesFound, report.InvalidValuesByColumn, report.NullCountsByColumn)
	}
	return report, nil
}

// sourceFor returns the source connector reading path, creating it on first
// use.
func (p *Pipeline) sourceFor(path string) (core.Source, error) {
	name, ok := registry.SourceForPath(path)
	if !ok {
		return nil, errors.New(errors.ErrorTypeFile, "unsupported input file type").
			WithDetail("path", path)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	if src, ok := p.sources[name]; ok {
		return src, nil
	}
	src, err := registry.CreateSource(name, p.cfg.Input, p.logger)
	if err != nil {
		return nil, err
	}
	p.sources[name] = src
	return src, nil
}
