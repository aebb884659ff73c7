package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/ajitpratap0/tabclean/internal/pipeline"
	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/logger"
	"github.com/ajitpratap0/tabclean/pkg/metrics"
)

// runOptions are the run command's own flags.
type runOptions struct {
	configFile string
	inputs     []string
	output     string
	format     string
	timeout    time.Duration
}

func newRunCommand(v *viper.Viper) *cobra.Command {
	opts := &runOptions{}

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Clean input files according to a configuration",
		Long: `Clean one or more input files according to a YAML configuration.

Inputs are taken from --input, or from the configuration's input_files when no
--input is given. Directories contribute their .xlsx, .csv and .csv.gz files.

Example:
  tabclean run -c limpieza.yaml -i clientes.xlsx
  tabclean run -c limpieza.yaml --report-format json --report-file informe.json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runClean(cmd, v, opts)
		},
	}

	flags := cmd.Flags()
	flags.StringVarP(&opts.configFile, "config", "c", "", "Path to the YAML configuration (required)")
	flags.StringSliceVarP(&opts.inputs, "input", "i", nil, "Input file or directory; repeatable")
	flags.StringVarP(&opts.output, "output", "o", "", "Output file for a single input, overriding output.file_name")
	flags.StringVar(&opts.format, "format", "", "Output format, overriding output.format (xlsx, csv, json, jsonl, avro)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "Abort the run after this long; 0 disables the limit")
	flags.Int(keyWorkers, 0, "Columns computed in parallel; 0 uses one per CPU")
	flags.String(keyReportFormat, pipeline.ReportText, "Report format (text, json)")
	flags.String(keyReportFile, "", "Write the report to this file instead of stdout")
	flags.String(keyMetricsFile, "", "Write Prometheus metrics in text format to this file")
	_ = cmd.MarkFlagRequired("config")

	for _, key := range []string{keyWorkers, keyReportFormat, keyReportFile, keyMetricsFile} {
		_ = v.BindPFlag(key, flags.Lookup(key))
	}
	return cmd
}

func runClean(cmd *cobra.Command, v *viper.Viper, opts *runOptions) error {
	ctx := cmd.Context()
	if opts.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, opts.timeout)
		defer cancel()
	}
	log := logger.Get()

	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return err
	}
	if opts.output != "" {
		cfg.Output.FileName = opts.output
	}
	if opts.format != "" {
		cfg.Output.Format = opts.format
		cfg.ApplyDefaults()
		if err := cfg.Validate(); err != nil {
			return err
		}
	}

	inputs := opts.inputs
	if len(inputs) == 0 {
		inputs = cfg.InputFiles
	}
	if len(inputs) == 0 {
		return fmt.Errorf("no inputs: pass --input or set input_files in %s", opts.configFile)
	}

	var collector *metrics.Collector
	metricsFile := v.GetString(keyMetricsFile)
	if metricsFile != "" {
		collector = metrics.NewCollector()
	}

	p, err := pipeline.New(cfg, &pipeline.PipelineConfig{
		Workers: v.GetInt(keyWorkers),
		Metrics: collector,
		Logger:  log,
	})
	if err != nil {
		return err
	}

	summary, runErr := p.Run(ctx, inputs)
	if summary != nil {
		if err := writeReport(cmd.OutOrStdout(), v, summary); err != nil {
			return err
		}
	}
	if collector != nil {
		if err := collector.WriteToTextfile(metricsFile); err != nil {
			log.Error("failed to write metrics", zap.Error(err))
		}
	}
	if runErr != nil {
		return runErr
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d files failed", summary.Failed, len(summary.Files))
	}
	return nil
}

func writeReport(stdout io.Writer, v *viper.Viper, summary *pipeline.Summary) error {
	format := v.GetString(keyReportFormat)
	path := v.GetString(keyReportFile)
	if path == "" {
		return pipeline.WriteReport(stdout, summary, format)
	}

	f, err := os.Create(path) //nolint:gosec // G304: report path comes from the operator
	if err != nil {
		return fmt.Errorf("failed to create report file %s: %w", path, err)
	}
	if err := pipeline.WriteReport(f, summary, format); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

// compileOnly builds everything a run needs from cfg without touching data.
func compileOnly(cfg *config.Config) error {
	_, err := pipeline.New(cfg, &pipeline.PipelineConfig{Logger: logger.Get()})
	return err
}
