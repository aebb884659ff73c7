package mapping

import (
	"context"
	"runtime"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ajitpratap0/tabclean/pkg/config"
	"github.com/ajitpratap0/tabclean/pkg/errors"
	"github.com/ajitpratap0/tabclean/pkg/logger"
	"github.com/ajitpratap0/tabclean/pkg/table"
)

// Options configures an Engine.
type Options struct {
	// Workers bounds how many columns are computed at once. 0 means one per
	// CPU.
	Workers int
	Logger  *zap.Logger
	// Observe, when set, receives the duration of every transform step. It
	// is called from several goroutines.
	Observe func(transform string, elapsed time.Duration)
}

// Engine computes output tables from source tables.
type Engine struct {
	chains  []*Chain
	workers int
	logger  *zap.Logger
	observe func(string, time.Duration)
}

// Compile builds a chain for every mapping, in declaration order. It fails on
// the first configuration error.
func Compile(mappings config.Mappings, opts Options) (*Engine, error) {
	if opts.Workers <= 0 {
		opts.Workers = runtime.NumCPU()
	}
	if opts.Logger == nil {
		opts.Logger = logger.Get()
	}

	e := &Engine{
		chains:  make([]*Chain, 0, len(mappings)),
		workers: opts.Workers,
		logger:  opts.Logger.With(zap.String("component", "mapping_engine")),
		observe: opts.Observe,
	}
	for _, m := range mappings {
		chain, err := NewChain(m)
		if err != nil {
			return nil, err
		}
		e.chains = append(e.chains, chain)
	}
	return e, nil
}

// Chains returns the compiled chains in output order.
func (e *Engine) Chains() []*Chain { return e.chains }

// Apply computes the output table. Columns are computed concurrently, each
// chain's steps in order; the result holds the targets in declaration order
// and has the input's row count. A source column missing from in yields an
// all-null target. The input table is not modified.
func (e *Engine) Apply(ctx context.Context, in *table.Table) (*table.Table, error) {
	log := logger.FromContext(ctx, e.logger)
	results := make([]table.Column, len(e.chains))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(e.workers)
	for i, chain := range e.chains {
		if gctx.Err() != nil {
			break
		}
		i, chain := i, chain
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			src, ok := in.Column(chain.Source)
			if !ok {
				log.Debug("source column missing, target filled with nulls",
					zap.String("target", chain.Target),
					zap.String("source", chain.Source))
				src = table.NullColumn(in.Rows())
			}
			out := chain.Apply(src, e.observe)
			if len(chain.steps) == 0 {
				out = out.Clone()
			}
			results[i] = out
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := table.New(in.Rows())
	for i, chain := range e.chains {
		if err := out.AddColumn(chain.Target, results[i]); err != nil {
			return nil, errors.Wrap(err, errors.ErrorTypeInternal, "assemble output table").
				WithDetail("target", chain.Target)
		}
	}

	log.Debug("mapping applied",
		zap.Int("rows", out.Rows()),
		zap.Int("columns", out.Width()))
	return out, nil
}
