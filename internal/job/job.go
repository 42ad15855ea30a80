// Package job runs one group-by job end to end: load the CSV input,
// aggregate it, optionally sort the result and write it out. Every phase is
// logged, timed into the metrics collector and traced.
package job

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ajitpratap0/bears/pkg/census"
	"github.com/ajitpratap0/bears/pkg/columnar"
	"github.com/ajitpratap0/bears/pkg/config"
	"github.com/ajitpratap0/bears/pkg/csvio"
	"github.com/ajitpratap0/bears/pkg/errors"
	"github.com/ajitpratap0/bears/pkg/groupby"
	"github.com/ajitpratap0/bears/pkg/logger"
	"github.com/ajitpratap0/bears/pkg/metrics"
	"github.com/ajitpratap0/bears/pkg/observability"
	"github.com/ajitpratap0/bears/pkg/output"
)

// Phase names, used for log fields, metric labels and span names
const (
	PhaseLoad      = "load"
	PhaseAggregate = "aggregate"
	PhaseSort      = "sort"
	PhaseWrite     = "write"
)

// Job status labels for metrics.Collector.RecordJob
const (
	StatusSucceeded = "succeeded"
	StatusFailed    = "failed"
)

// Deps are the collaborators of a run. Zero values are replaced with
// defaults: the global logger, no metrics and stdout.
type Deps struct {
	Logger  *zap.Logger
	Metrics *metrics.Collector
	Stdout  io.Writer
}

// Stats describes a finished run
type Stats struct {
	JobID       string
	RowsLoaded  int
	Groups      int
	DroppedRows int
	RowsWritten int
	Phases      map[string]time.Duration
	Duration    time.Duration
}

// Result is the output of Run
type Result struct {
	Table *columnar.Table
	Stats Stats
}

type runner struct {
	log     *zap.Logger
	metrics *metrics.Collector
	stdout  io.Writer
	stats   Stats
}

func newRunner(deps Deps) *runner {
	r := &runner{
		log:     deps.Logger,
		metrics: deps.Metrics,
		stdout:  deps.Stdout,
		stats:   Stats{JobID: uuid.NewString(), Phases: make(map[string]time.Duration)},
	}
	if r.log == nil {
		r.log = logger.Get()
	}
	if r.stdout == nil {
		r.stdout = os.Stdout
	}
	return r
}

// Run executes the job described by cfg. The context is checked between
// phases; a cancelled job writes nothing.
func Run(ctx context.Context, cfg *config.JobConfig, deps Deps) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	r := newRunner(deps)
	ctx = logger.ContextWithJob(ctx, r.stats.JobID, cfg.Input.Path)
	start := time.Now()

	table, err := r.run(ctx, cfg)
	r.stats.Duration = time.Since(start)
	r.finish(ctx, cfg.Name, err)
	if err != nil {
		return nil, err
	}
	return &Result{Table: table, Stats: r.stats}, nil
}

func (r *runner) run(ctx context.Context, cfg *config.JobConfig) (*columnar.Table, error) {
	var table *columnar.Table
	err := r.phase(ctx, PhaseLoad, func(ctx context.Context, span *observability.Span) error {
		t, err := csvio.LoadFile(cfg.Input.Path, cfg.CSVOptions(), cfg.LoadOptions()...)
		if err != nil {
			return err
		}
		table = t
		r.stats.RowsLoaded = t.RowCount()
		if r.metrics != nil {
			r.metrics.RecordLoad(t)
		}
		span.SetAttribute("rows", t.RowCount())
		span.SetAttribute("columns", t.ColumnNames())
		r.logger(ctx).Debug("table loaded",
			zap.Int("rows", t.RowCount()),
			zap.Strings("columns", t.ColumnNames()))
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.phase(ctx, PhaseAggregate, func(ctx context.Context, span *observability.Span) error {
		res, err := groupby.Run(table, cfg.ToGroupBy())
		if err != nil {
			return err
		}
		r.recordGroups(span, res)
		table = res.Table
		return nil
	})
	if err != nil {
		return nil, err
	}

	if cfg.GroupBy.SortBy != "" {
		err = r.phase(ctx, PhaseSort, func(ctx context.Context, span *observability.Span) error {
			span.SetAttribute("column", cfg.GroupBy.SortBy)
			sorted, err := table.SortBy(cfg.GroupBy.SortBy, cfg.GroupBy.Descending)
			if err != nil {
				return err
			}
			table = sorted
			return nil
		})
		if err != nil {
			return nil, err
		}
	}

	err = r.phase(ctx, PhaseWrite, func(ctx context.Context, span *observability.Span) error {
		span.SetAttribute("format", cfg.Output.Format)
		if cfg.Output.ToStdout() {
			f, err := output.New(cfg.OutputFormat(), r.stdout, cfg.OutputOptions()...)
			if err != nil {
				return err
			}
			if err := f.Format(table); err != nil {
				return err
			}
		} else {
			span.SetAttribute("path", cfg.Output.Path)
			if err := output.WriteFile(cfg.Output.Path, table, cfg.OutputFormat(),
				cfg.OutputCompression(), cfg.OutputOptions()...); err != nil {
				return err
			}
		}
		r.stats.RowsWritten = table.RowCount()
		return nil
	})
	if err != nil {
		return nil, err
	}
	return table, nil
}

// RunCensus builds the CBSA population report from the tract file in and
// writes it to out, or to stdout when out is "" or "-"
func RunCensus(ctx context.Context, in, out string, deps Deps) (*Result, error) {
	r := newRunner(deps)
	ctx = logger.ContextWithJob(ctx, r.stats.JobID, in)
	start := time.Now()

	report, err := r.runCensus(ctx, in, out)
	r.stats.Duration = time.Since(start)
	r.finish(ctx, "census", err)
	if err != nil {
		return nil, err
	}
	return &Result{Table: report, Stats: r.stats}, nil
}

func (r *runner) runCensus(ctx context.Context, in, out string) (*columnar.Table, error) {
	var tracts *columnar.Table
	err := r.phase(ctx, PhaseLoad, func(ctx context.Context, span *observability.Span) error {
		t, err := census.LoadFile(in)
		if err != nil {
			return err
		}
		tracts = t
		r.stats.RowsLoaded = t.RowCount()
		if r.metrics != nil {
			r.metrics.RecordLoad(t)
		}
		span.SetAttribute("rows", t.RowCount())
		return nil
	})
	if err != nil {
		return nil, err
	}

	var report *columnar.Table
	err = r.phase(ctx, PhaseAggregate, func(ctx context.Context, span *observability.Span) error {
		res, err := census.Build(tracts)
		if err != nil {
			return err
		}
		report = res.Report
		r.stats.Groups = res.Report.RowCount()
		r.stats.DroppedRows = res.DroppedTracts
		if r.metrics != nil {
			r.metrics.RecordGroups(res.Report.RowCount(), res.DroppedTracts)
		}
		span.SetAttribute("groups", res.Report.RowCount())
		span.SetAttribute("dropped_rows", res.DroppedTracts)
		if res.DroppedTracts > 0 {
			r.logger(ctx).Info("tracts without a CBSA code left out",
				zap.Int("tracts", res.DroppedTracts))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	err = r.phase(ctx, PhaseWrite, func(ctx context.Context, span *observability.Span) error {
		if out == "" || out == "-" {
			return census.Write(r.stdout, report)
		}
		span.SetAttribute("path", out)
		return census.WriteFile(out, report)
	})
	if err != nil {
		return nil, err
	}
	r.stats.RowsWritten = report.RowCount()
	return report, nil
}

// phase runs fn as one named phase: cancellation check, span, timing and a
// debug log line
func (r *runner) phase(ctx context.Context, name string, fn func(ctx context.Context, span *observability.Span) error) error {
	if err := ctx.Err(); err != nil {
		return errors.Wrap(err, errors.ErrorTypeInternal, "job cancelled").
			WithDetail("phase", name)
	}

	ctx = logger.ContextWithPhase(ctx, name)
	timer := metrics.NewTimer(name)
	err := observability.Trace(ctx, name, fn)
	elapsed := timer.Stop()

	r.stats.Phases[name] = elapsed
	if r.metrics != nil {
		r.metrics.ObservePhase(name, elapsed)
	}
	if err != nil {
		r.logger(ctx).Error("phase failed", zap.Duration("duration", elapsed), zap.Error(err))
		return err
	}
	r.logger(ctx).Debug("phase completed", zap.Duration("duration", elapsed))
	return nil
}

func (r *runner) recordGroups(span *observability.Span, res *groupby.Result) {
	r.stats.Groups = len(res.Groups)
	r.stats.DroppedRows = res.DroppedRows
	if r.metrics != nil {
		r.metrics.RecordGroups(len(res.Groups), res.DroppedRows)
	}
	span.SetAttribute("groups", len(res.Groups))
	span.SetAttribute("dropped_rows", res.DroppedRows)
}

func (r *runner) finish(ctx context.Context, name string, err error) {
	status := StatusSucceeded
	if err != nil {
		status = StatusFailed
	}
	if r.metrics != nil {
		r.metrics.RecordJob(status)
	}
	if err != nil {
		r.logger(ctx).Error("job failed", zap.String("job", name), zap.Error(err))
		return
	}
	r.logger(ctx).Info("job completed",
		zap.String("job", name),
		zap.Int("rows_loaded", r.stats.RowsLoaded),
		zap.Int("groups", r.stats.Groups),
		zap.Int("dropped_rows", r.stats.DroppedRows),
		zap.Duration("duration", r.stats.Duration))
}

func (r *runner) logger(ctx context.Context) *zap.Logger {
	return logger.FromContext(ctx, r.log)
}
