package service

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/okian/minestats/internal/domain/aggregate"
	"github.com/okian/minestats/internal/domain/ingest"
	"github.com/okian/minestats/internal/domain/model"
	"github.com/okian/minestats/internal/domain/pareto"
	"github.com/okian/minestats/internal/domain/types"
	"github.com/okian/minestats/pkg/logger"
	"github.com/okian/minestats/pkg/metrics"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/errgroup"
)

const tracerName = "minestats.pipeline"

// Result holds every table produced by one pipeline run.
type Result struct {
	Runs        []model.RunRecord
	Report      model.IngestReport
	Summary     []model.SummaryRow
	Efficiency  []model.EfficiencyRow
	Loss        []model.LossRow
	Stability   []model.StabilityRow
	Sensitivity []model.SensitivityRow
	Difficulty  []model.DifficultyRow
	Pareto      []model.ParetoRow
}

// Tables renders the result as named tables in output order.
func (r *Result) Tables() []types.Table {
	return []types.Table{
		model.RunsTable(r.Runs),
		model.NewTable(model.TableSummary, model.SummaryColumns, r.Summary),
		model.NewTable(model.TableEfficiency, model.EfficiencyColumns, r.Efficiency),
		model.NewTable(model.TableLoss, model.LossColumns, r.Loss),
		model.NewTable(model.TableStability, model.StabilityColumns, r.Stability),
		model.NewTable(model.TableSensitivity, model.SensitivityColumns, r.Sensitivity),
		model.NewTable(model.TableDifficulty, model.DifficultyColumns, r.Difficulty),
		model.NewTable(model.TablePareto, model.ParetoColumns, r.Pareto),
	}
}

// PipelineOption configures a Pipeline.
type PipelineOption func(*Pipeline)

// WithParetoConfig sets the metrics and directions of the Pareto stage.
func WithParetoConfig(cfg pareto.Config) PipelineOption {
	return func(p *Pipeline) {
		p.pareto = cfg
	}
}

// WithParallel evaluates the aggregation views concurrently.
func WithParallel(parallel bool) PipelineOption {
	return func(p *Pipeline) {
		p.parallel = parallel
	}
}

// WithPipelineLogger sets the pipeline logger.
func WithPipelineLogger(l logger.Logger) PipelineOption {
	return func(p *Pipeline) {
		if l != nil {
			p.logger = l
		}
	}
}

// WithTracer sets the tracer used for stage spans.
func WithTracer(t trace.Tracer) PipelineOption {
	return func(p *Pipeline) {
		if t != nil {
			p.tracer = t
		}
	}
}

// Pipeline cleans a raw frame and derives every statistics table from it.
type Pipeline struct {
	pareto   pareto.Config
	parallel bool
	logger   logger.Logger
	tracer   trace.Tracer
}

// NewPipeline creates a pipeline with the default Pareto metrics.
func NewPipeline(opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		pareto: pareto.DefaultConfig(),
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.logger == nil {
		p.logger = logger.Get().Named("pipeline")
	}
	if p.tracer == nil {
		p.tracer = otel.Tracer(tracerName)
	}
	return p
}

// ParetoConfig returns the configured Pareto metrics.
func (p *Pipeline) ParetoConfig() pareto.Config { return p.pareto }

// Run executes ingest, the six aggregation views and the Pareto stage.
func (p *Pipeline) Run(ctx context.Context, frame types.Frame) (res *Result, err error) {
	ctx, span := p.tracer.Start(ctx, "pipeline.Run",
		trace.WithAttributes(
			attribute.Int("pipeline.input_rows", frame.Len()),
			attribute.Bool("pipeline.parallel", p.parallel),
		),
	)
	defer span.End()

	start := time.Now()
	defer func() {
		status := "ok"
		if err != nil {
			status = "error"
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		metrics.RecordPipelineRun(status)
		metrics.RecordPipelineDuration(sinceMs(start))
	}()

	if err := p.pareto.Validate(); err != nil {
		metrics.RecordParetoConfigError()
		return nil, err
	}

	res = &Result{}
	if err := p.stage(ctx, "ingest", func(context.Context) error {
		runs, report, err := ingest.Clean(frame)
		if err != nil {
			return err
		}
		res.Runs, res.Report = runs, report
		return nil
	}); err != nil {
		if errors.Is(err, ingest.ErrSchema) {
			metrics.RecordSchemaError()
		}
		return nil, err
	}
	p.logIngest(ctx, res.Report)

	views := []struct {
		name string
		run  func()
	}{
		{model.TableSummary, func() { res.Summary = aggregate.Summary(res.Runs) }},
		{model.TableEfficiency, func() { res.Efficiency = aggregate.EfficiencyOnWins(res.Runs) }},
		{model.TableLoss, func() { res.Loss = aggregate.LossQuality(res.Runs) }},
		{model.TableStability, func() { res.Stability = aggregate.SeedStability(res.Runs) }},
		{model.TableSensitivity, func() { res.Sensitivity = aggregate.ObjectiveSensitivity(res.Runs) }},
		{model.TableDifficulty, func() { res.Difficulty = aggregate.BoardDifficulty(res.Runs) }},
	}
	if p.parallel {
		g, gctx := errgroup.WithContext(ctx)
		for _, v := range views {
			g.Go(func() error {
				return p.stage(gctx, v.name, func(context.Context) error {
					v.run()
					return nil
				})
			})
		}
		if err := g.Wait(); err != nil {
			return nil, err
		}
	} else {
		for _, v := range views {
			if err := p.stage(ctx, v.name, func(context.Context) error {
				v.run()
				return nil
			}); err != nil {
				return nil, err
			}
		}
	}

	if err := p.stage(ctx, "pareto", func(context.Context) error {
		front, err := pareto.Fronts(res.Summary, p.pareto)
		if err != nil {
			return err
		}
		res.Pareto = front
		return nil
	}); err != nil {
		return nil, fmt.Errorf("pareto stage: %w", err)
	}
	p.recordFronts(res.Pareto)

	for _, t := range res.Tables() {
		metrics.UpdateTableRows(t.Name, t.Len())
	}
	p.logger.Info(ctx, "pipeline finished",
		logger.Int("runs", len(res.Runs)),
		logger.Int("combos", len(res.Summary)),
		logger.Int("pareto", len(res.Pareto)),
		logger.Float64("duration_ms", sinceMs(start)),
	)
	return res, nil
}

// stage runs fn inside a span and records its duration.
func (p *Pipeline) stage(ctx context.Context, name string, fn func(context.Context) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	ctx, span := p.tracer.Start(ctx, "pipeline."+name)
	defer span.End()

	start := time.Now()
	err := fn(ctx)
	metrics.RecordStageDuration(name, sinceMs(start))
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		p.logger.Error(ctx, "pipeline stage failed", logger.String("stage", name), logger.Error(err))
	}
	return err
}

func (p *Pipeline) logIngest(ctx context.Context, report model.IngestReport) {
	metrics.RecordRowsIngested(report.Retained)
	p.logger.Info(ctx, "ingested runs",
		logger.Int("total", report.Total),
		logger.Int("retained", report.Retained),
		logger.Int("dropped", report.Dropped),
	)
	cols := make([]string, 0, len(report.DroppedBy))
	for col := range report.DroppedBy {
		cols = append(cols, col)
	}
	slices.Sort(cols)
	for _, col := range cols {
		metrics.RecordRowsDropped(col, report.DroppedBy[col])
		p.logger.Debug(ctx, "dropped rows", logger.String("column", col), logger.Int("rows", report.DroppedBy[col]))
	}
}

func (p *Pipeline) recordFronts(front []model.ParetoRow) {
	sizes := make(map[string]int)
	for _, r := range front {
		sizes[r.Dims]++
	}
	for dims, n := range sizes {
		metrics.UpdateParetoFrontSize(dims, n)
	}
}

func sinceMs(start time.Time) float64 {
	return float64(time.Since(start).Microseconds()) / 1000
}
