package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/andresuchdata/warehouse-recon/internal/billing"
	"github.com/andresuchdata/warehouse-recon/internal/inventory"
	"github.com/andresuchdata/warehouse-recon/internal/kpi"
	"github.com/andresuchdata/warehouse-recon/internal/metrics"
	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/reference"
	"github.com/andresuchdata/warehouse-recon/internal/screening"
	"github.com/andresuchdata/warehouse-recon/internal/source"
	"github.com/andresuchdata/warehouse-recon/internal/summary"
	"github.com/andresuchdata/warehouse-recon/internal/timeseries"
	"github.com/andresuchdata/warehouse-recon/internal/unify"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

// RunTracker persists the lifecycle of a run.
type RunTracker interface {
	CreatePipelineRun(ctx context.Context, run *PipelineRun) error
	UpdatePipelineRun(ctx context.Context, run *PipelineRun) error
}

// Orchestrator runs the reconciliation stages over a set of warehouse
// exports.
type Orchestrator struct {
	sources     []source.WarehouseSource
	ref         *reference.Tables
	tracker     RunTracker
	metrics     *metrics.Recorder
	workers     int
	fingerprint string
	now         func() time.Time
	onStage     []func(StageEvent)
}

type Option func(*Orchestrator)

func WithTracker(t RunTracker) Option { return func(o *Orchestrator) { o.tracker = t } }

func WithMetrics(m *metrics.Recorder) Option { return func(o *Orchestrator) { o.metrics = m } }

// WithWorkers bounds the clients folded concurrently in the time series.
func WithWorkers(n int) Option { return func(o *Orchestrator) { o.workers = n } }

func WithClock(now func() time.Time) Option { return func(o *Orchestrator) { o.now = now } }

// WithFingerprint records the input fingerprint on tracked runs.
func WithFingerprint(fp string) Option { return func(o *Orchestrator) { o.fingerprint = fp } }

// OnStage registers a callback invoked after every stage.
func OnStage(fn func(StageEvent)) Option {
	return func(o *Orchestrator) { o.onStage = append(o.onStage, fn) }
}

// NewOrchestrator creates a new Orchestrator. The first source is the
// primary warehouse.
func NewOrchestrator(sources []source.WarehouseSource, ref *reference.Tables, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		sources: sources,
		ref:     ref,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Run loads every source and processes it. Data-quality problems never fail
// a run; only I/O errors and cancellation do.
func (o *Orchestrator) Run(ctx context.Context, p Params) (*Result, error) {
	run := &PipelineRun{
		ID:           uuid.New(),
		PipelineName: Name,
		StartDate:    optionalTime(p.Start),
		EndDate:      optionalTime(p.End),
		Status:       StatusProcessing,
		Sources:      len(o.sources),
		Fingerprint:  o.fingerprint,
		StartedAt:    o.now(),
	}
	if o.tracker != nil {
		if err := o.tracker.CreatePipelineRun(ctx, run); err != nil {
			return nil, fmt.Errorf("failed to create pipeline run: %w", err)
		}
	}

	res, err := o.load(ctx, p, run)
	o.finish(ctx, run, res, err)
	if err != nil {
		return nil, err
	}
	return res, nil
}

func (o *Orchestrator) load(ctx context.Context, p Params, run *PipelineRun) (*Result, error) {
	started := time.Now()
	sets, err := source.LoadAll(ctx, o.sources)
	if err != nil {
		return nil, fmt.Errorf("failed to load sources: %w", err)
	}
	rows, skipped := 0, 0
	for _, set := range sets {
		for _, t := range set.Tables {
			rows += t.Len()
			skipped += t.Skipped
		}
	}
	o.metrics.Add(metrics.SkippedRows, skipped)
	o.stage(StageLoad, rows, started)
	run.TotalRows = rows

	return o.Process(ctx, sets, p, run.ID)
}

func (o *Orchestrator) finish(ctx context.Context, run *PipelineRun, res *Result, err error) {
	now := o.now()
	run.CompletedAt = &now
	run.Status = StatusCompleted
	if err != nil {
		run.Status = StatusFailed
		run.ErrorMessage = err.Error()
	} else {
		run.Clamps = res.clamps
		o.metrics.Succeeded(now)
	}
	if o.tracker == nil {
		return
	}
	// The run outcome is recorded even when ctx was cancelled.
	if uerr := o.tracker.UpdatePipelineRun(context.WithoutCancel(ctx), run); uerr != nil {
		log.Error().Err(uerr).Str("run_id", run.ID.String()).Msg("pipeline: failed to update run")
	}
}

// Process runs every stage after loading. The full history is always
// reconstructed; the window and filters of p apply to the reports only.
func (o *Orchestrator) Process(ctx context.Context, sets []*source.WarehouseSet, p Params, runID uuid.UUID) (*Result, error) {
	now := o.now()

	started := time.Now()
	u := unify.Unify(sets)
	if dups, err := unify.DuplicateKeys(u.Table(source.RoleStock), "idingreso", "itemno"); err == nil && len(dups) > 0 {
		log.Warn().Int("keys", len(dups)).Msg("pipeline: stock keys collide in the primary warehouse")
	}
	o.stage(StageUnify, u.Table(source.RoleStock).Len(), started)

	started = time.Now()
	t := screening.Project(u)
	o.stage(StageProject, len(t.Stock), started)

	started = time.Now()
	t, stats := screening.Attribute(t)
	o.metrics.Add(metrics.UnknownReceipts, stats.UnknownReceipts)
	o.metrics.Add(metrics.UnknownMovements, stats.UnknownMovements)
	o.metrics.Add(metrics.DroppedLedger, stats.DroppedLedger)
	o.metrics.Add(metrics.SuffixOverrides, stats.SuffixOverrides)
	o.stage(StageAttribute, len(t.Stock)+len(t.Receipts)+len(t.Movements), started)

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	started = time.Now()
	rec := summary.BuildReceptions(summary.ReceptionInput{
		Receipts:        t.Receipts,
		UnfilteredStock: t.UnfilteredStock,
		ProductLines:    t.ProductLines,
		Clients:         t.Clients,
	})
	o.metrics.Add(metrics.IncoherentLines, rec.Incoherent)
	o.metrics.Add(metrics.SuffixOverrides, rec.SuffixOverrides)
	o.stage(StageReceptions, len(rec.Fact), started)

	started = time.Now()
	filled := backfill(t)
	o.metrics.Add(metrics.BackfilledLabels, filled)
	o.stage(StageBackfill, filled, started)

	started = time.Now()
	disp := summary.BuildDispatches(summary.DispatchInput{
		Movements:       t.Movements,
		DispatchedStock: t.DispatchedStock,
		Clients:         t.Clients,
	})
	o.metrics.Add(metrics.BackfilledLabels, disp.Backfilled)
	inByW, outByW := summary.ByWarehouse(rec.Summary, disp.Summary, p.Start, p.End)
	o.stage(StageDispatches, len(disp.Fact), started)

	started = time.Now()
	stock := inventory.ComplementBODE(t.Stock, o.ref)
	capacity := inventory.MeasureCapacity(stock, t.Clients, o.ref)
	proportions := inventory.ProportionsByProduct(stock, o.ref)
	oldest := inventory.OldestProducts(stock, o.ref, now)
	o.stage(StageInventory, len(capacity.Fact), started)

	started = time.Now()
	bill := billing.Reconstruct(billing.Input{
		Capacity:   capacity.Fact,
		Receptions: rec.Fact,
		Dispatches: disp.Fact,
		Receipts:   t.Receipts,
		Clients:    t.Clients,
		Reference:  o.ref,
		Start:      p.Start,
		End:        p.End,
		Now:        now,
	})
	o.stage(StageBilling, len(bill.InflowHistory)+len(bill.OutflowHistory), started)

	started = time.Now()
	series, err := timeseries.Build(ctx,
		timeseries.InflowFlows(bill.InflowHistory),
		timeseries.OutflowFlows(bill.OutflowHistory),
		timeseries.Options{InitialInventory: p.InitialInventory, Workers: o.workers},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to rebuild inventory levels: %w", err)
	}
	o.metrics.Add(metrics.ClampedDays, series.Clamps)
	days := filterSlice(series.Days, func(d timeseries.Day) bool { return matchClient(p.Clients, d.Client) })
	monthly := timeseries.Monthly(timeseries.Totals(days))
	window := timeseries.Window(days, p.Start, p.End)
	o.stage(StageSeries, len(window), started)

	started = time.Now()
	kpis := kpi.Compute(monthly, p.Start, p.End)
	o.stage(StageKPI, len(kpis), started)

	res := &Result{
		RunID:            runID,
		Params:           p,
		ReceptionSummary: rec.Summary,
		ReceptionFact:    rec.Fact,
		DispatchSummary:  disp.Summary,
		DispatchFact:     disp.Fact,
		InByWarehouse:    inByW,
		OutByWarehouse:   outByW,
		ReceiptPreviews:  t.ReceiptPreviews,
		Capacity:         capacity,
		Proportions:      proportions,
		Oldest:           oldest,
		Billing:          bill,
		Days:             window,
		Totals:           timeseries.Totals(window),
		Monthly:          monthly,
		Shares:           timeseries.ClientShare(window),
		KPI:              kpis,
		clamps:           series.Clamps,
	}
	applyFilters(res, p)
	return res, nil
}

// backfill fills unknown warehouses of stock, receipts and movements from
// clients served by a single warehouse.
func backfill(t *screening.Tables) int {
	var n, total int
	t.Stock, n = warehouse.BackfillUnknown(t.Stock,
		func(r records.StockRow) string { return r.IDContacto },
		func(r records.StockRow) warehouse.Label { return r.Bodega },
		func(r *records.StockRow, l warehouse.Label) { r.Bodega = l })
	total += n
	t.Receipts, n = warehouse.BackfillUnknown(t.Receipts,
		func(r records.Receipt) string { return r.IDContacto },
		func(r records.Receipt) warehouse.Label { return r.Bodega },
		func(r *records.Receipt, l warehouse.Label) { r.Bodega = l })
	total += n
	t.Movements, n = warehouse.BackfillUnknown(t.Movements,
		func(m records.Movement) string { return m.IDContacto },
		func(m records.Movement) warehouse.Label { return m.Bodega },
		func(m *records.Movement, l warehouse.Label) { m.Bodega = l })
	return total + n
}

func (o *Orchestrator) stage(s Stage, rows int, started time.Time) {
	ev := StageEvent{Stage: s, Rows: rows, Elapsed: time.Since(started)}
	log.Info().
		Str("stage", string(s)).
		Int("rows", rows).
		Dur("elapsed", ev.Elapsed).
		Msg("pipeline: stage completed")
	o.metrics.Stage(string(s), rows, ev.Elapsed)
	for _, fn := range o.onStage {
		fn(ev)
	}
}

func optionalTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
