// Package metrics counts data-quality events of a pipeline run on a private
// Prometheus registry. A run is a batch job, so the registry is written to a
// node-exporter textfile instead of being scraped.
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Event kinds.
const (
	SkippedRows       = "skipped_rows"
	UnknownReceipts   = "unknown_receipts"
	UnknownMovements  = "unknown_movements"
	DroppedLedger     = "dropped_ledger"
	SuffixOverrides   = "suffix_overrides"
	IncoherentLines   = "incoherent_lines"
	BackfilledLabels  = "backfilled_labels"
	ClampedDays       = "clamped_days"
	UnmatchedReceipts = "unmatched_receipts"
)

// Recorder holds the collectors of one run. A nil Recorder discards
// everything.
type Recorder struct {
	reg           *prometheus.Registry
	events        *prometheus.CounterVec
	stageDuration *prometheus.GaugeVec
	stageRows     *prometheus.GaugeVec
	lastSuccess   prometheus.Gauge
}

func NewRecorder() *Recorder {
	reg := prometheus.NewRegistry()
	r := &Recorder{
		reg: reg,
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "recon_data_quality_events_total",
			Help: "Rows recovered from a data-quality problem, by kind.",
		}, []string{"kind"}),
		stageDuration: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "recon_stage_duration_seconds",
			Help: "Wall time of the last run of each pipeline stage.",
		}, []string{"stage"}),
		stageRows: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Name: "recon_stage_rows",
			Help: "Rows produced by the last run of each pipeline stage.",
		}, []string{"stage"}),
		lastSuccess: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "recon_last_success_timestamp_seconds",
			Help: "Unix time of the last completed run.",
		}),
	}
	reg.MustRegister(r.events, r.stageDuration, r.stageRows, r.lastSuccess)
	return r
}

// Add counts n events of kind. Non-positive n is ignored.
func (r *Recorder) Add(kind string, n int) {
	if r == nil || n <= 0 {
		return
	}
	r.events.WithLabelValues(kind).Add(float64(n))
}

func (r *Recorder) Stage(stage string, rows int, elapsed time.Duration) {
	if r == nil {
		return
	}
	r.stageDuration.WithLabelValues(stage).Set(elapsed.Seconds())
	r.stageRows.WithLabelValues(stage).Set(float64(rows))
}

func (r *Recorder) Succeeded(at time.Time) {
	if r == nil {
		return
	}
	r.lastSuccess.Set(float64(at.Unix()))
}

// Registry exposes the private registry, mainly for tests.
func (r *Recorder) Registry() *prometheus.Registry {
	if r == nil {
		return nil
	}
	return r.reg
}

// WriteTextfile writes the registry in the text exposition format. An empty
// path is a no-op.
func (r *Recorder) WriteTextfile(path string) error {
	if r == nil || path == "" {
		return nil
	}
	if err := prometheus.WriteToTextfile(path, r.reg); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}
