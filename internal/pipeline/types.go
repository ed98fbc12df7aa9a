package pipeline

import (
	"time"

	"github.com/google/uuid"

	"github.com/andresuchdata/warehouse-recon/internal/billing"
	"github.com/andresuchdata/warehouse-recon/internal/inventory"
	"github.com/andresuchdata/warehouse-recon/internal/kpi"
	"github.com/andresuchdata/warehouse-recon/internal/records"
	"github.com/andresuchdata/warehouse-recon/internal/summary"
	"github.com/andresuchdata/warehouse-recon/internal/timeseries"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

// Name identifies this pipeline in run tracking.
const Name = "warehouse_recon"

// Params are the caller's choices for one run. The reconstruction always
// covers the full history; Start and End only window the reports.
type Params struct {
	Start, End time.Time
	// Clients and Warehouses restrict the reports. Empty means all.
	Clients    []string
	Warehouses []warehouse.Warehouse
	// InitialInventory is the CBM level of each client before its first day.
	InitialInventory map[string]float64
}

// Stage names, in execution order.
type Stage string

const (
	StageLoad       Stage = "load"
	StageUnify      Stage = "unify"
	StageProject    Stage = "project"
	StageAttribute  Stage = "attribute"
	StageReceptions Stage = "receptions"
	StageBackfill   Stage = "backfill"
	StageDispatches Stage = "dispatches"
	StageInventory  Stage = "inventory"
	StageBilling    Stage = "billing"
	StageSeries     Stage = "timeseries"
	StageKPI        Stage = "kpi"
)

// StageEvent is reported after every stage.
type StageEvent struct {
	Stage   Stage
	Rows    int
	Elapsed time.Duration
}

// Result holds every report table of a run.
type Result struct {
	RunID  uuid.UUID
	Params Params

	ReceptionSummary []summary.Monthly
	ReceptionFact    []summary.ReceptionFact
	DispatchSummary  []summary.Monthly
	DispatchFact     []summary.DispatchFact
	InByWarehouse    []summary.WarehouseTotal
	OutByWarehouse   []summary.WarehouseTotal
	ReceiptPreviews  []records.ReceiptPreview

	Capacity    inventory.Capacity
	Proportions []inventory.ProductShare
	Oldest      []inventory.AgedProduct

	Billing billing.Result

	Days    []timeseries.Day
	Totals  []timeseries.Total
	Monthly []timeseries.Month
	Shares  []timeseries.Share
	KPI     []kpi.Row

	clamps int
}

// PipelineStatus represents the current state of a pipeline run
type PipelineStatus string

const (
	StatusPending    PipelineStatus = "pending"
	StatusProcessing PipelineStatus = "processing"
	StatusCompleted  PipelineStatus = "completed"
	StatusFailed     PipelineStatus = "failed"
)

// PipelineRun tracks a single execution of the pipeline
type PipelineRun struct {
	ID           uuid.UUID      `db:"id"`
	PipelineName string         `db:"pipeline_name"`
	StartDate    *time.Time     `db:"start_date"`
	EndDate      *time.Time     `db:"end_date"`
	Status       PipelineStatus `db:"status"`
	Sources      int            `db:"sources"`
	TotalRows    int            `db:"total_rows"`
	Clamps       int            `db:"clamps"`
	Fingerprint  string         `db:"fingerprint"`
	StartedAt    time.Time      `db:"started_at"`
	CompletedAt  *time.Time     `db:"completed_at"`
	ErrorMessage string         `db:"error_message"`
}
