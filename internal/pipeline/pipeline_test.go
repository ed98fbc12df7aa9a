package pipeline

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andresuchdata/warehouse-recon/internal/metrics"
	"github.com/andresuchdata/warehouse-recon/internal/reference"
	"github.com/andresuchdata/warehouse-recon/internal/source"
	"github.com/andresuchdata/warehouse-recon/internal/warehouse"
)

func TestParseDate(t *testing.T) {
	want := time.Date(2024, 3, 5, 0, 0, 0, 0, time.UTC)
	for _, s := range []string{"05-03-2024", "05-03-24", "05/03/2024", "05/03/24", " 05-03-2024 "} {
		got, err := ParseDate(s)
		require.NoError(t, err, s)
		assert.Equal(t, want, got, s)
	}

	zero, err := ParseDate("")
	require.NoError(t, err)
	assert.True(t, zero.IsZero())

	_, err = ParseDate("2024-03-05")
	assert.ErrorIs(t, err, ErrUnparsableDate)
}

func TestNewParams(t *testing.T) {
	p, err := NewParams("01-01-2024", "31-01-2024", []string{"001"}, []string{"boda", "BODC"}, 5)
	require.NoError(t, err)
	assert.Equal(t, []warehouse.Warehouse{warehouse.BODA, warehouse.BODC}, p.Warehouses)
	assert.Equal(t, map[string]float64{"001": 5}, p.InitialInventory)

	_, err = NewParams("01-02-2024", "31-01-2024", nil, nil, 0)
	assert.ErrorIs(t, err, ErrInvalidDateRange)

	_, err = NewParams("", "", nil, []string{"NOPE"}, 0)
	assert.Error(t, err)
}

func TestMatchClientIgnoresPadding(t *testing.T) {
	assert.True(t, matchClient(nil, "anything"))
	assert.True(t, matchClient([]string{"12"}, "00012"))
	assert.True(t, matchClient([]string{"0012_c"}, "12_c"))
	assert.False(t, matchClient([]string{"12"}, "13"))
}

func tbl(role source.Role, header []string, rows ...[]string) *source.Table {
	t := source.NewTable(string(role), header)
	t.Rows = rows
	return t
}

func fixtureSets() []*source.WarehouseSet {
	primary := &source.WarehouseSet{
		Source: source.WarehouseSource{Name: "main"},
		Tables: map[source.Role]*source.Table{
			source.RoleStock: tbl(source.RoleStock,
				[]string{"idingreso", "itemno", "idstatus", "idubica", "idubica1", "idcontacto", "idmodelo", "fecha", "inicial", "pesokgs"},
				[]string{"A0000001", "1", "01", "TA-LOC-01", "TA-LOC-01", "001", "M1", "2024-01-05", "2", "1"},
				[]string{"A0000001", "2", "01", "TA-LOC-01", "TA-LOC-01", "001", "M1", "2024-01-05", "2", "1"},
				[]string{"A0000002", "1", "01", "B01", "B01", "002", "M2", "2024-01-08", "4", "3"},
			),
			source.RoleReceipts: tbl(source.RoleReceipts,
				[]string{"idingreso", "fecha", "idcontacto", "descrip"},
				[]string{"A0000001", "2024-01-05", "001", "first"},
				[]string{"A0000002", "2024-01-08", "002", "second"},
			),
			source.RoleClients: tbl(source.RoleClients,
				[]string{"idcontacto", "descrip"},
				[]string{"001", "ACME"}, []string{"002", "GLOBEX"},
			),
		},
	}
	return []*source.WarehouseSet{primary}
}

type fakeTracker struct {
	mu      sync.Mutex
	created []PipelineRun
	updated []PipelineRun
}

func (f *fakeTracker) CreatePipelineRun(_ context.Context, run *PipelineRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created = append(f.created, *run)
	return nil
}

func (f *fakeTracker) UpdatePipelineRun(_ context.Context, run *PipelineRun) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.updated = append(f.updated, *run)
	return nil
}

func fixedClock() time.Time { return time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC) }

func TestProcessRunsStagesInOrder(t *testing.T) {
	var stages []Stage
	o := NewOrchestrator(nil, &reference.Tables{},
		WithClock(fixedClock),
		WithMetrics(metrics.NewRecorder()),
		OnStage(func(ev StageEvent) { stages = append(stages, ev.Stage) }),
	)

	res, err := o.Process(context.Background(), fixtureSets(), Params{}, uuid.Nil)
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.Equal(t, []Stage{
		StageUnify, StageProject, StageAttribute, StageReceptions, StageBackfill,
		StageDispatches, StageInventory, StageBilling, StageSeries, StageKPI,
	}, stages)
	assert.NotEmpty(t, res.ReceptionFact)
	assert.NotEmpty(t, res.Capacity.Fact)
	for _, d := range res.Days {
		assert.GreaterOrEqual(t, d.Level, 0.0)
	}
}

func TestProcessFiltersReportsByClient(t *testing.T) {
	o := NewOrchestrator(nil, &reference.Tables{}, WithClock(fixedClock))
	res, err := o.Process(context.Background(), fixtureSets(), Params{Clients: []string{"2"}}, uuid.Nil)
	require.NoError(t, err)

	for _, f := range res.ReceptionFact {
		assert.Equal(t, "2", strings.TrimLeft(f.IDContacto, "0"))
	}
	for _, r := range res.Capacity.Fact {
		assert.Equal(t, "2", strings.TrimLeft(r.IDContacto, "0"))
	}
	for _, d := range res.Days {
		assert.Equal(t, "2", strings.TrimLeft(d.Client, "0"))
	}
}

func TestRunTracksCompletion(t *testing.T) {
	tracker := &fakeTracker{}
	dir := t.TempDir()
	o := NewOrchestrator(
		[]source.WarehouseSource{{Name: "main", Dir: dir}},
		&reference.Tables{},
		WithTracker(tracker),
		WithClock(fixedClock),
		WithFingerprint("abc"),
	)

	res, err := o.Run(context.Background(), Params{})
	require.NoError(t, err)
	require.Len(t, tracker.created, 1)
	require.Len(t, tracker.updated, 1)

	assert.Equal(t, StatusProcessing, tracker.created[0].Status)
	assert.Equal(t, "abc", tracker.created[0].Fingerprint)
	done := tracker.updated[0]
	assert.Equal(t, StatusCompleted, done.Status)
	assert.Equal(t, res.RunID, done.ID)
	require.NotNil(t, done.CompletedAt)
}

func TestRunRecordsFailure(t *testing.T) {
	tracker := &fakeTracker{}
	o := NewOrchestrator(
		[]source.WarehouseSource{{Name: "main", Dir: t.TempDir()}},
		&reference.Tables{},
		WithTracker(tracker),
	)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := o.Run(ctx, Params{})
	require.ErrorIs(t, err, context.Canceled)
	require.Len(t, tracker.updated, 1)
	assert.Equal(t, StatusFailed, tracker.updated[0].Status)
	assert.NotEmpty(t, tracker.updated[0].ErrorMessage)
}
