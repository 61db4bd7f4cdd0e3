package ingest

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTableSink struct {
	existsCalls int
	loadCalls   int
	insertCalls int

	existsResult bool
	loadErr      error
	insertErr    error

	lastRef  TableRef
	lastRows []Row
	lastCfg  LoadConfig
}

func (f *fakeTableSink) Exists(_ context.Context, ref TableRef) (bool, error) {
	f.existsCalls++
	f.lastRef = ref
	return f.existsResult, nil
}

func (f *fakeTableSink) Load(_ context.Context, ref TableRef, rows []Row, cfg LoadConfig) error {
	f.loadCalls++
	f.lastRef = ref
	f.lastRows = rows
	f.lastCfg = cfg
	return f.loadErr
}

func (f *fakeTableSink) InsertRow(_ context.Context, ref TableRef, row Row) error {
	f.insertCalls++
	f.lastRef = ref
	return f.insertErr
}

type fakeCache struct {
	entries map[string]bool
	seen    int
	marked  int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: map[string]bool{}}
}

func (f *fakeCache) Seen(_ context.Context, key string) bool {
	f.seen++
	return f.entries[key]
}

func (f *fakeCache) Mark(_ context.Context, key string) {
	f.marked++
	f.entries[key] = true
}

func sampleRows() []Row {
	return []Row{
		{"date": "2024-03-01", "campaign": "spring", "clicks": int64(10), "impressions": int64(100), "cost": 1.5},
	}
}

func TestIngestEmptyBatchSkipsSink(t *testing.T) {
	sink := &fakeTableSink{existsResult: true}
	g := NewGateway(sink, nil, time.Second)

	result, err := g.Ingest(context.Background(), Request{TableID: "proj.ds.t", Rows: nil})

	require.NoError(t, err)
	assert.Equal(t, MissingData, result)
	assert.Zero(t, sink.existsCalls, "empty batch must not trigger an existence check")
	assert.Zero(t, sink.loadCalls, "empty batch must not trigger a load")
}

func TestIngestSubmitsExactlyOneLoad(t *testing.T) {
	sink := &fakeTableSink{existsResult: true}
	g := NewGateway(sink, nil, time.Second)

	result, err := g.Ingest(context.Background(), Request{
		TableID:     "proj.ds.t",
		Rows:        sampleRows(),
		Strategy:    WriteAppend,
		CheckExists: true,
	})

	require.NoError(t, err)
	assert.Equal(t, ExportCompleted, result)
	assert.Equal(t, 1, sink.loadCalls)
	assert.Len(t, sink.lastRows, 1)
}

func TestIngestMissingDestination(t *testing.T) {
	sink := &fakeTableSink{existsResult: false}
	g := NewGateway(sink, nil, time.Second)

	_, err := g.Ingest(context.Background(), Request{
		TableID:     "proj.ds.missing_table",
		Rows:        sampleRows(),
		CheckExists: true,
	})

	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, sink.loadCalls, "a missing destination must see zero write attempts")
}

func TestIngestPassesConfigThroughUnmodified(t *testing.T) {
	sink := &fakeTableSink{existsResult: true}
	g := NewGateway(sink, nil, time.Second)

	schema := []Field{
		{Name: "date", Type: TypeDate},
		{Name: "campaign", Type: TypeString},
		{Name: "clicks", Type: TypeInteger},
		{Name: "impressions", Type: TypeInteger},
		{Name: "cost", Type: TypeFloat},
	}
	clustering := []string{"campaign", "date"}

	_, err := g.Ingest(context.Background(), Request{
		TableID:          "proj.ds.t",
		Rows:             sampleRows(),
		Schema:           schema,
		Strategy:         WriteEmpty,
		PartitionField:   "date",
		ClusteringFields: clustering,
	})

	require.NoError(t, err)
	assert.Equal(t, schema, sink.lastCfg.Schema, "schema order and types must survive untouched")
	assert.Equal(t, clustering, sink.lastCfg.ClusteringFields, "clustering order must survive untouched")
	assert.Equal(t, WriteEmpty, sink.lastCfg.Strategy)
	assert.Equal(t, "date", sink.lastCfg.PartitionField)
}

func TestIngestSinkFailureIsGeneric(t *testing.T) {
	sinkErr := errors.New("pq: deadlock detected on relation ds.t")
	sink := &fakeTableSink{existsResult: true, loadErr: sinkErr}
	g := NewGateway(sink, nil, time.Second)

	_, err := g.Ingest(context.Background(), Request{TableID: "proj.ds.t", Rows: sampleRows()})

	require.ErrorIs(t, err, ErrSinkFailure)
	assert.NotContains(t, err.Error(), "deadlock", "sink detail must not reach the caller")
	assert.Equal(t, 1, sink.loadCalls, "no retry after a failed load")
}

func TestIngestWriteEmptyPopulatedDestinationFails(t *testing.T) {
	// The sink reports the strategy violation; the gateway must surface a
	// failure, never silently append.
	sink := &fakeTableSink{existsResult: true, loadErr: ErrNotEmpty}
	g := NewGateway(sink, nil, time.Second)

	result, err := g.Ingest(context.Background(), Request{
		TableID:  "proj.ds.t",
		Rows:     sampleRows(),
		Strategy: WriteEmpty,
	})

	require.ErrorIs(t, err, ErrSinkFailure)
	assert.NotEqual(t, ExportCompleted, result)
	assert.Equal(t, 1, sink.loadCalls, "exactly one attempt, no retry")
}

func TestIngestRejectsBadTableID(t *testing.T) {
	sink := &fakeTableSink{existsResult: true}
	g := NewGateway(sink, nil, time.Second)

	_, err := g.Ingest(context.Background(), Request{TableID: "not-a-table", Rows: sampleRows()})

	require.ErrorIs(t, err, ErrBadTableID)
	assert.Zero(t, sink.loadCalls)
}

func TestIngestRejectsUnknownDisposition(t *testing.T) {
	sink := &fakeTableSink{existsResult: true}
	g := NewGateway(sink, nil, time.Second)

	_, err := g.Ingest(context.Background(), Request{
		TableID:  "proj.ds.t",
		Rows:     sampleRows(),
		Strategy: WriteStrategy("WRITE_SIDEWAYS"),
	})

	require.ErrorIs(t, err, ErrInvalidInput)
	assert.Zero(t, sink.loadCalls)
}

func TestIngestDefaultsToAppend(t *testing.T) {
	sink := &fakeTableSink{existsResult: true}
	g := NewGateway(sink, nil, time.Second)

	_, err := g.Ingest(context.Background(), Request{TableID: "proj.ds.t", Rows: sampleRows()})

	require.NoError(t, err)
	assert.Equal(t, WriteAppend, sink.lastCfg.Strategy)
}

func TestExistenceCacheSkipsRepeatChecks(t *testing.T) {
	sink := &fakeTableSink{existsResult: true}
	cache := newFakeCache()
	g := NewGateway(sink, cache, time.Second)

	req := Request{TableID: "proj.ds.t", Rows: sampleRows(), CheckExists: true}

	_, err := g.Ingest(context.Background(), req)
	require.NoError(t, err)
	require.Equal(t, 1, sink.existsCalls)
	require.Equal(t, 1, cache.marked)

	_, err = g.Ingest(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 1, sink.existsCalls, "cached destination must skip the sink check")
	assert.Equal(t, 2, sink.loadCalls)
}

func TestInsertRowMissingDestination(t *testing.T) {
	sink := &fakeTableSink{existsResult: false}
	g := NewGateway(sink, nil, time.Second)

	err := g.InsertRow(context.Background(), "proj.ds.missing_table", Row{"a": 1})

	require.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, sink.insertCalls)
}

func TestInsertRowSinkFailureIsGeneric(t *testing.T) {
	sink := &fakeTableSink{existsResult: true, insertErr: errors.New("pq: column \"a\" does not exist")}
	g := NewGateway(sink, nil, time.Second)

	err := g.InsertRow(context.Background(), "proj.ds.t", Row{"a": 1})

	require.ErrorIs(t, err, ErrSinkFailure)
	assert.NotContains(t, err.Error(), "column")
}
