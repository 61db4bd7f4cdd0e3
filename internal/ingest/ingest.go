package ingest

import (
	"context"
	"errors"
)

// Result of an ingestion attempt. The values mirror what callers of the
// service already consume, so they are part of the wire contract.
type Result string

const (
	ExportCompleted Result = "export-completed"
	MissingData     Result = "missing-data"
)

// WriteStrategy governs how loaded rows relate to data already in the
// destination table.
type WriteStrategy string

const (
	// WriteTruncate removes all existing rows, then loads.
	WriteTruncate WriteStrategy = "WRITE_TRUNCATE"
	// WriteAppend adds rows to whatever is there.
	WriteAppend WriteStrategy = "WRITE_APPEND"
	// WriteEmpty loads only if the destination currently holds zero rows.
	WriteEmpty WriteStrategy = "WRITE_EMPTY"
)

func (s WriteStrategy) Valid() bool {
	switch s {
	case WriteTruncate, WriteAppend, WriteEmpty:
		return true
	}
	return false
}

// FieldType is a destination column type.
type FieldType string

const (
	TypeDate    FieldType = "DATE"
	TypeString  FieldType = "STRING"
	TypeInteger FieldType = "INT64"
	TypeFloat   FieldType = "FLOAT64"
)

// Field is one named, typed column of a destination schema. Order within
// a schema matters and is preserved end to end.
type Field struct {
	Name string
	Type FieldType
}

// Row is one record keyed by field name.
type Row map[string]any

// Request describes one load into a warehouse table.
type Request struct {
	TableID string
	Rows    []Row

	// Schema fixes column names, types, and order. When empty the sink
	// infers types from the data, a lower-safety path.
	Schema []Field

	Strategy         WriteStrategy
	PartitionField   string   // day-granularity time partitioning, "" = none
	ClusteringFields []string // ordered; order influences physical layout

	// CheckExists makes a missing destination a NotFound failure instead
	// of whatever the sink reports at load time.
	CheckExists bool
}

var (
	// ErrNotFound: the destination table does not exist.
	ErrNotFound = errors.New("destination table not found")

	// ErrBadTableID: the destination identifier does not parse. A client
	// input error, distinct from anything the sink reports.
	ErrBadTableID = errors.New("invalid table identifier")

	// ErrInvalidInput: a malformed ingestion request (e.g. an unknown
	// write disposition). Also a client input error.
	ErrInvalidInput = errors.New("invalid ingestion request")

	// ErrSinkFailure: the sink reported a failure. The underlying cause is
	// logged internally and never carried to the caller.
	ErrSinkFailure = errors.New("sink operation failed")

	// ErrNotEmpty: a WRITE_EMPTY load found rows in the destination.
	// Surfaced to callers as a sink failure; kept distinct for sinks
	// and tests.
	ErrNotEmpty = errors.New("destination table is not empty")
)

// LoadConfig carries the write configuration to the sink, unmodified from
// the request that produced it.
type LoadConfig struct {
	Schema           []Field
	Strategy         WriteStrategy
	PartitionField   string
	ClusteringFields []string
}

// TableSink is the warehouse this gateway writes to. One Load call is one
// atomic commit; that atomicity is the sink's responsibility and the only
// consistency boundary the gateway relies on. Implementations must be safe
// for concurrent use.
type TableSink interface {
	Exists(ctx context.Context, ref TableRef) (bool, error)
	Load(ctx context.Context, ref TableRef, rows []Row, cfg LoadConfig) error
	InsertRow(ctx context.Context, ref TableRef, row Row) error
}
