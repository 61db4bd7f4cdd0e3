// Package warehouse implements the tabular sink on Postgres. Destination
// references map dataset onto a schema and table onto a relation; the
// project component must match the project this sink was configured with,
// otherwise the reference does not resolve here.
package warehouse

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/lib/pq"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/ingest"
)

// undefined_table, raised when a statement names a missing relation.
const pgUndefinedTable = "42P01"

type Warehouse struct {
	db      *sql.DB
	project string
}

func New(db *sql.DB, project string) *Warehouse {
	return &Warehouse{db: db, project: project}
}

// EnsureMetadata creates the load audit table. Called once at startup.
func (w *Warehouse) EnsureMetadata(ctx context.Context) error {
	_, err := w.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS public.load_jobs (
			id                bigserial PRIMARY KEY,
			destination       text NOT NULL,
			row_count         bigint NOT NULL,
			write_disposition text NOT NULL,
			schema_fields     text,
			partition_field   text,
			clustering_fields text,
			loaded_at         timestamptz NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("ensure load_jobs table: %w", err)
	}
	return nil
}

func (w *Warehouse) Exists(ctx context.Context, ref ingest.TableRef) (bool, error) {
	if ref.Project != w.project {
		return false, nil
	}

	var one int
	err := w.db.QueryRowContext(ctx, `
		SELECT 1
		FROM information_schema.tables
		WHERE table_schema = $1
		  AND table_name = $2
	`,
		ref.Dataset,
		ref.Table,
	).Scan(&one)

	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Load writes one batch inside a single transaction: the write strategy,
// the row inserts, and the audit record commit or roll back together.
// That transaction is the atomic unit the gateway relies on.
func (w *Warehouse) Load(ctx context.Context, ref ingest.TableRef, rows []ingest.Row, cfg ingest.LoadConfig) error {
	if ref.Project != w.project {
		return fmt.Errorf("%w: project %q not served by this sink", ingest.ErrNotFound, ref.Project)
	}

	columns := columnOrder(cfg.Schema, rows)
	if len(columns) == 0 {
		return errors.New("no columns to load")
	}

	tx, err := w.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin load: %w", err)
	}
	defer tx.Rollback()

	relation := quoteIdent(ref.Dataset) + "." + quoteIdent(ref.Table)

	switch cfg.Strategy {
	case ingest.WriteTruncate:
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+relation); err != nil {
			return fmt.Errorf("truncate %s: %w", ref, translate(err))
		}
	case ingest.WriteEmpty:
		var populated bool
		err := tx.QueryRowContext(ctx, "SELECT EXISTS (SELECT 1 FROM "+relation+")").Scan(&populated)
		if err != nil {
			return fmt.Errorf("emptiness check %s: %w", ref, translate(err))
		}
		if populated {
			return fmt.Errorf("%w: %s", ingest.ErrNotEmpty, ref)
		}
	case ingest.WriteAppend:
		// nothing to prepare
	}

	stmt, args := insertStatement(relation, columns, rows)
	if _, err := tx.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", ref, translate(err))
	}

	if err := w.recordLoad(ctx, tx, ref, len(rows), cfg); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit load: %w", err)
	}
	return nil
}

func (w *Warehouse) InsertRow(ctx context.Context, ref ingest.TableRef, row ingest.Row) error {
	if ref.Project != w.project {
		return fmt.Errorf("%w: project %q not served by this sink", ingest.ErrNotFound, ref.Project)
	}

	columns := columnOrder(nil, []ingest.Row{row})
	if len(columns) == 0 {
		return errors.New("no columns to insert")
	}

	relation := quoteIdent(ref.Dataset) + "." + quoteIdent(ref.Table)
	stmt, args := insertStatement(relation, columns, []ingest.Row{row})

	if _, err := w.db.ExecContext(ctx, stmt, args...); err != nil {
		return fmt.Errorf("insert into %s: %w", ref, translate(err))
	}
	return nil
}

// recordLoad keeps the load audit row in the same transaction as the
// data. Schema and layout hints are recorded verbatim as received.
func (w *Warehouse) recordLoad(ctx context.Context, tx *sql.Tx, ref ingest.TableRef, rowCount int, cfg ingest.LoadConfig) error {
	fields := make([]string, 0, len(cfg.Schema))
	for _, f := range cfg.Schema {
		fields = append(fields, f.Name+":"+string(f.Type))
	}

	_, err := tx.ExecContext(ctx, `
		INSERT INTO public.load_jobs
			(destination, row_count, write_disposition, schema_fields, partition_field, clustering_fields)
		VALUES ($1, $2, $3, $4, $5, $6)
	`,
		ref.String(),
		rowCount,
		string(cfg.Strategy),
		strings.Join(fields, ","),
		cfg.PartitionField,
		strings.Join(cfg.ClusteringFields, ","),
	)
	if err != nil {
		return fmt.Errorf("record load job: %w", err)
	}
	return nil
}

// translate maps driver errors the gateway cares about onto the ingest
// taxonomy; anything else passes through as a plain sink error.
func translate(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && string(pqErr.Code) == pgUndefinedTable {
		return fmt.Errorf("%w: %v", ingest.ErrNotFound, err)
	}
	return err
}

// columnOrder yields the insert column list: the schema's declared order
// when one is supplied, otherwise the first row's keys sorted for a
// deterministic statement.
func columnOrder(schema []ingest.Field, rows []ingest.Row) []string {
	if len(schema) > 0 {
		cols := make([]string, len(schema))
		for i, f := range schema {
			cols[i] = f.Name
		}
		return cols
	}
	if len(rows) == 0 {
		return nil
	}
	cols := make([]string, 0, len(rows[0]))
	for name := range rows[0] {
		cols = append(cols, name)
	}
	sort.Strings(cols)
	return cols
}

// insertStatement builds one multi-row INSERT with positional
// placeholders. Missing fields become NULL.
func insertStatement(relation string, columns []string, rows []ingest.Row) (string, []any) {
	var b strings.Builder
	b.WriteString("INSERT INTO ")
	b.WriteString(relation)
	b.WriteString(" (")
	for i, c := range columns {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(c))
	}
	b.WriteString(") VALUES ")

	args := make([]any, 0, len(rows)*len(columns))
	n := 1
	for i, row := range rows {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString("(")
		for j, c := range columns {
			if j > 0 {
				b.WriteString(", ")
			}
			fmt.Fprintf(&b, "$%d", n)
			n++
			args = append(args, row[c])
		}
		b.WriteString(")")
	}

	return b.String(), args
}

func quoteIdent(name string) string {
	return `"` + strings.ReplaceAll(name, `"`, `""`) + `"`
}
