package warehouse

import (
	"errors"
	"reflect"
	"testing"

	"github.com/lib/pq"

	"github.com/chrisbudnik/cloud-run-jumpstart/internal/ingest"
)

func TestColumnOrderFollowsSchema(t *testing.T) {
	schema := []ingest.Field{
		{Name: "date", Type: ingest.TypeDate},
		{Name: "campaign", Type: ingest.TypeString},
		{Name: "clicks", Type: ingest.TypeInteger},
	}

	got := columnOrder(schema, nil)
	want := []string{"date", "campaign", "clicks"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("columnOrder = %v, want schema order %v", got, want)
	}
}

func TestColumnOrderInferredIsDeterministic(t *testing.T) {
	rows := []ingest.Row{{"zeta": 1, "alpha": 2, "mid": 3}}

	got := columnOrder(nil, rows)
	want := []string{"alpha", "mid", "zeta"}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("columnOrder = %v, want sorted %v", got, want)
	}
}

func TestInsertStatement(t *testing.T) {
	rows := []ingest.Row{
		{"date": "2024-03-01", "clicks": int64(10)},
		{"date": "2024-03-02", "clicks": int64(20)},
	}

	stmt, args := insertStatement(`"ds"."t"`, []string{"date", "clicks"}, rows)

	wantStmt := `INSERT INTO "ds"."t" ("date", "clicks") VALUES ($1, $2), ($3, $4)`
	if stmt != wantStmt {
		t.Fatalf("stmt = %q, want %q", stmt, wantStmt)
	}

	wantArgs := []any{"2024-03-01", int64(10), "2024-03-02", int64(20)}
	if !reflect.DeepEqual(args, wantArgs) {
		t.Fatalf("args = %v, want %v", args, wantArgs)
	}
}

func TestInsertStatementMissingFieldsBecomeNull(t *testing.T) {
	rows := []ingest.Row{{"date": "2024-03-01"}}

	_, args := insertStatement(`"ds"."t"`, []string{"date", "clicks"}, rows)

	if args[1] != nil {
		t.Fatalf("missing field = %v, want nil", args[1])
	}
}

func TestQuoteIdent(t *testing.T) {
	if got := quoteIdent(`my"table`); got != `"my""table"` {
		t.Fatalf("quoteIdent = %q", got)
	}
}

func TestTranslateUndefinedTable(t *testing.T) {
	err := translate(&pq.Error{Code: pq.ErrorCode(pgUndefinedTable)})
	if !errors.Is(err, ingest.ErrNotFound) {
		t.Fatalf("translate = %v, want ErrNotFound", err)
	}

	other := errors.New("pq: permission denied")
	if err := translate(other); errors.Is(err, ingest.ErrNotFound) {
		t.Fatal("unrelated errors must not become NotFound")
	}
}
