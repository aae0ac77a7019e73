package sqlite

import (
	"context"
	"strings"
	"testing"

	"surveydash/internal/storage"
)

func newMemRepo(tb testing.TB, table string) *Repository {
	tb.Helper()
	r, closeFn, err := NewRepository(context.Background(), Config{DSN: ":memory:", Table: table})
	if err != nil {
		tb.Fatalf("open sqlite :memory:: %v", err)
	}
	tb.Cleanup(closeFn)
	return r
}

func count(tb testing.TB, r *Repository, query string) int {
	tb.Helper()
	var n int
	if err := r.db.QueryRowContext(context.Background(), query).Scan(&n); err != nil {
		tb.Fatalf("query %q: %v", query, err)
	}
	return n
}

func TestNewRepository_EmptyDSN(t *testing.T) {
	if _, _, err := NewRepository(context.Background(), Config{DSN: "  "}); err == nil {
		t.Fatal("expected error for empty DSN")
	}
}

func TestCreateTableSQL(t *testing.T) {
	ddl, err := createTableSQL("main.responses", storage.Schema)
	if err != nil {
		t.Fatalf("createTableSQL: %v", err)
	}
	for _, want := range []string{
		`CREATE TABLE IF NOT EXISTS "main"."responses"`,
		`"age" INTEGER,`,
		`"load_id" TEXT NOT NULL`,
		`"work_interfere" TEXT NOT NULL`,
	} {
		if !strings.Contains(ddl, want) {
			t.Errorf("ddl missing %q:\n%s", want, ddl)
		}
	}
	if _, err := createTableSQL("t", nil); err == nil {
		t.Fatal("expected error for no columns")
	}
}

func TestCopyFrom_InsertsAndKeepsNull(t *testing.T) {
	ctx := context.Background()
	r := newMemRepo(t, "responses")

	ddl, _ := createTableSQL("responses", storage.Schema)
	if err := r.Exec(ctx, ddl); err != nil {
		t.Fatalf("Exec ddl: %v", err)
	}
	// Idempotent.
	if err := r.Exec(ctx, ddl); err != nil {
		t.Fatalf("Exec ddl twice: %v", err)
	}

	rows := [][]any{
		{"L1", 1, 37, "Female", "United States", "Yes", "No", "Yes", "Often"},
		{"L1", 2, nil, "Other", "", "No", "Yes", "No", ""},
	}
	n, err := r.CopyFrom(ctx, storage.Columns(), rows)
	if err != nil {
		t.Fatalf("CopyFrom: %v", err)
	}
	if n != 2 {
		t.Fatalf("inserted %d, want 2", n)
	}
	if got := count(t, r, `SELECT COUNT(*) FROM responses WHERE age IS NULL`); got != 1 {
		t.Fatalf("NULL ages = %d, want 1", got)
	}
}

func TestCopyFrom_RowWidthMismatchRollsBack(t *testing.T) {
	ctx := context.Background()
	r := newMemRepo(t, "pairs")
	if err := r.Exec(ctx, `CREATE TABLE pairs (a INTEGER, b TEXT)`); err != nil {
		t.Fatalf("Exec: %v", err)
	}

	_, err := r.CopyFrom(ctx, []string{"a", "b"}, [][]any{{1, "x"}, {2}})
	if err == nil {
		t.Fatal("expected width mismatch error")
	}
	if got := count(t, r, `SELECT COUNT(*) FROM pairs`); got != 0 {
		t.Fatalf("rows after rollback = %d, want 0", got)
	}
}

func TestCopyFrom_EmptyInputs(t *testing.T) {
	r := newMemRepo(t, "pairs")
	if _, err := r.CopyFrom(context.Background(), nil, [][]any{{1}}); err == nil {
		t.Fatal("expected error for empty columns")
	}
	n, err := r.CopyFrom(context.Background(), []string{"a"}, nil)
	if err != nil || n != 0 {
		t.Fatalf("CopyFrom(no rows) = %d, %v; want 0, nil", n, err)
	}
	if err := r.Exec(context.Background(), "   "); err != nil {
		t.Fatalf("blank Exec should be a no-op: %v", err)
	}
}
