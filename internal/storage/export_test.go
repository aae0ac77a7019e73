package storage_test

import (
	"context"
	"database/sql"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"surveydash/internal/metrics"
	"surveydash/internal/metrics/metricstest"
	"surveydash/internal/storage"
	_ "surveydash/internal/storage/all"
	"surveydash/internal/survey"
)

func TestListKinds_BuiltIns(t *testing.T) {
	kinds := strings.Join(storage.ListKinds(), ",")
	for _, k := range []string{"mssql", "mysql", "postgres", "sqlite"} {
		if !strings.Contains(kinds, k) {
			t.Errorf("kind %q not registered: %s", k, kinds)
		}
	}
}

func TestRows_AbsentAgeIsNull(t *testing.T) {
	rows := storage.Rows("L1", []survey.Response{
		{Age: 31, Gender: survey.Male, Country: "Canada", Treatment: "No"},
		{Gender: survey.Other},
	})
	want := [][]any{
		{"L1", 1, 31, "Male", "Canada", "No", "", "", ""},
		{"L1", 2, nil, "Other", "", "", "", "", ""},
	}
	if diff := cmp.Diff(want, rows); diff != "" {
		t.Fatalf("Rows mismatch (-want +got):\n%s", diff)
	}
	if len(storage.Columns()) != len(rows[0]) {
		t.Fatalf("Columns() has %d names, rows have %d values", len(storage.Columns()), len(rows[0]))
	}
}

func TestCreateTableSQL_Validation(t *testing.T) {
	if _, err := storage.CreateTableSQL("sqlite", "bad name; DROP"); err == nil {
		t.Fatal("expected invalid table error")
	}
	if _, err := storage.CreateTableSQL("oracle", "responses"); err == nil {
		t.Fatal("expected unknown kind error")
	}
	for _, kind := range []string{"sqlite", "postgres", "mssql", "mysql"} {
		ddl, err := storage.CreateTableSQL(kind, "survey.responses")
		if err != nil {
			t.Fatalf("%s: %v", kind, err)
		}
		if !strings.Contains(ddl, "work_interfere") {
			t.Errorf("%s ddl missing columns:\n%s", kind, ddl)
		}
	}
}

// TestExport_SQLiteRoundTrip writes a snapshot to a file database and reads
// it back through a separate connection.
func TestExport_SQLiteRoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "survey.db")

	repo, err := storage.New(ctx, storage.Config{Kind: "sqlite", DSN: path, Table: "responses"})
	if err != nil {
		t.Fatalf("storage.New: %v", err)
	}
	defer repo.Close()

	responses := []survey.Response{
		{Age: 37, Gender: survey.Female, Country: "United States", Treatment: "Yes", RemoteWork: "No", TechCompany: "Yes", WorkInterfere: "Often"},
		{Age: 44, Gender: survey.Male, Country: "United States", Treatment: "No"},
		{Gender: survey.Other, Country: "Canada", Treatment: "No"},
		{Age: 29, Gender: survey.NonBinary, Country: "Germany", Treatment: "Yes"},
		{Age: 51, Gender: survey.Transgender, Country: "France", Treatment: "Yes"},
	}
	n, err := storage.Export(ctx, repo, storage.ExportOptions{
		Kind:        "sqlite",
		Table:       "responses",
		LoadID:      "snap-1",
		BatchSize:   2,
		CreateTable: true,
	}, responses)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if n != int64(len(responses)) {
		t.Fatalf("inserted %d, want %d", n, len(responses))
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer db.Close()

	var total, nullAges int
	if err := db.QueryRow(`SELECT COUNT(*), SUM(age IS NULL) FROM responses WHERE load_id = 'snap-1'`).Scan(&total, &nullAges); err != nil {
		t.Fatalf("query: %v", err)
	}
	if total != len(responses) || nullAges != 1 {
		t.Fatalf("total=%d nullAges=%d, want %d and 1", total, nullAges, len(responses))
	}

	var gender string
	if err := db.QueryRow(`SELECT gender FROM responses WHERE row_num = 4`).Scan(&gender); err != nil {
		t.Fatalf("query: %v", err)
	}
	if gender != "Non-binary" {
		t.Fatalf("gender = %q, want Non-binary", gender)
	}
}

type failingRepo struct{ calls int }

func (f *failingRepo) CopyFrom(context.Context, []string, [][]any) (int64, error) {
	f.calls++
	return 0, errors.New("disk full")
}
func (f *failingRepo) Exec(context.Context, string) error { return nil }
func (f *failingRepo) Close()                             {}

func TestExport_Errors(t *testing.T) {
	ctx := context.Background()
	rows := []survey.Response{{Gender: survey.Other}, {Gender: survey.Other}, {Gender: survey.Other}}

	if _, err := storage.Export(ctx, &failingRepo{}, storage.ExportOptions{Kind: "sqlite", Table: "t"}, rows); err == nil {
		t.Fatal("expected error without load id")
	}
	if _, err := storage.Export(ctx, &failingRepo{}, storage.ExportOptions{Kind: "sqlite", Table: "x y", LoadID: "l"}, rows); err == nil {
		t.Fatal("expected invalid table error")
	}

	repo := &failingRepo{}
	_, err := storage.Export(ctx, repo, storage.ExportOptions{Kind: "sqlite", Table: "t", LoadID: "l", BatchSize: 1}, rows)
	if err == nil || !strings.Contains(err.Error(), "disk full") {
		t.Fatalf("err = %v, want copy failure", err)
	}
	if repo.calls != 1 {
		t.Fatalf("CopyFrom calls = %d, want 1 (stop at first failure)", repo.calls)
	}
}

type countingRepo struct{ rows int64 }

func (c *countingRepo) CopyFrom(_ context.Context, _ []string, rows [][]any) (int64, error) {
	c.rows += int64(len(rows))
	return int64(len(rows)), nil
}
func (c *countingRepo) Exec(context.Context, string) error { return nil }
func (c *countingRepo) Close()                             {}

func TestExport_RecordsMetrics(t *testing.T) {
	rec := metricstest.Install(t)
	ctx := context.Background()
	responses := make([]survey.Response, 7)
	for i := range responses {
		responses[i] = survey.Response{Age: 25 + i, Gender: survey.Female, Country: "Norway", Treatment: "Yes"}
	}

	opts := storage.ExportOptions{Kind: "sqlite", Table: "responses", LoadID: "snap-7", BatchSize: 3, Job: "export-metrics"}
	if _, err := storage.Export(ctx, &countingRepo{}, opts, responses); err != nil {
		t.Fatalf("Export: %v", err)
	}
	if _, err := storage.Export(ctx, &failingRepo{}, opts, responses); err == nil {
		t.Fatal("expected copy failure")
	}

	job := metrics.Labels{"job": "export-metrics"}
	if got := rec.Counter(metrics.StepTotal, metrics.Labels{"job": "export-metrics", "step": "export", "status": "success"}); got != 1 {
		t.Errorf("successful exports = %v, want 1", got)
	}
	if got := rec.Counter(metrics.StepTotal, metrics.Labels{"job": "export-metrics", "step": "export", "status": "failure"}); got != 1 {
		t.Errorf("failed exports = %v, want 1", got)
	}
	if got := rec.Counter(metrics.RecordsTotal, metrics.Labels{"job": "export-metrics", "kind": "inserted"}); got != 7 {
		t.Errorf("inserted rows = %v, want 7", got)
	}
	// Three batches for the good export, one attempted by the failing one.
	if got := rec.Counter(metrics.BatchesTotal, job); got != 4 {
		t.Errorf("batches = %v, want 4", got)
	}
}
