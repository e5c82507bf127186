package source

import (
	"reflect"
	"testing"
	"time"
)

func date(s string) time.Time {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return t
}

func TestWindowClause(t *testing.T) {
	tests := []struct {
		name       string
		window     Window
		dateColumn string
		wantClause string
		wantArgs   []any
	}{
		{
			name:       "unconditional",
			window:     AllRows(),
			dateColumn: "creation_date",
			wantClause: "",
			wantArgs:   nil,
		},
		{
			name:       "historical cutoff",
			window:     Before(date("2025-03-07")),
			dateColumn: "backup_date",
			wantClause: " WHERE DATE(`backup_date`) < ?",
			wantArgs:   []any{"2025-03-07"},
		},
		{
			name:       "single day",
			window:     On(date("2025-03-05")),
			dateColumn: "backup_date",
			wantClause: " WHERE DATE(`backup_date`) = ?",
			wantArgs:   []any{"2025-03-05"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clause, args := tt.window.Clause(tt.dateColumn)
			if clause != tt.wantClause {
				t.Errorf("clause = %q, want %q", clause, tt.wantClause)
			}
			if !reflect.DeepEqual(args, tt.wantArgs) {
				t.Errorf("args = %v, want %v", args, tt.wantArgs)
			}
		})
	}
}

func TestWindowString(t *testing.T) {
	if got := AllRows().String(); got != "all rows" {
		t.Errorf("String() = %q", got)
	}
	if got := Before(date("2025-03-07")).String(); got != "before 2025-03-07" {
		t.Errorf("String() = %q", got)
	}
	if got := On(date("2025-03-05")).String(); got != "on 2025-03-05" {
		t.Errorf("String() = %q", got)
	}
}

func TestNormalizeValue(t *testing.T) {
	ts := time.Date(2025, 3, 5, 14, 30, 45, 0, time.UTC)
	if got := normalizeValue(ts); got != "2025-03-05 14:30:45" {
		t.Errorf("normalizeValue(time) = %v", got)
	}
	if got := normalizeValue([]byte("srv1")); got != "srv1" {
		t.Errorf("normalizeValue(bytes) = %v", got)
	}
	if got := normalizeValue(int64(42)); got != int64(42) {
		t.Errorf("normalizeValue(int64) = %v", got)
	}
	if got := normalizeValue(nil); got != nil {
		t.Errorf("normalizeValue(nil) = %v", got)
	}
}

func TestBatchHelpers(t *testing.T) {
	var nilBatch *Batch
	if !nilBatch.Empty() {
		t.Error("nil batch should be empty")
	}
	if nilBatch.Len() != 0 {
		t.Error("nil batch should have zero length")
	}

	b := &Batch{
		Table:   "daily_log",
		Columns: []string{"backup_date", "server"},
		Rows:    [][]any{{"2025-03-05 00:00:00", "s1"}},
	}
	if b.Empty() {
		t.Error("batch with rows should not be empty")
	}
	if got := b.ColumnIndex("server"); got != 1 {
		t.Errorf("ColumnIndex(server) = %d", got)
	}
	if got := b.ColumnIndex("missing"); got != -1 {
		t.Errorf("ColumnIndex(missing) = %d", got)
	}
}

func TestBuildDSN(t *testing.T) {
	dsn := buildDSN(testSourceConfig())
	want := "etl:p%40ss@tcp(db.internal:3306)/ti_db_inventory?charset=utf8mb4&loc=UTC&parseTime=true"
	if dsn != want {
		t.Errorf("buildDSN = %q, want %q", dsn, want)
	}
}
