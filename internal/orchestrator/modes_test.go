package orchestrator

import (
	"testing"
	"time"

	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/config"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/source"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/warehouse"
)

func TestPlanUndeclaredTableDefaultsToFullRefresh(t *testing.T) {
	// A table discovered without an explicit spec has no date column, so
	// every mode reads it whole and truncates.
	spec := config.TableSpec{Name: "database_list"}
	cutoff := time.Date(2025, 3, 7, 0, 0, 0, 0, time.UTC)
	now := time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC)

	for _, mode := range []Mode{ModeIncremental, ModeDaily, ModeHistorical} {
		window, disposition := plan(mode, spec, cutoff, now)
		if window.Kind != source.WindowAll {
			t.Errorf("%s: window = %v, want unconditional", mode, window)
		}
		if disposition != warehouse.Truncate {
			t.Errorf("%s: disposition = %v, want TRUNCATE", mode, disposition)
		}
	}
}

func TestModeString(t *testing.T) {
	tests := []struct {
		mode Mode
		want string
	}{
		{ModeIncremental, "incremental"},
		{ModeDaily, "daily"},
		{ModeHistorical, "historical"},
		{Mode(99), "unknown"},
	}
	for _, tt := range tests {
		if got := tt.mode.String(); got != tt.want {
			t.Errorf("Mode(%d).String() = %q, want %q", tt.mode, got, tt.want)
		}
	}
}
