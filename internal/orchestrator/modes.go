package orchestrator

import (
	"time"

	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/config"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/source"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/warehouse"
)

// Mode selects which sync variant a run performs.
type Mode int

const (
	// ModeIncremental syncs rows dated today and appends.
	ModeIncremental Mode = iota
	// ModeDaily syncs rows dated yesterday and appends.
	ModeDaily
	// ModeHistorical backfills rows before the fixed cutoff and replaces
	// the target table.
	ModeHistorical
)

func (m Mode) String() string {
	switch m {
	case ModeIncremental:
		return "incremental"
	case ModeDaily:
		return "daily"
	case ModeHistorical:
		return "historical"
	}
	return "unknown"
}

// plan resolves the extract window and write disposition for one table
// under a run mode. The mapping is fixed: historical runs read before
// the cutoff and truncate; daily runs read yesterday and append;
// incremental runs read today and append. A full-refresh table (a
// dimension table with no meaningful date window) is always read whole
// and truncated, whatever the mode.
func plan(mode Mode, spec config.TableSpec, cutoff, now time.Time) (source.Window, warehouse.Disposition) {
	if spec.FullRefresh || spec.DateColumn == "" {
		return source.AllRows(), warehouse.Truncate
	}

	switch mode {
	case ModeHistorical:
		return source.Before(cutoff), warehouse.Truncate
	case ModeDaily:
		return source.On(now.AddDate(0, 0, -1)), warehouse.Append
	default:
		return source.On(now), warehouse.Append
	}
}
