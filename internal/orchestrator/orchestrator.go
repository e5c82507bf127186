// Package orchestrator sequences a sync run: table discovery, then
// extract, transform, and load for each table in turn, then one staging
// sweep. Processing is strictly sequential and fail-fast: the first
// failure aborts the remainder of the run, and tables already loaded
// stay loaded.
package orchestrator

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/config"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/logging"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/schema"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/source"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/transform"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/warehouse"
)

// Store is the source-side collaborator: discovery plus windowed reads.
type Store interface {
	Discover(ctx context.Context, allowed map[string]bool) ([]string, error)
	Extract(ctx context.Context, spec config.TableSpec, window source.Window) (*source.Batch, error)
}

// Loader is the warehouse-side collaborator.
type Loader interface {
	Load(ctx context.Context, batch *source.Batch, disposition warehouse.Disposition, partitionField string) (*warehouse.LoadResult, error)
}

// Sweeper reaps old staging artifacts.
type Sweeper interface {
	Sweep() int
}

// Orchestrator drives one table fully to completion before starting the
// next. There is no concurrency and no retry.
type Orchestrator struct {
	cfg      *config.Config
	registry *schema.Registry
	store    Store
	loader   Loader
	janitor  Sweeper

	now func() time.Time
}

// New creates an Orchestrator.
func New(cfg *config.Config, registry *schema.Registry, store Store, loader Loader, janitor Sweeper) *Orchestrator {
	return &Orchestrator{
		cfg:      cfg,
		registry: registry,
		store:    store,
		loader:   loader,
		janitor:  janitor,
		now:      time.Now,
	}
}

// Run executes one sync pass in the given mode. The first failing stage
// aborts the run and its error is returned; the staging sweep only runs
// when every table completed, matching the abort-before-cleanup behavior
// of the deployed scripts.
func (o *Orchestrator) Run(ctx context.Context, mode Mode) error {
	runID := uuid.NewString()[:8]
	logging.Info("Starting %s sync run %s", mode, runID)

	// Every declared table must have a schema before any network call,
	// so a misconfigured table fails without touching the source store.
	for _, spec := range o.cfg.Tables {
		if _, err := o.registry.Lookup(spec.Name); err != nil {
			return err
		}
	}

	tables, err := o.store.Discover(ctx, o.allowedTables())
	if err != nil {
		return err
	}
	logging.Info("Found tables in MySQL: %v", tables)

	now := o.now()
	for _, name := range tables {
		logging.Info("Processing table: %s", name)

		spec, _ := o.cfg.TableSpec(name)
		window, disposition := plan(mode, spec, o.cfg.HistoricalCutoff(), now)

		batch, err := o.store.Extract(ctx, spec, window)
		if err != nil {
			return err
		}
		if batch.Empty() {
			logging.Warn("No data extracted for table: %s", name)
			continue
		}

		batch, err = transform.Apply(batch, spec)
		if err != nil {
			return err
		}

		if _, err := o.loader.Load(ctx, batch, disposition, spec.PartitionField); err != nil {
			return err
		}
	}

	deleted := o.janitor.Sweep()
	logging.Info("Sync run %s completed, %d old staging files removed", runID, deleted)
	return nil
}

// allowedTables resolves the eligible-table set for the run: the
// configured allow-list when present, otherwise every table the schema
// registry declares. Names without a declared schema are excluded here,
// so discovery silently skips them rather than failing.
func (o *Orchestrator) allowedTables() map[string]bool {
	names := o.cfg.Sync.AllowedTables
	if len(names) == 0 {
		names = o.registry.Tables()
	}

	allowed := make(map[string]bool, len(names))
	for _, name := range names {
		if o.registry.Has(name) {
			allowed[name] = true
		}
	}
	return allowed
}
