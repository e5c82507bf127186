// Package warehouse loads staged batches into BigQuery. Each load stages
// the batch as newline-delimited JSON, submits one load job with the
// requested write disposition, and blocks until the job completes.
package warehouse

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"cloud.google.com/go/bigquery"
	"google.golang.org/api/option"

	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/config"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/logging"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/schema"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/source"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/staging"
)

// Disposition says whether a load appends to or replaces the target
// table's contents.
type Disposition string

const (
	Append   Disposition = "APPEND"
	Truncate Disposition = "TRUNCATE"
)

// LoadError indicates a warehouse load failed for one table.
type LoadError struct {
	Table string
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading table %s: %v", e.Table, e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

// LoadResult reports the outcome of one table load.
type LoadResult struct {
	Table   string
	Rows    int
	Skipped bool
	// TotalRows is the advisory post-load row count of the warehouse
	// table. It is logged for observability and never used to validate
	// the load.
	TotalRows uint64
}

// Loader stages batches and submits BigQuery load jobs.
type Loader struct {
	client     *bigquery.Client
	dataset    string
	registry   *schema.Registry
	stagingDir string
}

// NewLoader creates a BigQuery-backed loader. When the config names a
// service account key file it is used; otherwise application default
// credentials apply.
func NewLoader(ctx context.Context, cfg config.WarehouseConfig, registry *schema.Registry, stagingDir string) (*Loader, error) {
	var opts []option.ClientOption
	if cfg.KeyFile != "" {
		opts = append(opts, option.WithCredentialsFile(cfg.KeyFile))
	}

	client, err := bigquery.NewClient(ctx, cfg.Project, opts...)
	if err != nil {
		return nil, fmt.Errorf("creating BigQuery client: %w", err)
	}

	return &Loader{
		client:     client,
		dataset:    cfg.Dataset,
		registry:   registry,
		stagingDir: stagingDir,
	}, nil
}

// Close releases the BigQuery client.
func (l *Loader) Close() error {
	return l.client.Close()
}

// Load stages a batch and submits one load job, blocking until the job
// completes. An empty batch is skipped outright: no staging artifact is
// created and no warehouse call is made. On success the staging artifact
// is deleted; on failure it is preserved so the failed payload can be
// inspected.
func (l *Loader) Load(ctx context.Context, batch *source.Batch, disposition Disposition, partitionField string) (*LoadResult, error) {
	if batch.Empty() {
		logging.Info("No new data to load for table: %s", batch.Table)
		return &LoadResult{Table: batch.Table, Skipped: true}, nil
	}

	fields, err := l.registry.Lookup(batch.Table)
	if err != nil {
		return nil, err
	}

	path, err := staging.Write(l.stagingDir, time.Now(), batch)
	if err != nil {
		return nil, &LoadError{Table: batch.Table, Err: err}
	}
	logging.Info("Staging artifact created: %s", path)

	if err := l.submit(ctx, batch.Table, path, fields, disposition, partitionField); err != nil {
		logging.Warn("Staging artifact preserved for inspection: %s", path)
		return nil, &LoadError{Table: batch.Table, Err: err}
	}

	if err := os.Remove(path); err != nil {
		logging.Warn("Failed to delete staging artifact %s: %v", path, err)
	} else {
		logging.Info("Staging artifact deleted: %s", path)
	}

	result := &LoadResult{Table: batch.Table, Rows: batch.Len()}
	logging.Info("Successfully loaded %d rows into BigQuery table: %s", result.Rows, batch.Table)

	// Advisory only; a failure here never fails the load.
	if md, err := l.client.Dataset(l.dataset).Table(batch.Table).Metadata(ctx); err != nil {
		logging.Warn("Failed to read row count for %s: %v", batch.Table, err)
	} else {
		result.TotalRows = md.NumRows
		logging.Info("Total rows in table after load: %d", md.NumRows)
	}

	return result, nil
}

func (l *Loader) submit(ctx context.Context, table, path string, fields []schema.Field, disposition Disposition, partitionField string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("opening staging artifact: %w", err)
	}
	defer f.Close()

	src := bigquery.NewReaderSource(f)
	src.SourceFormat = bigquery.JSON
	src.Schema = bqSchema(fields)

	loader := l.client.Dataset(l.dataset).Table(table).LoaderFrom(src)
	loader.WriteDisposition = writeDisposition(disposition)
	if partitionField != "" {
		loader.TimePartitioning = &bigquery.TimePartitioning{
			Type:  bigquery.DayPartitioningType,
			Field: partitionField,
		}
	}

	job, err := loader.Run(ctx)
	if err != nil {
		return fmt.Errorf("submitting load job: %w", err)
	}
	status, err := job.Wait(ctx)
	if err != nil {
		return fmt.Errorf("waiting for load job: %w", err)
	}
	if err := status.Err(); err != nil {
		return fmt.Errorf("load job failed: %w", err)
	}
	return nil
}

// bqSchema converts the registry's declared layout to a BigQuery schema,
// preserving field order.
func bqSchema(fields []schema.Field) bigquery.Schema {
	out := make(bigquery.Schema, len(fields))
	for i, f := range fields {
		out[i] = &bigquery.FieldSchema{
			Name: f.Name,
			Type: fieldType(f.Type),
		}
	}
	return out
}

// fieldType maps schema-file type names to BigQuery field types,
// folding the standard-SQL aliases to their canonical legacy names.
func fieldType(s string) bigquery.FieldType {
	switch strings.ToUpper(s) {
	case "INT64":
		return bigquery.IntegerFieldType
	case "FLOAT64":
		return bigquery.FloatFieldType
	case "BOOL":
		return bigquery.BooleanFieldType
	}
	return bigquery.FieldType(strings.ToUpper(s))
}

func writeDisposition(d Disposition) bigquery.TableWriteDisposition {
	if d == Truncate {
		return bigquery.WriteTruncate
	}
	return bigquery.WriteAppend
}
