// Package source reads from the MySQL operational store: table discovery
// and windowed per-table extraction. Connections are scoped to each call
// and released on every exit path.
package source

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"
	"time"

	_ "github.com/go-sql-driver/mysql" // MySQL driver

	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/config"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/logging"
)

// ConnectError indicates the source store could not be reached.
type ConnectError struct {
	Err error
}

func (e *ConnectError) Error() string {
	return fmt.Sprintf("connecting to source store: %v", e.Err)
}

func (e *ConnectError) Unwrap() error { return e.Err }

// ExtractError indicates a windowed read failed for one table.
type ExtractError struct {
	Table string
	Err   error
}

func (e *ExtractError) Error() string {
	return fmt.Sprintf("extracting from table %s: %v", e.Table, e.Err)
}

func (e *ExtractError) Unwrap() error { return e.Err }

// Store issues discovery and extraction queries against MySQL. Each call
// opens its own connection and closes it before returning.
type Store struct {
	dsn string
}

// NewStore builds a Store from connection settings.
func NewStore(cfg config.SourceConfig) *Store {
	return &Store{dsn: buildDSN(cfg)}
}

// buildDSN renders a go-sql-driver DSN: user:password@tcp(host:port)/db.
// parseTime gives us time.Time for date columns so timestamp
// normalization does not depend on server formatting.
func buildDSN(cfg config.SourceConfig) string {
	params := url.Values{}
	params.Set("parseTime", "true")
	params.Set("charset", "utf8mb4")
	params.Set("loc", "UTC")

	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?%s",
		url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password),
		cfg.Host, cfg.Port, cfg.Database, params.Encode())
}

func (s *Store) open(ctx context.Context) (*sql.DB, error) {
	db, err := sql.Open("mysql", s.dsn)
	if err != nil {
		return nil, &ConnectError{Err: err}
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, &ConnectError{Err: err}
	}
	return db, nil
}

// Discover lists base tables in the source database and returns the
// intersection with the allowed set. Tables the registry does not know
// are silently excluded, never reported as errors.
func (s *Store) Discover(ctx context.Context, allowed map[string]bool) ([]string, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	rows, err := db.QueryContext(ctx, "SHOW FULL TABLES WHERE Table_type = 'BASE TABLE'")
	if err != nil {
		return nil, fmt.Errorf("listing tables: %w", err)
	}
	defer rows.Close()

	var tables []string
	for rows.Next() {
		var name, tableType string
		if err := rows.Scan(&name, &tableType); err != nil {
			return nil, fmt.Errorf("scanning table name: %w", err)
		}
		if allowed[name] {
			tables = append(tables, name)
		}
	}
	return tables, rows.Err()
}

// Extract runs one windowed read over a table and returns the rows with
// every timestamp column normalized to "YYYY-MM-DD HH:MM:SS". An empty
// result is a valid outcome.
func (s *Store) Extract(ctx context.Context, spec config.TableSpec, window Window) (*Batch, error) {
	db, err := s.open(ctx)
	if err != nil {
		return nil, err
	}
	defer db.Close()

	query := fmt.Sprintf("SELECT * FROM %s", quoteIdentifier(spec.Name))
	clause, args := window.Clause(spec.DateColumn)
	query += clause

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &ExtractError{Table: spec.Name, Err: err}
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, &ExtractError{Table: spec.Name, Err: err}
	}

	batch := &Batch{Table: spec.Name, Columns: columns}
	for rows.Next() {
		row := make([]any, len(columns))
		ptrs := make([]any, len(columns))
		for i := range row {
			ptrs[i] = &row[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return nil, &ExtractError{Table: spec.Name, Err: err}
		}
		for i, v := range row {
			row[i] = normalizeValue(v)
		}
		batch.Rows = append(batch.Rows, row)
	}
	if err := rows.Err(); err != nil {
		return nil, &ExtractError{Table: spec.Name, Err: err}
	}

	logging.Info("Extracted %d rows from MySQL table %s (%s)", batch.Len(), spec.Name, window)
	return batch, nil
}

// normalizeValue converts driver values to forms that serialize
// deterministically: timestamps to a fixed string layout, byte slices to
// strings.
func normalizeValue(v any) any {
	switch val := v.(type) {
	case time.Time:
		return val.Format("2006-01-02 15:04:05")
	case []byte:
		return string(val)
	}
	return v
}

func quoteIdentifier(name string) string {
	return "`" + strings.ReplaceAll(name, "`", "``") + "`"
}
