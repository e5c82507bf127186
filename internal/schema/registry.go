// Package schema holds the declared BigQuery column layout per table.
// Schemas are loaded once at startup from a JSON file and are read-only
// for the rest of the run.
package schema

import (
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
)

// Field is one declared warehouse column.
type Field struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// NotFoundError is returned when a table has no declared schema. It is a
// configuration error and must surface before any database work starts.
type NotFoundError struct {
	Table string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("no schema defined for table: %s", e.Table)
}

// validFieldTypes are the BigQuery field types the schema file may declare.
var validFieldTypes = map[string]bool{
	"STRING":    true,
	"BYTES":     true,
	"INTEGER":   true,
	"INT64":     true,
	"FLOAT":     true,
	"FLOAT64":   true,
	"NUMERIC":   true,
	"BOOLEAN":   true,
	"BOOL":      true,
	"TIMESTAMP": true,
	"DATE":      true,
	"TIME":      true,
	"DATETIME":  true,
}

// Registry maps table names to their declared field layout.
type Registry struct {
	tables map[string][]Field
}

// Load reads a schema file: a JSON object mapping table names to ordered
// field lists. Field types are validated against the BigQuery type names.
func Load(path string) (*Registry, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading schema file: %w", err)
	}
	return Parse(data)
}

// Parse builds a Registry from raw schema JSON.
func Parse(data []byte) (*Registry, error) {
	var tables map[string][]Field
	if err := json.Unmarshal(data, &tables); err != nil {
		return nil, fmt.Errorf("parsing schema file: %w", err)
	}

	for name, fields := range tables {
		if len(fields) == 0 {
			return nil, fmt.Errorf("table %s declares no fields", name)
		}
		for _, f := range fields {
			if f.Name == "" {
				return nil, fmt.Errorf("table %s has a field with no name", name)
			}
			if !validFieldTypes[strings.ToUpper(f.Type)] {
				return nil, fmt.Errorf("table %s field %s has unknown type %q", name, f.Name, f.Type)
			}
		}
	}

	return &Registry{tables: tables}, nil
}

// Lookup returns the declared field layout for a table, or NotFoundError
// if the table is not in the registry.
func (r *Registry) Lookup(table string) ([]Field, error) {
	fields, ok := r.tables[table]
	if !ok {
		return nil, &NotFoundError{Table: table}
	}
	return fields, nil
}

// Has reports whether the registry declares a schema for the table.
func (r *Registry) Has(table string) bool {
	_, ok := r.tables[table]
	return ok
}

// Tables returns the sorted list of declared table names.
func (r *Registry) Tables() []string {
	names := make([]string, 0, len(r.tables))
	for name := range r.tables {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
