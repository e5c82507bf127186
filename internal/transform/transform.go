// Package transform applies the declarative per-table rules: column
// renames, boolean coercion, and column drops. Apply is pure and
// idempotent; the input batch is never modified.
package transform

import (
	"fmt"
	"strings"

	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/config"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/source"
)

// Error indicates a declared boolean column held a value that cannot be
// coerced to a boolean.
type Error struct {
	Table  string
	Column string
	Value  any
}

func (e *Error) Error() string {
	return fmt.Sprintf("transforming table %s: column %s holds %v (%T), not coercible to boolean",
		e.Table, e.Column, e.Value, e.Value)
}

// Apply produces a new batch with the spec's rules applied. Renames and
// drops tolerate missing source columns; boolean coercion fails on
// values with no boolean meaning. Applying the result again is a no-op.
func Apply(batch *source.Batch, spec config.TableSpec) (*source.Batch, error) {
	out := &source.Batch{
		Table:   batch.Table,
		Columns: make([]string, len(batch.Columns)),
	}
	copy(out.Columns, batch.Columns)

	out.Rows = make([][]any, len(batch.Rows))
	for i, row := range batch.Rows {
		dup := make([]any, len(row))
		copy(dup, row)
		out.Rows[i] = dup
	}

	for from, to := range spec.Renames {
		if idx := out.ColumnIndex(from); idx >= 0 {
			out.Columns[idx] = to
		}
	}

	for _, col := range spec.BooleanColumns {
		idx := out.ColumnIndex(col)
		if idx < 0 {
			continue
		}
		for _, row := range out.Rows {
			coerced, ok := coerceBool(row[idx])
			if !ok {
				return nil, &Error{Table: batch.Table, Column: col, Value: row[idx]}
			}
			row[idx] = coerced
		}
	}

	for _, col := range spec.DropColumns {
		if idx := out.ColumnIndex(col); idx >= 0 {
			out.Columns = append(out.Columns[:idx], out.Columns[idx+1:]...)
			for i, row := range out.Rows {
				out.Rows[i] = append(row[:idx], row[idx+1:]...)
			}
		}
	}

	return out, nil
}

// coerceBool maps source surrogates (tinyint flags, "0"/"1" strings) to
// genuine booleans. NULL stays NULL. A bool passes through unchanged,
// which is what makes Apply idempotent.
func coerceBool(v any) (any, bool) {
	switch val := v.(type) {
	case nil:
		return nil, true
	case bool:
		return val, true
	case int64:
		return val != 0, true
	case int32:
		return val != 0, true
	case int:
		return val != 0, true
	case float64:
		return val != 0, true
	case string:
		switch strings.ToLower(val) {
		case "1", "true", "t", "yes", "y":
			return true, true
		case "0", "false", "f", "no", "n", "":
			return false, true
		}
		return nil, false
	}
	return nil, false
}
