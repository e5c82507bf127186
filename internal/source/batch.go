package source

// Batch is an in-memory ordered table of rows extracted from one source
// table. A batch is owned by a single table's pipeline pass and is never
// shared across tables.
type Batch struct {
	Table   string
	Columns []string
	Rows    [][]any
}

// Empty reports whether the batch holds no rows. An empty batch is a
// valid "nothing to do this cycle" outcome, not an error.
func (b *Batch) Empty() bool {
	return b == nil || len(b.Rows) == 0
}

// ColumnIndex returns the position of a column, or -1 if absent.
func (b *Batch) ColumnIndex(name string) int {
	for i, c := range b.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Len returns the number of rows.
func (b *Batch) Len() int {
	if b == nil {
		return 0
	}
	return len(b.Rows)
}
