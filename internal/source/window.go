package source

import (
	"fmt"
	"time"
)

// WindowKind selects the shape of the date predicate applied during
// extraction.
type WindowKind int

const (
	// WindowAll reads the whole table with no date predicate.
	WindowAll WindowKind = iota
	// WindowBeforeDay reads rows strictly before a cutoff date.
	WindowBeforeDay
	// WindowOnDay reads rows whose date column equals one day.
	WindowOnDay
)

// Window is the date-based row-selection predicate for one extraction.
type Window struct {
	Kind WindowKind
	Day  time.Time
}

// AllRows returns the unconditional window.
func AllRows() Window {
	return Window{Kind: WindowAll}
}

// Before returns a window selecting rows strictly before the given day.
func Before(day time.Time) Window {
	return Window{Kind: WindowBeforeDay, Day: day}
}

// On returns a window selecting rows on exactly the given day.
func On(day time.Time) Window {
	return Window{Kind: WindowOnDay, Day: day}
}

// Clause renders the WHERE clause and its arguments for the window over
// the given date column. The unconditional window renders as empty.
func (w Window) Clause(dateColumn string) (string, []any) {
	switch w.Kind {
	case WindowBeforeDay:
		return fmt.Sprintf(" WHERE DATE(%s) < ?", quoteIdentifier(dateColumn)), []any{w.Day.Format("2006-01-02")}
	case WindowOnDay:
		return fmt.Sprintf(" WHERE DATE(%s) = ?", quoteIdentifier(dateColumn)), []any{w.Day.Format("2006-01-02")}
	}
	return "", nil
}

func (w Window) String() string {
	switch w.Kind {
	case WindowBeforeDay:
		return "before " + w.Day.Format("2006-01-02")
	case WindowOnDay:
		return "on " + w.Day.Format("2006-01-02")
	}
	return "all rows"
}
