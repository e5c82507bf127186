package schema

import (
	"errors"
	"reflect"
	"strings"
	"testing"
)

const sampleSchema = `{
	"daily_log": [
		{"name": "BackupDate", "type": "TIMESTAMP"},
		{"name": "Server", "type": "STRING"},
		{"name": "Database", "type": "STRING"},
		{"name": "Size", "type": "INTEGER"},
		{"name": "State", "type": "STRING"},
		{"name": "LastUpdate", "type": "TIMESTAMP"}
	],
	"servers_temp": [
		{"name": "name", "type": "STRING"},
		{"name": "active", "type": "BOOLEAN"}
	]
}`

func TestLookup(t *testing.T) {
	reg, err := Parse([]byte(sampleSchema))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	fields, err := reg.Lookup("daily_log")
	if err != nil {
		t.Fatalf("Lookup: %v", err)
	}
	if len(fields) != 6 {
		t.Fatalf("expected 6 fields, got %d", len(fields))
	}
	// Field order must be preserved from the file.
	if fields[0].Name != "BackupDate" || fields[0].Type != "TIMESTAMP" {
		t.Errorf("unexpected first field: %+v", fields[0])
	}
	if fields[5].Name != "LastUpdate" {
		t.Errorf("unexpected last field: %+v", fields[5])
	}
}

func TestLookupUnknownTable(t *testing.T) {
	reg, err := Parse([]byte(sampleSchema))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	_, err = reg.Lookup("missing_table")
	if err == nil {
		t.Fatal("expected error for unknown table")
	}
	var notFound *NotFoundError
	if !errors.As(err, &notFound) {
		t.Fatalf("expected NotFoundError, got %T", err)
	}
	if notFound.Table != "missing_table" {
		t.Errorf("expected table name in error, got %q", notFound.Table)
	}
}

func TestHas(t *testing.T) {
	reg, err := Parse([]byte(sampleSchema))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if !reg.Has("servers_temp") {
		t.Error("expected Has(servers_temp) = true")
	}
	if reg.Has("nope") {
		t.Error("expected Has(nope) = false")
	}
}

func TestTablesSorted(t *testing.T) {
	reg, err := Parse([]byte(sampleSchema))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	got := reg.Tables()
	want := []string{"daily_log", "servers_temp"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tables() = %v, want %v", got, want)
	}
}

func TestParseRejectsBadSchemas(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"invalid json", `{`, "parsing schema file"},
		{"empty field list", `{"t": []}`, "declares no fields"},
		{"missing field name", `{"t": [{"type": "STRING"}]}`, "no name"},
		{"unknown type", `{"t": [{"name": "a", "type": "VARCHAR"}]}`, "unknown type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.input))
			if err == nil {
				t.Fatal("expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.want) {
				t.Errorf("expected error containing %q, got %v", tt.want, err)
			}
		})
	}
}
