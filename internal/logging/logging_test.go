package logging

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestSetFormat_JSON(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)
	SetFormat("json")
	defer func() {
		SetFormat("text")
		SetOutput(nil)
	}()

	Info("test message")

	output := buf.String()
	if output == "" {
		t.Fatal("expected output")
	}

	var logEntry map[string]interface{}
	if err := json.Unmarshal([]byte(strings.TrimSpace(output)), &logEntry); err != nil {
		t.Fatalf("invalid JSON output: %v\nOutput: %s", err, output)
	}

	if _, ok := logEntry["ts"]; !ok {
		t.Error("missing 'ts' field in JSON log")
	}
	if level, ok := logEntry["level"]; !ok || level != "info" {
		t.Errorf("expected level='info', got %v", level)
	}
	if msg, ok := logEntry["msg"]; !ok || msg != "test message" {
		t.Errorf("expected msg='test message', got %v", msg)
	}
}

func TestSetFormat_Text(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelInfo)
	SetFormat("text")
	defer SetOutput(nil)

	Info("test message")

	output := buf.String()
	if !strings.Contains(output, "[INFO]") {
		t.Errorf("expected [INFO] in text output: %s", output)
	}
	if !strings.Contains(output, "test message") {
		t.Errorf("expected 'test message' in output: %s", output)
	}
}

func TestLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	SetOutput(&buf)
	SetLevel(LevelWarn)
	SetFormat("text")
	defer func() {
		SetLevel(LevelInfo)
		SetOutput(nil)
	}()

	Debug("hidden debug")
	Info("hidden info")
	Warn("visible warn")
	Error("visible error")

	output := buf.String()
	if strings.Contains(output, "hidden") {
		t.Errorf("messages below level leaked into output: %s", output)
	}
	if !strings.Contains(output, "visible warn") || !strings.Contains(output, "visible error") {
		t.Errorf("expected warn and error messages in output: %s", output)
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		input    string
		expected Level
		wantErr  bool
	}{
		// Valid lowercase
		{"debug", LevelDebug, false},
		{"info", LevelInfo, false},
		{"warn", LevelWarn, false},
		{"warning", LevelWarn, false},
		{"error", LevelError, false},

		// Valid uppercase
		{"DEBUG", LevelDebug, false},
		{"INFO", LevelInfo, false},
		{"WARN", LevelWarn, false},
		{"WARNING", LevelWarn, false},
		{"ERROR", LevelError, false},

		// Valid mixed case
		{"Debug", LevelDebug, false},
		{"Info", LevelInfo, false},
		{"Warn", LevelWarn, false},
		{"Warning", LevelWarn, false},
		{"Error", LevelError, false},

		// Invalid inputs
		{"", LevelInfo, true},
		{"invalid", LevelInfo, true},
		{"trace", LevelInfo, true},
		{"fatal", LevelInfo, true},
		{"INFO ", LevelInfo, true}, // trailing space
		{" info", LevelInfo, true}, // leading space
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			level, err := ParseLevel(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Errorf("ParseLevel(%q) expected error, got nil", tt.input)
				}
			} else {
				if err != nil {
					t.Errorf("ParseLevel(%q) unexpected error: %v", tt.input, err)
				}
				if level != tt.expected {
					t.Errorf("ParseLevel(%q) = %v, want %v", tt.input, level, tt.expected)
				}
			}
		})
	}
}
