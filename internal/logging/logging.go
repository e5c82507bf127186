// Package logging provides a minimal leveled logger with text and JSON
// output formats. The default output is stderr; batch runs typically
// redirect it to a per-run-date log file.
package logging

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"time"
)

// Level represents a log severity level.
type Level int

const (
	LevelDebug Level = iota
	LevelInfo
	LevelWarn
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelDebug:
		return "debug"
	case LevelInfo:
		return "info"
	case LevelWarn:
		return "warn"
	case LevelError:
		return "error"
	}
	return "unknown"
}

// ParseLevel converts a level name to a Level. Matching is
// case-insensitive but exact otherwise.
func ParseLevel(s string) (Level, error) {
	switch strings.ToLower(s) {
	case "debug":
		return LevelDebug, nil
	case "info":
		return LevelInfo, nil
	case "warn", "warning":
		return LevelWarn, nil
	case "error":
		return LevelError, nil
	}
	return LevelInfo, fmt.Errorf("unknown log level: %q", s)
}

var (
	mu     sync.Mutex
	level  = LevelInfo
	format = "text"
	out    io.Writer = os.Stderr
)

// SetLevel sets the minimum level that will be logged.
func SetLevel(l Level) {
	mu.Lock()
	defer mu.Unlock()
	level = l
}

// SetFormat selects the output format: "text" or "json".
func SetFormat(f string) {
	mu.Lock()
	defer mu.Unlock()
	if f == "json" {
		format = "json"
	} else {
		format = "text"
	}
}

// SetOutput redirects log output. Passing nil restores stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	defer mu.Unlock()
	if w == nil {
		out = os.Stderr
		return
	}
	out = w
}

// IsDebug reports whether debug logging is enabled.
func IsDebug() bool {
	mu.Lock()
	defer mu.Unlock()
	return level <= LevelDebug
}

// Debug logs a debug-level message.
func Debug(msg string, args ...any) { log(LevelDebug, msg, args...) }

// Info logs an info-level message.
func Info(msg string, args ...any) { log(LevelInfo, msg, args...) }

// Warn logs a warning-level message.
func Warn(msg string, args ...any) { log(LevelWarn, msg, args...) }

// Error logs an error-level message.
func Error(msg string, args ...any) { log(LevelError, msg, args...) }

func log(l Level, msg string, args ...any) {
	mu.Lock()
	defer mu.Unlock()

	if l < level {
		return
	}

	formatted := msg
	if len(args) > 0 {
		formatted = fmt.Sprintf(msg, args...)
	}

	now := time.Now()
	if format == "json" {
		entry := map[string]string{
			"ts":    now.Format(time.RFC3339),
			"level": l.String(),
			"msg":   formatted,
		}
		b, err := json.Marshal(entry)
		if err != nil {
			return
		}
		fmt.Fprintln(out, string(b))
		return
	}

	fmt.Fprintf(out, "%s [%s] %s\n", now.Format("2006-01-02 15:04:05"), strings.ToUpper(l.String()), formatted)
}
