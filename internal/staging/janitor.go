package staging

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/logging"
)

// Janitor deletes staging artifacts whose modification time is older
// than the retention threshold. Orphans from crashed runs are reaped by
// age, not by correlating to any particular run.
type Janitor struct {
	dir    string
	maxAge time.Duration
}

// NewJanitor returns a janitor for the given staging directory.
func NewJanitor(dir string, maxAge time.Duration) *Janitor {
	return &Janitor{dir: dir, maxAge: maxAge}
}

// Sweep removes artifacts older than the retention threshold and returns
// how many were deleted. Cleanup is best-effort: every failure is logged
// and swallowed, and the sweep continues with the remaining files.
func (j *Janitor) Sweep() int {
	entries, err := os.ReadDir(j.dir)
	if err != nil {
		logging.Error("Error during cleanup of old staging files: %v", err)
		return 0
	}

	cutoff := time.Now().Add(-j.maxAge)
	deleted := 0

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".json") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			logging.Error("Error reading staging file info for %s: %v", entry.Name(), err)
			continue
		}
		if !info.ModTime().Before(cutoff) {
			continue
		}

		path := filepath.Join(j.dir, entry.Name())
		if err := os.Remove(path); err != nil {
			logging.Error("Error deleting old staging file %s: %v", path, err)
			continue
		}
		logging.Info("Deleted old staging file: %s", path)
		deleted++
	}

	return deleted
}
