// Package staging manages the transient on-disk artifacts that hand
// batches to the warehouse loader, and the janitor that reaps old ones.
package staging

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/source"
)

// Write serializes a batch as newline-delimited JSON, one object per
// row, into a uniquely named file in dir. The name carries the run date
// and table name so concurrently scheduled runs against the same staging
// directory cannot collide; a short random suffix covers same-day reruns.
func Write(dir string, runDate time.Time, batch *source.Batch) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("creating staging directory: %w", err)
	}

	name := fmt.Sprintf("mysql_to_bq_%s_%s_%s.json",
		runDate.Format("2006-01-02"), batch.Table, uuid.NewString()[:8])
	path := filepath.Join(dir, name)

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating staging artifact: %w", err)
	}

	w := bufio.NewWriter(f)
	enc := json.NewEncoder(w)
	for _, row := range batch.Rows {
		record := make(map[string]any, len(batch.Columns))
		for i, col := range batch.Columns {
			record[col] = row[i]
		}
		if err := enc.Encode(record); err != nil {
			f.Close()
			os.Remove(path)
			return "", fmt.Errorf("serializing row for %s: %w", batch.Table, err)
		}
	}

	if err := w.Flush(); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("writing staging artifact: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("closing staging artifact: %w", err)
	}

	return path, nil
}
