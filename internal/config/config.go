// Package config loads and validates the sync configuration from a YAML
// file. The resulting Config is immutable for the run and passed into
// every component constructor.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/credentials"
)

// DefaultRetentionDays is how long staging artifacts are kept before the
// janitor removes them.
const DefaultRetentionDays = 7

// DefaultHistoricalCutoff is the exclusive upper bound for backfill runs.
const DefaultHistoricalCutoff = "2025-03-07"

// Config is the top-level sync configuration.
type Config struct {
	Source    SourceConfig    `yaml:"source"`
	Warehouse WarehouseConfig `yaml:"warehouse"`
	Staging   StagingConfig   `yaml:"staging"`
	Log       LogConfig       `yaml:"log"`
	Sync      SyncConfig      `yaml:"sync"`
	Tables    []TableSpec     `yaml:"tables"`
}

// SourceConfig holds MySQL connection settings. User and password (and
// optionally the remaining fields) may come from a credentials file
// instead of the config itself.
type SourceConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Database        string `yaml:"database"`
	User            string `yaml:"user"`
	Password        string `yaml:"password"`
	CredentialsFile string `yaml:"credentials_file"`
}

// WarehouseConfig identifies the BigQuery destination.
type WarehouseConfig struct {
	Project string `yaml:"project"`
	Dataset string `yaml:"dataset"`
	// KeyFile is the service account key used by the BigQuery client.
	KeyFile string `yaml:"key_file"`
}

// StagingConfig controls the staging directory the loader writes into
// and the janitor sweeps.
type StagingConfig struct {
	Dir           string `yaml:"dir"`
	RetentionDays int    `yaml:"retention_days"`
}

// LogConfig controls log output.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "text" or "json"
	// Dir, when set, sends logs to MYSQL_to_BQ_<date>.log inside it.
	Dir string `yaml:"dir"`
}

// SyncConfig holds run-level sync settings.
type SyncConfig struct {
	// SchemaFile is the JSON file declaring the BigQuery schema per table.
	SchemaFile string `yaml:"schema_file"`
	// AllowedTables restricts the run to a fixed table list. When empty,
	// every table the schema file declares is eligible.
	AllowedTables []string `yaml:"allowed_tables"`
	// HistoricalCutoff is the exclusive date bound for backfill runs.
	HistoricalCutoff string `yaml:"historical_cutoff"`
}

// TableSpec declares the per-table sync rules. It is immutable for the
// run; adding a table means adding a spec here, never a code branch.
type TableSpec struct {
	Name           string            `yaml:"name"`
	DateColumn     string            `yaml:"date_column"`
	FullRefresh    bool              `yaml:"full_refresh"`
	Renames        map[string]string `yaml:"renames"`
	BooleanColumns []string          `yaml:"boolean_columns"`
	DropColumns    []string          `yaml:"drop_columns"`
	PartitionField string            `yaml:"partition_field"`
}

// Load reads, defaults, and validates a config file. When the source
// section names a credentials file, its values fill any connection and
// warehouse fields the config leaves unset.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	if cfg.Source.CredentialsFile != "" {
		creds, err := credentials.NewFileProvider(cfg.Source.CredentialsFile).Fetch()
		if err != nil {
			return nil, err
		}
		cfg.mergeCredentials(creds)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// mergeCredentials fills unset fields from a credentials file. Values
// already present in the config win.
func (c *Config) mergeCredentials(creds *credentials.Credentials) {
	if c.Source.User == "" {
		c.Source.User = creds.User
	}
	if c.Source.Password == "" {
		c.Source.Password = creds.Password
	}
	if c.Source.Host == "" {
		c.Source.Host = creds.Host
	}
	if c.Source.Port == 0 {
		c.Source.Port = creds.Port
	}
	if c.Source.Database == "" {
		c.Source.Database = creds.Database
	}
	if c.Warehouse.Project == "" {
		c.Warehouse.Project = creds.BQProject
	}
	if c.Warehouse.Dataset == "" {
		c.Warehouse.Dataset = creds.BQDataset
	}
	if c.Warehouse.KeyFile == "" {
		c.Warehouse.KeyFile = creds.GoogleApplicationCredentials
	}
}

func (c *Config) applyDefaults() {
	if c.Source.Host == "" {
		c.Source.Host = "localhost"
	}
	if c.Source.Port == 0 {
		c.Source.Port = 3306
	}
	if c.Staging.Dir == "" {
		c.Staging.Dir = "dumps"
	}
	if c.Staging.RetentionDays == 0 {
		c.Staging.RetentionDays = DefaultRetentionDays
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Sync.HistoricalCutoff == "" {
		c.Sync.HistoricalCutoff = DefaultHistoricalCutoff
	}
}

func (c *Config) validate() error {
	if c.Source.Database == "" {
		return fmt.Errorf("source: database is required")
	}
	if c.Source.User == "" || c.Source.Password == "" {
		return fmt.Errorf("source: user and password are required (directly or via credentials_file)")
	}
	if c.Warehouse.Project == "" || c.Warehouse.Dataset == "" {
		return fmt.Errorf("warehouse: project and dataset are required")
	}
	if c.Sync.SchemaFile == "" {
		return fmt.Errorf("sync: schema_file is required")
	}
	if _, err := time.Parse("2006-01-02", c.Sync.HistoricalCutoff); err != nil {
		return fmt.Errorf("sync: historical_cutoff must be YYYY-MM-DD: %w", err)
	}

	seen := make(map[string]bool)
	for _, spec := range c.Tables {
		if spec.Name == "" {
			return fmt.Errorf("tables: entry with no name")
		}
		if seen[spec.Name] {
			return fmt.Errorf("tables: duplicate entry for %s", spec.Name)
		}
		seen[spec.Name] = true
		if !spec.FullRefresh && spec.DateColumn == "" {
			return fmt.Errorf("tables: %s needs a date_column unless full_refresh is set", spec.Name)
		}
	}

	return nil
}

// TableSpec returns the declared sync spec for a table. Tables without
// an explicit entry get a zero spec with just the name filled, which the
// caller must still reject if it lacks a date column for windowed modes.
func (c *Config) TableSpec(name string) (TableSpec, bool) {
	for _, spec := range c.Tables {
		if spec.Name == name {
			return spec, true
		}
	}
	return TableSpec{Name: name}, false
}

// HistoricalCutoff returns the parsed backfill cutoff date.
func (c *Config) HistoricalCutoff() time.Time {
	t, _ := time.Parse("2006-01-02", c.Sync.HistoricalCutoff)
	return t
}

// RetentionAge returns the staging retention threshold as a duration.
func (c *Config) RetentionAge() time.Duration {
	return time.Duration(c.Staging.RetentionDays) * 24 * time.Hour
}
