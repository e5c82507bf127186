package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/config"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/logging"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/orchestrator"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/schema"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/source"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/staging"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/util"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/version"
	"github.com/yvettehalili/MYSQL-to-BigQuery/internal/warehouse"
)

func main() {
	app := &cli.App{
		Name:    version.Name,
		Usage:   version.Description,
		Version: version.Version,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Value:   "config.yaml",
				Usage:   "Path to configuration file",
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "Override log level (debug, info, warn, error)",
			},
			&cli.StringFlag{
				Name:  "log-format",
				Usage: "Override log format (text, json)",
			},
		},
		Commands: []*cli.Command{
			{
				Name:  "sync",
				Usage: "Run an incremental sync (today's rows; --daily for yesterday's)",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:  "daily",
						Usage: "Sync yesterday's rows instead of today's",
					},
					&cli.StringFlag{
						Name:  "tables",
						Usage: "Comma-separated table list overriding the configured allow-list",
					},
				},
				Action: func(c *cli.Context) error {
					mode := orchestrator.ModeIncremental
					if c.Bool("daily") {
						mode = orchestrator.ModeDaily
					}
					return runSync(c, mode)
				},
			},
			{
				Name:  "backfill",
				Usage: "Backfill history before the configured cutoff date",
				Action: func(c *cli.Context) error {
					return runSync(c, orchestrator.ModeHistorical)
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func runSync(c *cli.Context, mode orchestrator.Mode) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Flags win over the config file.
	if c.IsSet("log-level") {
		cfg.Log.Level = c.String("log-level")
	}
	if c.IsSet("log-format") {
		cfg.Log.Format = c.String("log-format")
	}
	if c.IsSet("tables") {
		cfg.Sync.AllowedTables = util.SplitCSV(c.String("tables"))
	}

	closeLog, err := setupLogging(cfg.Log)
	if err != nil {
		return err
	}
	defer closeLog()

	registry, err := schema.Load(cfg.Sync.SchemaFile)
	if err != nil {
		return err
	}

	store := source.NewStore(cfg.Source)

	ctx := context.Background()
	loader, err := warehouse.NewLoader(ctx, cfg.Warehouse, registry, cfg.Staging.Dir)
	if err != nil {
		return err
	}
	defer loader.Close()

	janitor := staging.NewJanitor(cfg.Staging.Dir, cfg.RetentionAge())

	orch := orchestrator.New(cfg, registry, store, loader, janitor)
	if err := orch.Run(ctx, mode); err != nil {
		logging.Error("Sync run failed: %v", err)
		return err
	}
	return nil
}

// setupLogging applies the log level and format and, when a log
// directory is configured, appends to a per-run-date file inside it.
func setupLogging(cfg config.LogConfig) (func(), error) {
	level, err := logging.ParseLevel(cfg.Level)
	if err != nil {
		return nil, err
	}
	logging.SetLevel(level)
	logging.SetFormat(cfg.Format)

	if cfg.Dir == "" {
		return func() {}, nil
	}

	if err := os.MkdirAll(cfg.Dir, 0755); err != nil {
		return nil, fmt.Errorf("creating log directory: %w", err)
	}
	name := fmt.Sprintf("MYSQL_to_BQ_%s.log", time.Now().Format("2006-01-02"))
	f, err := os.OpenFile(filepath.Join(cfg.Dir, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, fmt.Errorf("opening log file: %w", err)
	}

	logging.SetOutput(f)
	return func() {
		logging.SetOutput(nil)
		f.Close()
	}, nil
}
