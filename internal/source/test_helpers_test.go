package source

import "github.com/yvettehalili/MYSQL-to-BigQuery/internal/config"

func testSourceConfig() config.SourceConfig {
	return config.SourceConfig{
		Host:     "db.internal",
		Port:     3306,
		Database: "ti_db_inventory",
		User:     "etl",
		Password: "p@ss",
	}
}
