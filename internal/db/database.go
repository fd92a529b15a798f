package db

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/glebarez/sqlite"
	"github.com/sirupsen/logrus"
	"github.com/terraincognita07/cyclecast/internal/config"
	"github.com/terraincognita07/cyclecast/internal/logging"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// OpenDatabase connects to the configured driver and brings the schema up to date.
func OpenDatabase(cfg config.DatabaseConfig, logger *logrus.Logger) (*gorm.DB, error) {
	var gormLog gormlogger.Interface
	if logger != nil {
		gormLog = logging.Gorm(logger)
	}

	switch cfg.Driver {
	case "", config.DriverSQLite:
		return OpenSQLite(cfg.Path, gormLog)
	case config.DriverPostgres:
		return OpenPostgres(cfg.URL, gormLog)
	default:
		return nil, fmt.Errorf("%w: %q", config.ErrDatabaseDriver, cfg.Driver)
	}
}

func OpenSQLite(dbPath string, gormLog gormlogger.Interface) (*gorm.DB, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}
	if gormLog == nil {
		gormLog = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)", dbPath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	if err := migrateSchema(database, config.DriverSQLite); err != nil {
		return nil, fmt.Errorf("apply embedded migrations: %w", err)
	}
	return database, nil
}

// OpenPostgres builds its schema with gorm's AutoMigrate; the embedded SQL
// relies on SQLite introspection.
func OpenPostgres(databaseURL string, gormLog gormlogger.Interface) (*gorm.DB, error) {
	if strings.TrimSpace(databaseURL) == "" {
		return nil, config.ErrDatabaseURLMissing
	}
	if gormLog == nil {
		gormLog = gormlogger.Default.LogMode(gormlogger.Silent)
	}

	database, err := gorm.Open(postgres.Open(databaseURL), &gorm.Config{Logger: gormLog})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	if err := migrateSchema(database, config.DriverPostgres); err != nil {
		return nil, err
	}
	return database, nil
}
