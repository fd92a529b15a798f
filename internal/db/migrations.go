package db

import (
	"cmp"
	"fmt"
	"io/fs"
	"path"
	"regexp"
	"slices"
	"strconv"
	"strings"

	"github.com/terraincognita07/cyclecast/internal/config"
	"github.com/terraincognita07/cyclecast/internal/models"
	embeddedmigrations "github.com/terraincognita07/cyclecast/migrations"
	"gorm.io/gorm"
)

var addColumnStatementPattern = regexp.MustCompile(`(?i)^ALTER\s+TABLE\s+([^\s]+)\s+ADD\s+COLUMN\s+([^\s]+)\b`)

const schemaMigrationsTableSQL = `
CREATE TABLE IF NOT EXISTS schema_migrations (
  version TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  applied_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
);`

type schemaMigration struct {
	Version    string
	Order      int
	Name       string
	Statements []string
}

type schemaMigrationRecord struct {
	Version string `gorm:"column:version;primaryKey"`
	Name    string `gorm:"column:name"`
}

func (schemaMigrationRecord) TableName() string {
	return "schema_migrations"
}

// migrateSchema brings the schema up to date for driver. SQLite replays the
// embedded SQL files in order; Postgres builds the schema from the models.
func migrateSchema(database *gorm.DB, driver string) error {
	switch driver {
	case "", config.DriverSQLite:
		migrations, err := loadEmbeddedMigrations()
		if err != nil {
			return err
		}
		return replayMigrations(database, migrations)
	case config.DriverPostgres:
		if err := database.AutoMigrate(&models.User{}, &models.CycleProfile{}, &models.CycleHistoryRecord{}); err != nil {
			return fmt.Errorf("auto migrate: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("%w: %q", config.ErrDatabaseDriver, driver)
	}
}

func replayMigrations(database *gorm.DB, migrations []schemaMigration) error {
	if err := database.Exec(schemaMigrationsTableSQL).Error; err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var applied []string
	if err := database.Model(&schemaMigrationRecord{}).Pluck("version", &applied).Error; err != nil {
		return fmt.Errorf("load applied migration versions: %w", err)
	}

	for _, migration := range migrations {
		if slices.Contains(applied, migration.Version) {
			continue
		}
		if err := database.Transaction(func(tx *gorm.DB) error {
			return applyMigration(tx, migration)
		}); err != nil {
			return err
		}
	}
	return nil
}

func applyMigration(tx *gorm.DB, migration schemaMigration) error {
	for _, statement := range migration.Statements {
		present, err := addedColumnPresent(tx, statement)
		if err != nil {
			return fmt.Errorf("inspect migration %s: %w", migration.Name, err)
		}
		if present {
			continue
		}
		if err := tx.Exec(statement).Error; err != nil {
			return fmt.Errorf("execute migration %s statement %q: %w", migration.Name, statement, err)
		}
	}

	record := schemaMigrationRecord{Version: migration.Version, Name: migration.Name}
	if err := tx.Create(&record).Error; err != nil {
		return fmt.Errorf("record migration %s: %w", migration.Name, err)
	}
	return nil
}

// loadEmbeddedMigrations reads NNN_name.sql files ordered by their numeric prefix.
func loadEmbeddedMigrations() ([]schemaMigration, error) {
	fileNames, err := fs.Glob(embeddedmigrations.Files, "*.sql")
	if err != nil {
		return nil, fmt.Errorf("read embedded migrations: %w", err)
	}

	migrations := make([]schemaMigration, 0, len(fileNames))
	byVersion := make(map[string]string, len(fileNames))
	for _, fileName := range fileNames {
		prefix, _, found := strings.Cut(path.Base(fileName), "_")
		order, convErr := strconv.Atoi(prefix)
		if !found || convErr != nil {
			continue
		}
		if existing, dup := byVersion[prefix]; dup {
			return nil, fmt.Errorf("duplicate migration version %s in %s and %s", prefix, existing, fileName)
		}
		byVersion[prefix] = fileName

		raw, err := fs.ReadFile(embeddedmigrations.Files, fileName)
		if err != nil {
			return nil, fmt.Errorf("read migration %s: %w", fileName, err)
		}
		statements := splitSQLStatements(string(raw))
		if len(statements) == 0 {
			return nil, fmt.Errorf("migration %s has no SQL statements", fileName)
		}

		migrations = append(migrations, schemaMigration{
			Version:    prefix,
			Order:      order,
			Name:       fileName,
			Statements: statements,
		})
	}

	slices.SortFunc(migrations, func(a, b schemaMigration) int {
		return cmp.Or(cmp.Compare(a.Order, b.Order), cmp.Compare(a.Name, b.Name))
	})
	return migrations, nil
}

func splitSQLStatements(sqlText string) []string {
	statements := make([]string, 0)
	for _, part := range strings.Split(sqlText, ";") {
		if statement := strings.TrimSpace(part); statement != "" {
			statements = append(statements, statement)
		}
	}
	return statements
}

// addedColumnPresent lets ADD COLUMN statements run against databases that
// already carry the column from an older bootstrap.
func addedColumnPresent(tx *gorm.DB, statement string) (bool, error) {
	matches := addColumnStatementPattern.FindStringSubmatch(statement)
	if len(matches) != 3 {
		return false, nil
	}

	table := normalizeSQLIdentifier(matches[1])
	column := normalizeSQLIdentifier(matches[2])

	var columns []tableColumn
	query := fmt.Sprintf(`PRAGMA table_info("%s")`, strings.ReplaceAll(table, `"`, `""`))
	if err := tx.Raw(query).Scan(&columns).Error; err != nil {
		return false, fmt.Errorf("load table_info for %s: %w", table, err)
	}
	return slices.ContainsFunc(columns, func(c tableColumn) bool {
		return strings.EqualFold(strings.TrimSpace(c.Name), column)
	}), nil
}

type tableColumn struct {
	Name string `gorm:"column:name"`
}

func normalizeSQLIdentifier(identifier string) string {
	return strings.TrimSpace(strings.Trim(strings.TrimSpace(identifier), "\"`[]"))
}
