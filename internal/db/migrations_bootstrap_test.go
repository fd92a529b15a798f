package db

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/terraincognita07/cyclecast/internal/config"
	"github.com/terraincognita07/cyclecast/internal/models"
	embeddedmigrations "github.com/terraincognita07/cyclecast/migrations"
	"gorm.io/gorm"
)

func TestOpenSQLiteAppliesEmbeddedMigrationsOnCleanDatabase(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "cyclecast-clean.db")
	database := openSQLiteForMigrationBootstrapTest(t, databasePath)

	assertUsersSchemaReconciled(t, database)
	assertProfileTablesExist(t, database)
	assertNormalizedEmailIndexExists(t, database)
	assertAllEmbeddedMigrationsApplied(t, database)
}

func TestOpenSQLiteUpgradesLegacyInitSchema(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "cyclecast-legacy.db")
	seedLegacyInitSchema(t, databasePath)

	database := openSQLiteForMigrationBootstrapTest(t, databasePath)

	assertUsersSchemaReconciled(t, database)
	assertNormalizedEmailIndexExists(t, database)
	assertAllEmbeddedMigrationsApplied(t, database)

	var migratedUser models.User
	if err := database.Where("email = ?", "legacy@example.com").First(&migratedUser).Error; err != nil {
		t.Fatalf("load migrated legacy user: %v", err)
	}
	if migratedUser.Preferences != models.DefaultPreferences() {
		t.Fatalf("expected default preferences after migration, got %+v", migratedUser.Preferences)
	}

	repo := NewProfileRepository(database)
	profile, found, err := repo.FindByUserID(context.Background(), migratedUser.ID)
	if err != nil || !found {
		t.Fatalf("load legacy profile: found=%v err=%v", found, err)
	}
	if !profile.Habits.Smoking || profile.Habits.Alcohol || !profile.Habits.HighStress {
		t.Fatalf("unexpected legacy habits decode: %+v", profile.Habits)
	}
	if profile.SchemaVersion != models.CurrentProfileSchemaVersion {
		t.Fatalf("expected schema version %d, got %d", models.CurrentProfileSchemaVersion, profile.SchemaVersion)
	}
	if len(profile.History) != 1 {
		t.Fatalf("expected 1 legacy history record, got %d", len(profile.History))
	}

	var stored struct {
		Habits        string `gorm:"column:habits"`
		SchemaVersion int    `gorm:"column:schema_version"`
	}
	if err := database.Raw(`SELECT habits, schema_version FROM cycle_profiles WHERE id = ?`, profile.ID).Scan(&stored).Error; err != nil {
		t.Fatalf("load stored profile row: %v", err)
	}
	if strings.Contains(stored.Habits, "value") {
		t.Fatalf("expected habits rewritten as plain booleans, got %q", stored.Habits)
	}
	if stored.SchemaVersion != models.CurrentProfileSchemaVersion {
		t.Fatalf("expected stored schema version %d, got %d", models.CurrentProfileSchemaVersion, stored.SchemaVersion)
	}
}

func TestOpenSQLiteMigrationBootstrapIsIdempotent(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "cyclecast-idempotent.db")

	firstOpen, err := OpenSQLite(databasePath, nil)
	if err != nil {
		t.Fatalf("first open sqlite: %v", err)
	}
	firstRecords := loadMigrationRecords(t, firstOpen)

	firstSQLDB, err := firstOpen.DB()
	if err != nil {
		t.Fatalf("first open sql db: %v", err)
	}
	if err := firstSQLDB.Close(); err != nil {
		t.Fatalf("close first sql db: %v", err)
	}

	secondOpen := openSQLiteForMigrationBootstrapTest(t, databasePath)
	secondRecords := loadMigrationRecords(t, secondOpen)

	if !reflect.DeepEqual(firstRecords, secondRecords) {
		t.Fatalf("expected migration records to remain unchanged between boots, before=%v after=%v", firstRecords, secondRecords)
	}
}

func TestOpenSQLiteCreatesCaseInsensitiveUserEmailUniqueIndex(t *testing.T) {
	database := openSQLiteForMigrationBootstrapTest(t, filepath.Join(t.TempDir(), "cyclecast-email-index.db"))

	first := models.User{Email: "QA-Test2@Cyclecast.Local", PasswordHash: "hash-1", Preferences: models.DefaultPreferences()}
	if err := database.Create(&first).Error; err != nil {
		t.Fatalf("create first user: %v", err)
	}

	second := models.User{Email: "qa-test2@cyclecast.local", PasswordHash: "hash-2", Preferences: models.DefaultPreferences()}
	if err := database.Create(&second).Error; err == nil {
		t.Fatalf("expected duplicate normalized email insert to fail")
	}
}

func openSQLiteForMigrationBootstrapTest(t *testing.T, databasePath string) *gorm.DB {
	t.Helper()

	database, err := OpenSQLite(databasePath, nil)
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return database
}

func seedLegacyInitSchema(t *testing.T, databasePath string) {
	t.Helper()

	dsn := fmt.Sprintf("%s?_pragma=foreign_keys(1)", databasePath)
	database, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open legacy sqlite: %v", err)
	}

	initSQL, err := fs.ReadFile(embeddedmigrations.Files, "001_init.sql")
	if err != nil {
		t.Fatalf("read 001 migration: %v", err)
	}
	if err := database.Exec(string(initSQL)).Error; err != nil {
		t.Fatalf("apply 001 migration: %v", err)
	}

	if err := database.Exec(
		`INSERT INTO users (email, password_hash, created_at) VALUES (?, ?, CURRENT_TIMESTAMP)`,
		"legacy@example.com",
		"legacy-hash",
	).Error; err != nil {
		t.Fatalf("insert legacy user: %v", err)
	}

	var legacyUser struct {
		ID uint `gorm:"column:id"`
	}
	if err := database.Raw(`SELECT id FROM users WHERE email = ?`, "legacy@example.com").Scan(&legacyUser).Error; err != nil {
		t.Fatalf("load legacy user id: %v", err)
	}
	if legacyUser.ID == 0 {
		t.Fatal("expected non-zero legacy user id")
	}

	if err := database.Exec(
		`INSERT INTO cycle_profiles (user_id, last_period_date, cycle_length, period_duration, lifestyle_offset, habits, schema_version, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?, ?, CURRENT_TIMESTAMP, CURRENT_TIMESTAMP)`,
		legacyUser.ID,
		"2024-01-01",
		28,
		5,
		4.5,
		`{"smoking":{"value":true},"alcohol":{"value":false},"stress":{"value":true}}`,
		1,
	).Error; err != nil {
		t.Fatalf("insert legacy profile: %v", err)
	}

	if err := database.Exec(
		`INSERT INTO cycle_history_records (profile_id, start_date, end_date, is_confirmed, lifestyle_impact) SELECT id, ?, ?, 0, 4.5 FROM cycle_profiles WHERE user_id = ?`,
		"2023-12-04",
		"2023-12-09",
		legacyUser.ID,
	).Error; err != nil {
		t.Fatalf("insert legacy history: %v", err)
	}

	if database.Migrator().HasTable("schema_migrations") {
		t.Fatal("expected legacy schema to not have schema_migrations table")
	}

	sqlDB, err := database.DB()
	if err != nil {
		t.Fatalf("open legacy sql db: %v", err)
	}
	if err := sqlDB.Close(); err != nil {
		t.Fatalf("close legacy sql db: %v", err)
	}
}

func assertUsersSchemaReconciled(t *testing.T, database *gorm.DB) {
	t.Helper()

	columns := loadTableColumns(t, database, "users")
	expectedColumns := []string{
		"must_change_password",
		"pref_dark_mode",
		"pref_haptics",
		"pref_language",
	}

	for _, column := range expectedColumns {
		if _, exists := columns[column]; !exists {
			t.Fatalf("expected users.%s column to exist after migrations", column)
		}
	}
}

func assertProfileTablesExist(t *testing.T, database *gorm.DB) {
	t.Helper()

	for _, table := range []string{"cycle_profiles", "cycle_history_records"} {
		if !database.Migrator().HasTable(table) {
			t.Fatalf("expected %s table to exist after migrations", table)
		}
	}

	indexSQL := loadSQLiteObjectSQL(t, database, "index", "uidx_profile_start")
	if !strings.Contains(strings.ToLower(indexSQL), "unique") {
		t.Fatalf("expected unique history start index, got %q", indexSQL)
	}
}

func assertNormalizedEmailIndexExists(t *testing.T, database *gorm.DB) {
	t.Helper()

	indexSQL := loadSQLiteObjectSQL(t, database, "index", "idx_users_email_normalized")
	definition := strings.ToLower(strings.Join(strings.Fields(indexSQL), ""))
	if definition == "" {
		t.Fatal("expected normalized email index definition to exist")
	}
	if !strings.Contains(definition, "lower(trim(email))") {
		t.Fatalf("expected normalized email index to use lower(trim(email)), got %q", indexSQL)
	}
}

func assertAllEmbeddedMigrationsApplied(t *testing.T, database *gorm.DB) {
	t.Helper()

	expectedVersions := embeddedMigrationVersionsForTest(t)
	actualVersions := make([]string, 0)

	var rows []struct {
		Version string `gorm:"column:version"`
	}
	if err := database.Raw(`SELECT version FROM schema_migrations ORDER BY version ASC`).Scan(&rows).Error; err != nil {
		t.Fatalf("load applied migration versions: %v", err)
	}
	for _, row := range rows {
		actualVersions = append(actualVersions, row.Version)
	}

	if !reflect.DeepEqual(expectedVersions, actualVersions) {
		t.Fatalf("unexpected applied migration versions: expected=%v actual=%v", expectedVersions, actualVersions)
	}
}

type migrationRecord struct {
	Version   string `gorm:"column:version"`
	Name      string `gorm:"column:name"`
	AppliedAt string `gorm:"column:applied_at"`
}

func loadMigrationRecords(t *testing.T, database *gorm.DB) []migrationRecord {
	t.Helper()

	records := make([]migrationRecord, 0)
	if err := database.Raw(
		`SELECT version, name, applied_at FROM schema_migrations ORDER BY version ASC`,
	).Scan(&records).Error; err != nil {
		t.Fatalf("load migration records: %v", err)
	}
	return records
}

func loadTableColumns(t *testing.T, database *gorm.DB, tableName string) map[string]struct{} {
	t.Helper()

	escapedTable := strings.ReplaceAll(tableName, `"`, `""`)
	query := fmt.Sprintf(`PRAGMA table_info("%s")`, escapedTable)

	var rows []struct {
		Name string `gorm:"column:name"`
	}
	if err := database.Raw(query).Scan(&rows).Error; err != nil {
		t.Fatalf("load table columns for %s: %v", tableName, err)
	}

	columns := make(map[string]struct{}, len(rows))
	for _, row := range rows {
		columns[strings.ToLower(strings.TrimSpace(row.Name))] = struct{}{}
	}
	return columns
}

func loadSQLiteObjectSQL(t *testing.T, database *gorm.DB, objectType string, objectName string) string {
	t.Helper()

	var row struct {
		SQL string `gorm:"column:sql"`
	}
	if err := database.Raw(
		`SELECT sql FROM sqlite_master WHERE type = ? AND name = ?`,
		objectType,
		objectName,
	).Scan(&row).Error; err != nil {
		t.Fatalf("load sqlite master sql for %s %s: %v", objectType, objectName, err)
	}
	return row.SQL
}

func embeddedMigrationVersionsForTest(t *testing.T) []string {
	t.Helper()

	migrations, err := loadEmbeddedMigrations()
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}

	versions := make([]string, 0, len(migrations))
	for _, migration := range migrations {
		versions = append(versions, migration.Version)
	}
	return versions
}

func TestLoadEmbeddedMigrationsSplitsStatementsInOrder(t *testing.T) {
	migrations, err := loadEmbeddedMigrations()
	if err != nil {
		t.Fatalf("load embedded migrations: %v", err)
	}
	if len(migrations) < 3 {
		t.Fatalf("expected at least 3 embedded migrations, got %d", len(migrations))
	}
	for index := 1; index < len(migrations); index++ {
		if migrations[index-1].Order >= migrations[index].Order {
			t.Fatalf("migrations out of order: %s before %s", migrations[index-1].Name, migrations[index].Name)
		}
	}

	preferences := migrations[1]
	if preferences.Name != "002_user_preferences.sql" {
		t.Fatalf("expected 002_user_preferences.sql second, got %s", preferences.Name)
	}
	if len(preferences.Statements) != 3 {
		t.Fatalf("expected 3 ADD COLUMN statements, got %d", len(preferences.Statements))
	}
}

func TestMigrateSchemaRejectsUnknownDriver(t *testing.T) {
	database := openSQLiteForMigrationBootstrapTest(t, filepath.Join(t.TempDir(), "cyclecast-driver.db"))

	err := migrateSchema(database, "mysql")
	if !errors.Is(err, config.ErrDatabaseDriver) {
		t.Fatalf("expected ErrDatabaseDriver, got %v", err)
	}
}
