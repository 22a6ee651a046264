package db

import (
	"path/filepath"
	"reflect"
	"testing"

	"gorm.io/gorm"
)

func TestOpenSQLiteAppliesEmbeddedMigrations(t *testing.T) {
	database := openTestDatabase(t)

	for _, table := range []string{"users", "sessions", "documents", "schema_migrations"} {
		if !database.Migrator().HasTable(table) {
			t.Fatalf("expected table %s to exist after migrations", table)
		}
	}

	for _, index := range []string{"idx_users_email", "uidx_user_role_round", "uidx_user_doc_type"} {
		var count int64
		if err := database.Raw(
			`SELECT COUNT(*) FROM sqlite_master WHERE type = 'index' AND name = ?`, index,
		).Scan(&count).Error; err != nil {
			t.Fatalf("look up index %s: %v", index, err)
		}
		if count != 1 {
			t.Fatalf("expected index %s to exist after migrations", index)
		}
	}

	expected := embeddedMigrationVersionsForTest(t)
	actual := appliedMigrationVersions(t, database)
	if !reflect.DeepEqual(expected, actual) {
		t.Fatalf("applied versions = %v, want %v", actual, expected)
	}
}

func TestOpenSQLiteMigrationBootstrapIsIdempotent(t *testing.T) {
	databasePath := filepath.Join(t.TempDir(), "tandem-idempotent.db")

	firstOpen, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("first open sqlite: %v", err)
	}
	firstVersions := appliedMigrationVersions(t, firstOpen)

	firstSQLDB, err := firstOpen.DB()
	if err != nil {
		t.Fatalf("first open sql db: %v", err)
	}
	if err := firstSQLDB.Close(); err != nil {
		t.Fatalf("close first sql db: %v", err)
	}

	secondOpen, err := OpenSQLite(databasePath)
	if err != nil {
		t.Fatalf("second open sqlite: %v", err)
	}
	secondSQLDB, err := secondOpen.DB()
	if err != nil {
		t.Fatalf("second open sql db: %v", err)
	}
	t.Cleanup(func() {
		_ = secondSQLDB.Close()
	})

	secondVersions := appliedMigrationVersions(t, secondOpen)
	if !reflect.DeepEqual(firstVersions, secondVersions) {
		t.Fatalf("migration records changed between boots: before=%v after=%v", firstVersions, secondVersions)
	}
}

func appliedMigrationVersions(t *testing.T, database *gorm.DB) []string {
	t.Helper()

	var rows []struct {
		Version string `gorm:"column:version"`
	}
	if err := database.Raw(`SELECT version FROM schema_migrations ORDER BY version ASC`).Scan(&rows).Error; err != nil {
		t.Fatalf("load applied migration versions: %v", err)
	}

	versions := make([]string, 0, len(rows))
	for _, row := range rows {
		versions = append(versions, row.Version)
	}
	return versions
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
