package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestOrdersMigrationContainsSchema(t *testing.T) {
	matches, err := filepath.Glob(filepath.Join("migrations", "*_create_orders_table.sql"))
	require.NoError(t, err)
	require.NotEmpty(t, matches, "no orders migration file found")

	data, err := os.ReadFile(matches[0])
	require.NoError(t, err)
	content := string(data)

	for _, sub := range []string{
		"CREATE TABLE IF NOT EXISTS orders",
		"CREATE INDEX IF NOT EXISTS idx_orders_created_at",
		"CREATE INDEX IF NOT EXISTS idx_orders_status",
		"DROP TABLE IF EXISTS orders",
	} {
		assert.Contains(t, content, sub)
	}
}

func TestValidateDirAcceptsShippedMigrations(t *testing.T) {
	require.NoError(t, ValidateDir("migrations"))
}

func TestValidateDirRejectsBadNames(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "bad-name.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid migration filename")
}

func TestCreateSQLMigration(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Order Source")
	require.NoError(t, err)
	assert.True(t, strings.HasSuffix(path, "_add_order_source.sql"))
	require.NoError(t, ValidateDir(dir))
}

func TestCreateSQLMigrationRefusesDuplicates(t *testing.T) {
	dir := t.TempDir()
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	path, err := createAt(dir, "  --  ", now)
	require.Error(t, err)
	assert.Empty(t, path)

	path, err = createAt(dir, "seed", now)
	require.NoError(t, err)
	assert.Equal(t, "20260301120000_seed.sql", filepath.Base(path))
	_, err = createAt(dir, "seed", now)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already exists")
}

func TestValidateEmbedded(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
}

func TestValidateRejectsDialectSpecificSQL(t *testing.T) {
	dir := t.TempDir()
	body := "-- +goose Up\nCREATE TABLE t (id SERIAL, data jsonb);\n-- +goose Down\nDROP TABLE t;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301120000_t.sql"), []byte(body), 0o644))
	err := ValidateDir(dir)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "do not share")

	commented := "-- +goose Up\n-- no SERIAL here\nCREATE TABLE t (id TEXT);\n-- +goose Down\nDROP TABLE t;\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260301120000_t.sql"), []byte(commented), 0o644))
	require.NoError(t, ValidateDir(dir))
}

func TestDialect(t *testing.T) {
	assert.Equal(t, "sqlite3", Dialect("SQLite"))
	assert.Equal(t, "postgres", Dialect("postgres"))
	assert.Equal(t, "postgres", Dialect(""))
}

func TestRunEmbeddedUpAndDownOnSQLite(t *testing.T) {
	conn, err := gorm.Open(sqlite.Open("file:migrate_embedded?mode=memory&cache=shared"), &gorm.Config{})
	require.NoError(t, err)
	sqlDB, err := conn.DB()
	require.NoError(t, err)
	t.Cleanup(func() { _ = sqlDB.Close() })

	ctx := context.Background()
	require.NoError(t, RunEmbedded(ctx, sqlDB, "sqlite", "up"))
	assert.True(t, conn.Migrator().HasTable("orders"))

	require.NoError(t, RunEmbedded(ctx, sqlDB, "sqlite", "down"))
	assert.False(t, conn.Migrator().HasTable("orders"))
}
