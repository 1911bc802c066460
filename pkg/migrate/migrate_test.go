package migrate

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/angelmondragon/foodorder-backend/pkg/config"
	"github.com/angelmondragon/foodorder-backend/pkg/db"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsAreValid(t *testing.T) {
	require.NoError(t, ValidateEmbedded())
}

func TestValidateDirRejectsBadFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "001_bad.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))
	err := ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "invalid migration filename")

	dir = t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "20260101000000_no_down.sql"), []byte("-- +goose Up\nSELECT 1;\n"), 0o644))
	err = ValidateDir(dir)
	require.Error(t, err)
	require.Contains(t, err.Error(), "-- +goose Down")
}

func TestCreateSQLMigrationWritesTemplate(t *testing.T) {
	dir := t.TempDir()
	path, err := CreateSQLMigration(dir, "Add Order Notes")
	require.NoError(t, err)
	require.True(t, strings.HasSuffix(path, "_add_order_notes.sql"))
	require.NoError(t, ValidateDir(dir))
}

func TestRunUpAndDownOnSQLite(t *testing.T) {
	ctx := context.Background()
	client, err := db.New(ctx, config.DBConfig{
		Driver:       config.DBDriverSQLite,
		DSN:          "file:migrate_up_down?mode=memory&cache=shared",
		MaxOpenConns: 1,
	}, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = client.Close() })

	sqlDB, err := client.SQL()
	require.NoError(t, err)

	require.NoError(t, Run(ctx, sqlDB, config.DBDriverSQLite, EmbeddedDir, "up"))

	for _, table := range []string{"users", "stores", "categories", "products"} {
		var name string
		row := sqlDB.QueryRowContext(ctx, "SELECT name FROM sqlite_master WHERE type = 'table' AND name = ?", table)
		require.NoError(t, row.Scan(&name), table)
	}

	version, err := CurrentVersion(ctx, sqlDB, config.DBDriverSQLite)
	require.NoError(t, err)
	require.Equal(t, int64(20260301120200), version)

	require.NoError(t, MigrateToVersion(ctx, sqlDB, config.DBDriverSQLite, EmbeddedDir, "20260301120000"))
	var count int
	row := sqlDB.QueryRowContext(ctx, "SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'products'")
	require.NoError(t, row.Scan(&count))
	require.Zero(t, count)
}

func TestDialect(t *testing.T) {
	require.Equal(t, "sqlite3", Dialect(config.DBDriverSQLite))
	require.Equal(t, "postgres", Dialect(config.DBDriverPostgres))
	require.Equal(t, "postgres", Dialect(""))
}

func TestCreateSQLMigrationKeepsVersionsOrdered(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "29991231235959_future.sql"), []byte("-- +goose Up\n-- +goose Down\n"), 0o644))

	path, err := CreateSQLMigration(dir, "after future")
	require.NoError(t, err)
	require.Equal(t, "29991231235960_after_future.sql", filepath.Base(path))
}
