package migrate

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	_ "github.com/tursodatabase/go-libsql"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("libsql", "file:"+filepath.Join(t.TempDir(), "migrate.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func TestSplitSQL(t *testing.T) {
	stmts := SplitSQL("CREATE TABLE a (id INT);\n\n  ;CREATE INDEX i ON a(id);\n")
	assert.Equal(t, []string{"CREATE TABLE a (id INT)", "CREATE INDEX i ON a(id)"}, stmts)
}

func TestMigrator_Load(t *testing.T) {
	m := NewMigrator(nil, nil)
	all, err := m.Load()
	require.NoError(t, err)
	require.GreaterOrEqual(t, len(all), 2)

	for i := 1; i < len(all); i++ {
		assert.Less(t, all[i-1].Version, all[i].Version)
	}
	for _, mig := range all {
		assert.NotEmpty(t, mig.UpSQL, "migration %d has no up SQL", mig.Version)
		assert.NotEmpty(t, mig.DownSQL, "migration %d has no down SQL", mig.Version)
	}
}

func TestMigrator_UpAndDown(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)
	m := NewMigrator(db, nil)

	applied, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Greater(t, applied, 0)

	version, dirty, err := m.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.False(t, dirty)
	assert.Equal(t, applied, version)

	again, err := m.Up(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, again)

	require.NoError(t, m.To(ctx, 0))
	version, _, err = m.CurrentVersion(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, version)

	var count int
	err = db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'kv_store'`).Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 0, count)
}
