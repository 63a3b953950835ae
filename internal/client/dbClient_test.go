package client

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenDatabase_SQLiteMigrates(t *testing.T) {
	db, err := OpenDatabase(DriverSQLite, filepath.Join(t.TempDir(), "applications.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = CloseDatabase(db) })

	assert.True(t, db.Migrator().HasTable("meeting_applications"))
	assert.True(t, db.Migrator().HasColumn("meeting_applications", "plan_price"))
}

func TestOpenDatabase_UnknownDriver(t *testing.T) {
	_, err := OpenDatabase(DriverSupabase, "")
	assert.EqualError(t, err, `unsupported database driver "supabase"`)
}
