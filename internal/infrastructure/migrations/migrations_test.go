package migrations

import (
	"database/sql"
	"errors"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/stretchr/testify/require"

	// Import ncruces driver - this is the same driver flowstate uses
	_ "github.com/ncruces/go-sqlite3/driver"
	_ "github.com/ncruces/go-sqlite3/embed"
)

// TestRunMigrations_FreshDB verifies all migrations apply to an empty :memory: database.
func TestRunMigrations_FreshDB(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err, "ncruces driver should open :memory: database")
	defer db.Close()

	// Run migrations
	err = RunMigrations(db)
	require.NoError(t, err, "RunMigrations should succeed on fresh database")

	// Verify all graph tables were created
	for _, table := range []string{"workflows", "steps", "step_transitions"} {
		var tableName string
		err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name=?`, table).Scan(&tableName)
		require.NoError(t, err, "%s table should exist", table)
		require.Equal(t, table, tableName)
	}
}

// TestRunMigrations_Idempotent verifies calling RunMigrations twice doesn't error.
func TestRunMigrations_Idempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	// First run
	err = RunMigrations(db)
	require.NoError(t, err, "first migration run should succeed")

	// Second run should not error (ErrNoChange handled internally)
	err = RunMigrations(db)
	require.NoError(t, err, "second migration run should not error")

	// Verify table still exists
	var tableName string
	err = db.QueryRow(`SELECT name FROM sqlite_master WHERE type='table' AND name='workflows'`).Scan(&tableName)
	require.NoError(t, err)
	require.Equal(t, "workflows", tableName)
}

// TestMigrations_Schema verifies graph tables exist with correct columns and indexes.
func TestMigrations_Schema(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	err = RunMigrations(db)
	require.NoError(t, err)

	tableColumns := map[string][]string{
		"workflows":        {"id", "category", "sub_category", "status", "created_at", "updated_at"},
		"steps":            {"id", "workflow_id", "role", "created_at", "updated_at"},
		"step_transitions": {"id", "workflow_id", "from_step", "to_step", "action", "created_at", "updated_at"},
	}

	for table, expected := range tableColumns {
		rows, err := db.Query(`PRAGMA table_info(` + table + `)`)
		require.NoError(t, err)

		columns := make(map[string]bool)
		for rows.Next() {
			var cid int
			var name, typ string
			var notnull, pk int
			var dflt interface{}
			err := rows.Scan(&cid, &name, &typ, &notnull, &dflt, &pk)
			require.NoError(t, err)
			columns[name] = true
		}
		require.NoError(t, rows.Err())
		require.NoError(t, rows.Close())

		for _, col := range expected {
			require.True(t, columns[col], "column %s.%s should exist", table, col)
		}
	}

	// Verify indexes were created
	indexRows, err := db.Query(`SELECT name FROM sqlite_master WHERE type='index' AND name LIKE 'idx_%'`)
	require.NoError(t, err)
	defer indexRows.Close()

	indexes := make(map[string]bool)
	for indexRows.Next() {
		var name string
		require.NoError(t, indexRows.Scan(&name))
		indexes[name] = true
	}
	require.NoError(t, indexRows.Err())

	expectedIndexes := []string{
		"idx_steps_workflow",
		"idx_step_transitions_workflow",
		"idx_step_transitions_from",
		"idx_step_transitions_to",
	}
	for _, idx := range expectedIndexes {
		require.True(t, indexes[idx], "index %s should exist", idx)
	}
}

// TestMigrations_Down verifies down migration rolls back schema correctly.
func TestMigrations_Down(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	// Apply migrations first using the lower-level API for down testing
	driver, err := WithInstance(db, &Config{})
	require.NoError(t, err)

	source, err := iofs.New(MigrationsFS(), ".")
	require.NoError(t, err)

	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	require.NoError(t, err)

	err = m.Up()
	require.NoError(t, err, "migrations should apply")

	// Verify table exists before down
	var tableExists bool
	err = db.QueryRow(`SELECT COUNT(*) > 0 FROM sqlite_master WHERE type='table' AND name='workflows'`).Scan(&tableExists)
	require.NoError(t, err)
	require.True(t, tableExists, "workflows table should exist before down migration")

	// Run down migrations
	err = m.Down()
	require.NoError(t, err, "down migrations should succeed")

	// Verify tables no longer exist
	var tableCount int
	err = db.QueryRow(`SELECT COUNT(*) FROM sqlite_master WHERE type='table' AND name IN ('workflows', 'steps', 'step_transitions')`).Scan(&tableCount)
	require.NoError(t, err)
	require.Equal(t, 0, tableCount, "graph tables should be dropped after down migration")
}

// TestMigrationsFS_Embedded verifies SQL files load from embedded FS at build time.
func TestMigrationsFS_Embedded(t *testing.T) {
	fs := MigrationsFS()
	require.NotNil(t, fs, "MigrationsFS should return non-nil filesystem")

	// Verify we can read directory
	entries, err := embeddedMigrationsFS.ReadDir(".")
	require.NoError(t, err, "should read embedded directory")

	fileNames := make(map[string]bool)
	for _, entry := range entries {
		fileNames[entry.Name()] = true
	}

	require.True(t, fileNames["000001_create_workflow_graph.up.sql"], "up migration should be embedded")
	require.True(t, fileNames["000001_create_workflow_graph.down.sql"], "down migration should be embedded")

	// Read content to verify it's not empty
	upContent, err := embeddedMigrationsFS.ReadFile("000001_create_workflow_graph.up.sql")
	require.NoError(t, err)
	require.Contains(t, string(upContent), "CREATE TABLE workflows")

	downContent, err := embeddedMigrationsFS.ReadFile("000001_create_workflow_graph.down.sql")
	require.NoError(t, err)
	require.Contains(t, string(downContent), "DROP TABLE")
}

// TestNCrucesDriverWithGolangMigrate validates that our custom NCrucesSqlite driver
// works with golang-migrate's migration framework using ncruces/go-sqlite3.
func TestNCrucesDriverWithGolangMigrate(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err, "ncruces driver should open :memory: database")
	defer db.Close()

	// Verify connection works
	err = db.Ping()
	require.NoError(t, err, "database should respond to ping")

	// Create our custom ncruces-compatible driver
	driver, err := WithInstance(db, &Config{})
	require.NoError(t, err, "WithInstance should accept ncruces *sql.DB")
	require.NotNil(t, driver, "driver should not be nil")
}

// TestMigrateIdempotent verifies that running migrations twice handles ErrNoChange.
func TestMigrateIdempotent(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	// First migration run
	driver1, err := WithInstance(db, &Config{})
	require.NoError(t, err)

	source1, err := iofs.New(MigrationsFS(), ".")
	require.NoError(t, err)

	m1, err := migrate.NewWithInstance("iofs", source1, "sqlite3", driver1)
	require.NoError(t, err)

	err = m1.Up()
	require.NoError(t, err, "first migration run should succeed")

	// Close and recreate migrator (simulates app restart)
	driver2, err := WithInstance(db, &Config{})
	require.NoError(t, err)

	source2, err := iofs.New(MigrationsFS(), ".")
	require.NoError(t, err)

	m2, err := migrate.NewWithInstance("iofs", source2, "sqlite3", driver2)
	require.NoError(t, err)

	// Second migration run should return ErrNoChange
	err = m2.Up()
	if err != nil {
		require.True(t, errors.Is(err, migrate.ErrNoChange),
			"second migration run should return ErrNoChange, got: %v", err)
	}
}

// TestInsertAndQueryWithMigration verifies the migrated schema works for CRUD.
func TestInsertAndQueryWithMigration(t *testing.T) {
	db, err := sql.Open("sqlite3", "file::memory:")
	require.NoError(t, err)
	defer db.Close()

	err = RunMigrations(db)
	require.NoError(t, err)

	// Insert a workflow with one step and one transition
	_, err = db.Exec(`
		INSERT INTO workflows (id, category, sub_category, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, "wf-1", "IT", "Hardware", "draft", 1706000000, 1706000000)
	require.NoError(t, err, "workflow insert should succeed")

	_, err = db.Exec(`
		INSERT INTO steps (id, workflow_id, role, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
	`, "step-1", "wf-1", "approver", 1706000000, 1706000000)
	require.NoError(t, err, "step insert should succeed")

	_, err = db.Exec(`
		INSERT INTO step_transitions (id, workflow_id, from_step, to_step, action, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, "tr-1", "wf-1", "step-1", "step-1", "approve", 1706000000, 1706000000)
	require.NoError(t, err, "transition insert should succeed")

	// Query back with nullable columns
	var role *string
	var workflowID string
	err = db.QueryRow(`SELECT workflow_id, role FROM steps WHERE id = ?`, "step-1").Scan(&workflowID, &role)
	require.NoError(t, err)
	require.Equal(t, "wf-1", workflowID)
	require.NotNil(t, role)
	require.Equal(t, "approver", *role)

	// A transition with only one side set is allowed at the schema level
	_, err = db.Exec(`
		INSERT INTO step_transitions (id, workflow_id, from_step, to_step, action, created_at, updated_at)
		VALUES (?, ?, ?, NULL, NULL, ?, ?)
	`, "tr-2", "wf-1", "step-1", 1706000000, 1706000000)
	require.NoError(t, err, "partial transition insert should succeed")
}
