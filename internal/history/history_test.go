package history

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/desmoke/desmoke/internal/diag"
)

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return db
}

func TestOpen_AppliesMigrations(t *testing.T) {
	db := openTestDB(t)

	var count int
	err := db.QueryRow("SELECT COUNT(*) FROM schema_migrations").Scan(&count)
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestOpen_Idempotent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "history.db")

	db, err := Open(ctx, path)
	require.NoError(t, err)
	require.NoError(t, db.Close())

	db, err = Open(ctx, path)
	require.NoError(t, err)
	assert.NoError(t, db.Close())
}

func TestRunLifecycle(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	run, err := db.StartRun(ctx, "resmoke", "test.log")
	require.NoError(t, err)
	require.NotEmpty(t, run.ID)

	d := diag.Diagnostic{
		Pos:      &diag.Position{File: "jstests/foo.js", Line: 10, Column: 5},
		Severity: diag.SeverityError,
		Message:  "assert equals failed",
		Extra:    []string{"Left:1", "Right:2"},
	}
	require.NoError(t, db.RecordDiagnostic(ctx, run.ID, 0, d))
	require.NoError(t, db.RecordDiagnostic(ctx, run.ID, 1, diag.Diagnostic{
		Pos:      &diag.Position{File: "jstests/bar.js", Line: 3, Column: 1},
		Severity: diag.SeverityWarning,
		Message:  "TypeError: nope",
	}))
	require.NoError(t, db.FinishRun(ctx, run.ID, 2))

	got, err := db.GetRun(ctx, run.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, 2, got.Count)
	assert.Equal(t, "resmoke", got.Format)
	assert.Equal(t, "test.log", got.Source)

	diags, err := db.Diagnostics(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, diags, 2)
	assert.Equal(t, "jstests/foo.js", diags[0].File)
	assert.Equal(t, 10, diags[0].Line)
	assert.Equal(t, "error", diags[0].Severity)
	assert.Contains(t, diags[0].Rendered, "Left:1")
	assert.Equal(t, "jstests/bar.js", diags[1].File)
}

func TestRecordDiagnostic_NilPosition(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	run, err := db.StartRun(ctx, "resmoke", "-")
	require.NoError(t, err)
	require.NoError(t, db.RecordDiagnostic(ctx, run.ID, 0, diag.Diagnostic{
		Severity: diag.SeverityError,
		Message:  "no position",
	}))

	diags, err := db.Diagnostics(ctx, run.ID)
	require.NoError(t, err)
	require.Len(t, diags, 1)
	assert.Empty(t, diags[0].File)
	assert.Equal(t, "<unknown>: error: no position", diags[0].Rendered)
}

func TestListRuns_NewestFirst(t *testing.T) {
	ctx := context.Background()
	db := openTestDB(t)

	first, err := db.StartRun(ctx, "resmoke", "a.log")
	require.NoError(t, err)
	second, err := db.StartRun(ctx, "cppunit", "b.log")
	require.NoError(t, err)

	// Force distinct timestamps: StartRun uses wall-clock time, which may
	// tie within a test.
	_, err = db.Exec("UPDATE runs SET started_at = '2999-01-01T00:00:00Z' WHERE id = ?", second.ID)
	require.NoError(t, err)

	runs, err := db.ListRuns(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)
	assert.Equal(t, second.ID, runs[0].ID)
	assert.Equal(t, first.ID, runs[1].ID)

	latest, err := db.LatestRun(ctx)
	require.NoError(t, err)
	require.NotNil(t, latest)
	assert.Equal(t, second.ID, latest.ID)
}

func TestLatestRun_Empty(t *testing.T) {
	db := openTestDB(t)

	latest, err := db.LatestRun(context.Background())
	require.NoError(t, err)
	assert.Nil(t, latest)
}

func TestGetRun_Missing(t *testing.T) {
	db := openTestDB(t)

	run, err := db.GetRun(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, run)
}
