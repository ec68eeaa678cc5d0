package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/gatewright/gatewright/internal/db"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	conn, err := db.Open(filepath.Join(t.TempDir(), "gatewright.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return NewSQLiteStore(conn)
}

func TestSQLiteStore_TouchedSurvivesReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "gatewright.db")

	conn, err := db.Open(dbPath)
	require.NoError(t, err)
	store := NewSQLiteStore(conn)
	require.NoError(t, store.Reset(ctx, "s1"))
	require.NoError(t, store.RecordTouched(ctx, "s1", "src/foo.test.ts"))
	require.NoError(t, conn.Close())

	// A later hook process sees the same state.
	conn, err = db.Open(dbPath)
	require.NoError(t, err)
	defer func() { _ = conn.Close() }()
	store = NewSQLiteStore(conn)
	has, err := store.HasTouched(ctx, "s1", "src/foo.test.ts")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestSQLiteStore_ResetDiscardsPriorSession(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.Reset(ctx, "s1"))
	require.NoError(t, store.RecordTouched(ctx, "s1", "src/foo.test.ts"))
	require.NoError(t, store.RecordDecision(ctx, "s1", DecisionRecord{
		Phase: "pre", Action: "write", Path: "src/foo.ts", Verdict: "block", Reason: "write test first",
	}))

	require.NoError(t, store.Reset(ctx, "s1"))

	has, err := store.HasTouched(ctx, "s1", "src/foo.test.ts")
	require.NoError(t, err)
	assert.False(t, has)
	decisions, err := store.Decisions(ctx, "s1")
	require.NoError(t, err)
	assert.Empty(t, decisions)
}

func TestSQLiteStore_DecisionOrder(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)
	require.NoError(t, store.Reset(ctx, "s1"))

	require.NoError(t, store.RecordDecision(ctx, "s1", DecisionRecord{Phase: "pre", Action: "write", Path: "src/foo.ts", Verdict: "block"}))
	require.NoError(t, store.RecordDecision(ctx, "s1", DecisionRecord{Phase: "pre", Action: "write", Path: "src/foo.test.ts", Verdict: "allow"}))
	require.NoError(t, store.RecordDecision(ctx, "s1", DecisionRecord{Phase: "completion", Action: "stop", Verdict: "block", Fault: "policy"}))

	decisions, err := store.Decisions(ctx, "s1")
	require.NoError(t, err)
	require.Len(t, decisions, 3)
	assert.Equal(t, 1, decisions[0].Seq)
	assert.Equal(t, 3, decisions[2].Seq)
	assert.Equal(t, "stop", decisions[2].Action)
	assert.Equal(t, "policy", decisions[2].Fault)
}

func TestSQLiteStore_RecordWithoutResetCreatesSession(t *testing.T) {
	ctx := context.Background()
	store := openTestStore(t)

	require.NoError(t, store.RecordTouched(ctx, "late", "src/foo.test.ts"))
	sessions, err := store.Sessions(ctx)
	require.NoError(t, err)
	require.Len(t, sessions, 1)
	assert.Equal(t, "late", sessions[0].ID)
}
