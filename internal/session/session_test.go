package session

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryStore_RecordAndQuery(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New("s1", NewMemoryStore())

	has, err := sess.HasTouched(ctx, "src/foo.test.ts")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, sess.RecordTouched(ctx, "src/foo.test.ts"))
	has, err = sess.HasTouched(ctx, "src/foo.test.ts")
	require.NoError(t, err)
	assert.True(t, has)

	// Duplicate records do not grow the set.
	require.NoError(t, sess.RecordTouched(ctx, "src/foo.test.ts"))
	touched, err := sess.Touched(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"src/foo.test.ts"}, touched)
}

func TestMemoryStore_ResetClears(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	sess := New("s1", NewMemoryStore())
	require.NoError(t, sess.RecordTouched(ctx, "src/foo.test.ts"))

	require.NoError(t, sess.Reset(ctx))
	has, err := sess.HasTouched(ctx, "src/foo.test.ts")
	require.NoError(t, err)
	assert.False(t, has)

	// Reset is idempotent.
	require.NoError(t, sess.Reset(ctx))
}

func TestMemoryStore_SessionsIsolated(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	store := NewMemoryStore()
	a := New("a", store)
	b := New("b", store)

	require.NoError(t, a.RecordTouched(ctx, "src/foo.test.ts"))
	has, err := b.HasTouched(ctx, "src/foo.test.ts")
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, b.Reset(ctx))
	has, err = a.HasTouched(ctx, "src/foo.test.ts")
	require.NoError(t, err)
	assert.True(t, has)
}

func TestNormalize(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "src/foo.test.ts", Normalize("src//foo.test.ts"))
	assert.Equal(t, "src/foo.test.ts", Normalize("./src/foo.test.ts"))
}
