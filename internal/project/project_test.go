package project

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFindRoot_MarkerFile(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "package.json"), []byte("{}"), 0o644))
	nested := filepath.Join(root, "src", "components")
	require.NoError(t, os.MkdirAll(nested, 0o755))

	got, err := FindRoot(context.Background(), nested)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindRoot_StateDirMarker(t *testing.T) {
	t.Parallel()

	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, ".gatewright"), 0o755))

	got, err := FindRoot(context.Background(), root)
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestFindRoot_NoMarker(t *testing.T) {
	t.Parallel()

	// An empty temp dir has no markers and sits outside any repository.
	_, err := FindRoot(context.Background(), t.TempDir())
	assert.Error(t, err)
}
