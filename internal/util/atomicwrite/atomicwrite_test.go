package atomicwrite

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWriteFile_CreatesAndReplaces(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "nested", "db.json")

	require.NoError(t, WriteFile(path, []byte(`{"a":1}`), 0o600))
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"a":1}`, string(b))

	require.NoError(t, WriteFile(path, []byte(`{"a":2}`), 0o600))
	b, err = os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, `{"a":2}`, string(b))

	// no deben quedar temporales
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	require.Len(t, entries, 1)
}
