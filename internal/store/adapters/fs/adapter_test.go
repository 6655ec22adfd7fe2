package fs

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	store "github.com/dropDatabas3/mailadmin/internal/store"
)

func TestBackend_MissingFileIsNotExist(t *testing.T) {
	b, err := New(filepath.Join(t.TempDir(), "nested", "db.json"))
	require.NoError(t, err)

	_, err = b.Read(context.Background())
	require.ErrorIs(t, err, store.ErrNotExist)
}

func TestStore_CreatesDefaultFileOnFirstRead(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	b, err := New(path)
	require.NoError(t, err)
	s := store.New(b, store.Options{})

	v, err := s.Get(context.Background(), store.Users)
	require.NoError(t, err)
	require.Equal(t, []store.Item{}, v)

	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Contains(t, string(raw), "\n  \"email_logs\": []")
	require.Contains(t, string(raw), "\"smtp\"")
}

func TestStore_PersistsAcrossInstances(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	ctx := context.Background()

	b1, err := New(path)
	require.NoError(t, err)
	created, err := store.New(b1, store.Options{}).Create(ctx, store.Clients, store.Item{"name": "ACME"})
	require.NoError(t, err)

	b2, err := New(path)
	require.NoError(t, err)
	col, err := store.New(b2, store.Options{}).List(ctx, store.Clients)
	require.NoError(t, err)
	require.Len(t, col, 1)
	require.Equal(t, created.ID(), col[0].ID())
	require.Equal(t, "ACME", col[0]["name"])
}

func TestStore_CorruptFileMaskedWithDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	require.NoError(t, os.WriteFile(path, []byte("{broken"), 0o644))

	b, err := New(path)
	require.NoError(t, err)
	doc, err := store.New(b, store.Options{}).Load(context.Background())
	require.NoError(t, err)
	require.Equal(t, store.DefaultDocument(), doc)

	// el archivo corrupto no se sobrescribe en una lectura
	raw, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, "{broken", string(raw))
}

func TestNew_ParentIsFile(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "plain")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o644))

	_, err := New(filepath.Join(file, "db.json"))
	require.Error(t, err)
}

func TestOpenBackend_Registered(t *testing.T) {
	path := filepath.Join(t.TempDir(), "db.json")
	b, err := store.OpenBackend(context.Background(), store.AdapterConfig{Name: "fs", Path: path})
	require.NoError(t, err)
	require.Equal(t, "fs", b.Name())
	require.Equal(t, path, b.(*Backend).Path())
}

func TestOpenBackend_UnknownDriverListsAvailable(t *testing.T) {
	require.Contains(t, store.ListAdapters(), "fs")

	_, err := store.OpenBackend(context.Background(), store.AdapterConfig{Name: "mysql"})
	require.ErrorContains(t, err, `adapter "mysql" not registered`)
	require.ErrorContains(t, err, "fs")
}
