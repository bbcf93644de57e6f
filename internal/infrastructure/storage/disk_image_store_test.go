package storage

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDiskImageStore_SaveLoadRemove(t *testing.T) {
	store, err := NewDiskImageStore(t.TempDir())
	require.NoError(t, err)

	stored, err := store.SaveOriginal([]byte("raw bytes"), "rail_track.jpg")
	require.NoError(t, err)
	require.NotEmpty(t, stored)

	annotated, err := store.SaveAnnotated([]byte("annotated bytes"), stored)
	require.NoError(t, err)
	require.Contains(t, annotated, "_annotated")

	data, err := store.Load(annotated)
	require.NoError(t, err)
	require.Equal(t, []byte("annotated bytes"), data)

	require.NoError(t, store.Remove(stored))
	require.NoError(t, store.Remove(annotated))

	_, err = os.Stat(filepath.Join(store.Dir(), stored))
	require.True(t, os.IsNotExist(err))

	// повторное удаление не считается ошибкой
	require.NoError(t, store.Remove(stored))
}
