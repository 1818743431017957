// internal/storage/file_storage_test.go
package storage

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"

	"github.com/Corphon/NovelForge/internal/utils"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func newStorage(t *testing.T, opts Options) *FileStorage {
	t.Helper()
	opts.Logger = utils.NewLogger(zap.NewNop())
	fs, err := NewFileStorage(t.TempDir(), opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = fs.Close() })
	return fs
}

func TestJSONRoundTripAndAtomicWrite(t *testing.T) {
	fs := newStorage(t, Options{})

	type doc struct {
		Title string `json:"title"`
	}
	require.NoError(t, fs.SaveJSONFile("novels/n1", "structure.json", doc{Title: "First"}))
	assert.NoFileExists(t, filepath.Join(fs.BaseDir, "novels/n1", "structure.json.tmp"))

	var got doc
	require.NoError(t, fs.LoadJSONFile("novels/n1", "structure.json", &got))
	assert.Equal(t, "First", got.Title)

	// A write invalidates the cached body.
	require.NoError(t, fs.SaveJSONFile("novels/n1", "structure.json", doc{Title: "Second"}))
	require.NoError(t, fs.LoadJSONFile("novels/n1", "structure.json", &got))
	assert.Equal(t, "Second", got.Title)
}

func TestMissingFileIsErrNotExist(t *testing.T) {
	fs := newStorage(t, Options{})

	_, err := fs.LoadTextFile("novels/none", "structure.json")
	assert.ErrorIs(t, err, ErrNotExist)
	assert.ErrorIs(t, fs.DeleteDir("novels/none"), ErrNotExist)
}

func TestListAndDeleteDirs(t *testing.T) {
	fs := newStorage(t, Options{})

	require.NoError(t, fs.SaveTextFile("novels/b", "x", []byte("1")))
	require.NoError(t, fs.SaveTextFile("novels/a", "x", []byte("1")))

	dirs, err := fs.ListDirs("novels")
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, dirs)

	require.NoError(t, fs.DeleteDir("novels/a"))
	assert.False(t, fs.DirExists("novels/a"))
	assert.False(t, fs.FileExists("novels/a", "x"))

	empty, err := fs.ListDirs("nothing-here")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestCacheExpiresAndIsBounded(t *testing.T) {
	fs := newStorage(t, Options{CacheExpiry: 10 * time.Millisecond, MaxCacheSize: 2, CleanupInterval: 5 * time.Millisecond})

	for _, name := range []string{"a", "b", "c"} {
		require.NoError(t, fs.SaveTextFile("d", name, []byte(name)))
		_, err := fs.LoadTextFile("d", name)
		require.NoError(t, err)
	}
	fs.cacheMutex.RLock()
	assert.LessOrEqual(t, len(fs.cache), 2)
	fs.cacheMutex.RUnlock()

	// Changed on disk behind the cache's back; visible once the entry expires.
	require.NoError(t, os.WriteFile(filepath.Join(fs.BaseDir, "d", "c"), []byte("changed"), 0644))
	require.Eventually(t, func() bool {
		data, err := fs.LoadTextFile("d", "c")
		return err == nil && string(data) == "changed"
	}, time.Second, 5*time.Millisecond)
}
