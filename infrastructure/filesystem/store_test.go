package filesystem

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"yt2mp3/domain/conversion"
)

var deliveredPattern = regexp.MustCompile(`^[0-9a-f]{32}_.+\.mp3$`)

func TestOutputStore_Place(t *testing.T) {
	work := t.TempDir()
	outDir := filepath.Join(t.TempDir(), "downloads")
	src := filepath.Join(work, "Song.mp3")
	require.NoError(t, os.WriteFile(src, []byte("ID3 audio"), 0o600))

	store := NewOutputStore(outDir)
	placed, err := store.Place(src, "Artist: Song/Live?", ".mp3")
	require.NoError(t, err)

	assert.Equal(t, outDir, filepath.Dir(placed.Path))
	assert.Regexp(t, deliveredPattern, placed.Name)
	assert.Contains(t, placed.Name, "_Artist_ Song_Live_.mp3")
	assert.Equal(t, int64(len("ID3 audio")), placed.Size)

	data, err := os.ReadFile(placed.Path)
	require.NoError(t, err)
	assert.Equal(t, "ID3 audio", string(data))

	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err), "source should be moved, not copied")
}

func TestOutputStore_PlaceMissingSource(t *testing.T) {
	store := NewOutputStore(t.TempDir())
	_, err := store.Place(filepath.Join(t.TempDir(), "nope.mp3"), "Song", ".mp3")
	require.Error(t, err)
	assert.True(t, errors.Is(err, conversion.ErrRelocationFailed))
}

func TestOutputStore_ConcurrentSameTitle(t *testing.T) {
	outDir := t.TempDir()
	store := NewOutputStore(outDir)

	const n = 10
	names := make([]string, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		work := t.TempDir()
		src := filepath.Join(work, "Song.mp3")
		require.NoError(t, os.WriteFile(src, []byte{byte(i)}, 0o600))

		wg.Add(1)
		go func(i int, src string) {
			defer wg.Done()
			placed, err := store.Place(src, "Song", ".mp3")
			if err != nil {
				t.Errorf("Place() error: %v", err)
				return
			}
			names[i] = placed.Name
		}(i, src)
	}
	wg.Wait()

	seen := make(map[string]bool)
	for _, name := range names {
		assert.False(t, seen[name], "duplicate delivered name %s", name)
		seen[name] = true
	}

	entries, err := os.ReadDir(outDir)
	require.NoError(t, err)
	assert.Len(t, entries, n)
}

func TestOutputStore_ListAndRemove(t *testing.T) {
	dir := t.TempDir()
	base := time.Now().Add(-time.Hour)
	writeFileAt(t, dir, "b.mp3", base.Add(time.Minute))
	writeFileAt(t, dir, "a.mp3", base)
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub"), 0o750))

	store := NewOutputStore(dir)
	files, err := store.List()
	require.NoError(t, err)
	require.Len(t, files, 2)
	assert.Equal(t, "a.mp3", files[0].Name)
	assert.Equal(t, "b.mp3", files[1].Name)

	require.NoError(t, store.Remove("a.mp3"))
	require.NoError(t, store.Remove("a.mp3"), "removing a missing file is not an error")
	assert.Error(t, store.Remove("../b.mp3"))

	files, err = store.List()
	require.NoError(t, err)
	assert.Len(t, files, 1)
}

func TestOutputStore_ListMissingDir(t *testing.T) {
	files, err := NewOutputStore(filepath.Join(t.TempDir(), "absent")).List()
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestDefaultOutputDir(t *testing.T) {
	assert.Equal(t, filepath.Join(os.TempDir(), "yt2mp3_downloads"), NewOutputStore("").Dir())
}

func TestCopyAndRemove(t *testing.T) {
	src := filepath.Join(t.TempDir(), "in.mp3")
	dst := filepath.Join(t.TempDir(), "out.mp3")
	require.NoError(t, os.WriteFile(src, []byte("payload"), 0o640))

	require.NoError(t, copyAndRemove(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
	_, err = os.Stat(src)
	assert.True(t, os.IsNotExist(err))
}

func TestCopyAndRemove_ExistingDestination(t *testing.T) {
	src := filepath.Join(t.TempDir(), "in.mp3")
	dst := filepath.Join(t.TempDir(), "out.mp3")
	require.NoError(t, os.WriteFile(src, []byte("new"), 0o600))
	require.NoError(t, os.WriteFile(dst, []byte("old"), 0o600))

	require.Error(t, copyAndRemove(src, dst))

	data, err := os.ReadFile(dst)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data), "existing destination must not be clobbered")
	_, err = os.Stat(src)
	assert.NoError(t, err, "source kept when copy fails")
}
