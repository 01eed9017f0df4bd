package fsnotify

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// waitForCallback waits up to timeout for the callback channel to receive a value.
func waitForCallback(ch <-chan string, timeout time.Duration) (string, bool) {
	select {
	case v := <-ch:
		return v, true
	case <-time.After(timeout):
		return "", false
	}
}

func TestWatcher_DetectsNewCSV(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	dropped := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		dropped <- path
	}))

	// Give watcher time to start
	time.Sleep(50 * time.Millisecond)

	csvPath := filepath.Join(dir, "alerts.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte("timestamp,zone\n"), 0644))

	path, ok := waitForCallback(dropped, 2*time.Second)
	assert.True(t, ok, "expected callback for new CSV")
	assert.Equal(t, csvPath, path)
}

func TestWatcher_IgnoresNonCSV(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	dropped := make(chan string, 10)
	require.NoError(t, w.Watch(dir, func(path string) {
		dropped <- path
	}))

	time.Sleep(50 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "upload.csv.tmp"), []byte("x"), 0644))

	_, ok := waitForCallback(dropped, 300*time.Millisecond)
	assert.False(t, ok, "non-CSV files must not trigger the callback")
}

func TestWatcher_DebouncesRapidWrites(t *testing.T) {
	dir := t.TempDir()

	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	dropped := make(chan string, 64)
	require.NoError(t, w.Watch(dir, func(path string) {
		dropped <- path
	}))

	time.Sleep(50 * time.Millisecond)

	csvPath := filepath.Join(dir, "alerts.csv")
	for i := 0; i < 10; i++ {
		require.NoError(t, os.WriteFile(csvPath, []byte("row\n"), 0644))
		time.Sleep(5 * time.Millisecond)
	}

	// Drain for a while; the burst should collapse to very few callbacks.
	time.Sleep(500 * time.Millisecond)
	count := len(dropped)
	assert.GreaterOrEqual(t, count, 1)
	assert.LessOrEqual(t, count, 3, "debounce should collapse rapid writes, got %d", count)
}

func TestWatcher_StopIsIdempotent(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)

	require.NoError(t, w.Watch(t.TempDir(), func(string) {}))
	require.NoError(t, w.Stop())
	require.NoError(t, w.Stop())
}

func TestWatcher_MissingDir(t *testing.T) {
	w, err := NewWatcher()
	require.NoError(t, err)
	defer w.Stop()

	err = w.Watch(filepath.Join(t.TempDir(), "missing"), func(string) {})
	require.Error(t, err)
}

func TestShouldIgnorePath(t *testing.T) {
	assert.False(t, shouldIgnorePath("/data/alerts.csv"))
	assert.False(t, shouldIgnorePath("/data/ALERTS.CSV"))
	assert.True(t, shouldIgnorePath("/data/alerts.csv.tmp"))
	assert.True(t, shouldIgnorePath("/data/alerts.csv.part"))
	assert.True(t, shouldIgnorePath("/data/alerts.csv~"))
	assert.True(t, shouldIgnorePath("/data/readme.md"))
}
