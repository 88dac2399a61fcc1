package file

import (
	"os"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcher_ReloadsOnExternalWrite(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("identity.server_url", "https://old.example.com"))

	w, err := NewWatcher(store)
	require.NoError(t, err)
	defer w.Close()

	var calls atomic.Int32
	w.OnChange(func() { calls.Add(1) })

	content := "[identity]\nserver_url = \"https://new.example.com\"\n"
	require.NoError(t, os.WriteFile(store.Path(), []byte(content), 0600))

	assert.Eventually(t, func() bool {
		return store.GetString("identity.server_url") == "https://new.example.com"
	}, 2*time.Second, 10*time.Millisecond)
	assert.Eventually(t, func() bool { return calls.Load() >= 1 }, 2*time.Second, 10*time.Millisecond)
}

func TestWatcher_IgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := NewConfigStore(dir)
	require.NoError(t, err)

	w, err := NewWatcher(store)
	require.NoError(t, err)
	defer w.Close()

	var calls atomic.Int32
	w.OnChange(func() { calls.Add(1) })

	require.NoError(t, os.WriteFile(dir+"/notes.txt", []byte("hello"), 0600))
	time.Sleep(3 * reloadDelay)

	assert.Zero(t, calls.Load())
}

func TestWatcher_InvalidFileKeepsPreviousValues(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)
	require.NoError(t, store.Set("directory.base_url", "https://matrix.example.com"))

	w, err := NewWatcher(store)
	require.NoError(t, err)
	defer w.Close()

	var calls atomic.Int32
	w.OnChange(func() { calls.Add(1) })

	require.NoError(t, os.WriteFile(store.Path(), []byte("[broken"), 0600))
	time.Sleep(3 * reloadDelay)

	assert.Zero(t, calls.Load())
	assert.Equal(t, "https://matrix.example.com", store.GetString("directory.base_url"))
}

func TestWatcher_CloseStops(t *testing.T) {
	store, err := NewConfigStore(t.TempDir())
	require.NoError(t, err)

	w, err := NewWatcher(store)
	require.NoError(t, err)

	assert.NoError(t, w.Close())
}
