//go:build integration

package watcher

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// A template synced in chunks must not fire until the writes settle, and
// the settled event must carry the final size.
func TestIntegration_SlowWriteDetection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	w, dir := startWatcher(t, Options{})

	templateFile := filepath.Join(dir, "big-template.json")
	content := make([]byte, 1024*1024)

	f, err := os.Create(templateFile)
	require.NoError(t, err)

	const chunkSize = 128 * 1024
	for i := 0; i < len(content); i += chunkSize {
		end := min(i+chunkSize, len(content))
		_, err := f.Write(content[i:end])
		require.NoError(t, err)
		time.Sleep(10 * time.Millisecond)
	}
	require.NoError(t, f.Close())

	event := waitForEvent(t, w, 2*time.Second)
	assert.Equal(t, templateFile, event.Path)
	assert.Equal(t, int64(len(content)), event.Size)
}

// Rapid rewrites of the same template coalesce into one settled event.
func TestIntegration_MultipleRapidChanges(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	w, dir := startWatcher(t, Options{SettleDelay: 100 * time.Millisecond})

	templateFile := filepath.Join(dir, "rapid.json")
	for i := range 10 {
		require.NoError(t, os.WriteFile(templateFile, []byte(fmt.Sprintf(`{"rev":%d}`, i)), 0o644))
		time.Sleep(10 * time.Millisecond)
	}

	eventCount := 0
	timeout := time.After(time.Second)
	for {
		select {
		case event := <-w.Events():
			eventCount++
			assert.Equal(t, templateFile, event.Path)
		case <-timeout:
			assert.Equal(t, 1, eventCount, "rapid writes should settle into one event")
			return
		}
	}
}

// Directories created under a watched root are picked up automatically.
func TestIntegration_NewDirectoryDetection(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping integration test in short mode")
	}

	w, dir := startWatcher(t, Options{})

	subDir := filepath.Join(dir, "seasonal")
	require.NoError(t, os.Mkdir(subDir, 0o755))

	// Give the watcher a beat to register the new directory.
	time.Sleep(100 * time.Millisecond)

	templateFile := filepath.Join(subDir, "template.json")
	require.NoError(t, os.WriteFile(templateFile, []byte("content"), 0o644))

	event := waitForEvent(t, w, time.Second)
	assert.Equal(t, templateFile, event.Path)
}
