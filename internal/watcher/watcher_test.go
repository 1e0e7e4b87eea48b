package watcher

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// startWatcher creates a watcher over a fresh temp dir and runs its event
// loop until the test ends. Returns the watcher and the watched dir.
func startWatcher(t *testing.T, opts Options) (*Watcher, string) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := New(logger, opts)
	require.NoError(t, err)
	t.Cleanup(func() { w.Stop() }) //nolint:errcheck // Test cleanup

	dir := t.TempDir()
	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)
	go w.Start(ctx) //nolint:errcheck // Test goroutine

	return w, dir
}

func waitForEvent(t *testing.T, w *Watcher, timeout time.Duration) Event {
	t.Helper()

	select {
	case event := <-w.Events():
		return event
	case err := <-w.Errors():
		t.Fatalf("unexpected watcher error: %v", err)
	case <-time.After(timeout):
		t.Fatal("timeout waiting for event")
	}
	return Event{}
}

func TestNew(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	w, err := New(logger, Options{})
	require.NoError(t, err)
	require.NotNil(t, w)

	assert.NoError(t, w.Stop())
}

func TestWatcher_Watch(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := New(logger, Options{})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	assert.NoError(t, w.Watch(t.TempDir()))
}

func TestWatcher_FileCreation(t *testing.T) {
	w, dir := startWatcher(t, Options{SettleDelay: 50 * time.Millisecond})

	templateFile := filepath.Join(dir, "template.json")
	content := []byte(`{"id":"test-template"}`)
	require.NoError(t, os.WriteFile(templateFile, content, 0o644))

	event := waitForEvent(t, w, time.Second)
	assert.Equal(t, EventAdded, event.Type)
	assert.Equal(t, templateFile, event.Path)
	assert.Equal(t, int64(len(content)), event.Size)
}

func TestWatcher_FileModification(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := New(logger, Options{SettleDelay: 50 * time.Millisecond})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	// The file exists before watching starts, so a change to it reads as
	// a modification rather than an add.
	dir := t.TempDir()
	templateFile := filepath.Join(dir, "template.json")
	require.NoError(t, os.WriteFile(templateFile, []byte(`{"id":"v1"}`), 0o644))

	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx) //nolint:errcheck // Test goroutine

	require.NoError(t, os.WriteFile(templateFile, []byte(`{"id":"v2-updated"}`), 0o644))

	event := waitForEvent(t, w, time.Second)
	assert.Equal(t, EventModified, event.Type)
	assert.Equal(t, templateFile, event.Path)
}

func TestWatcher_FileDeletion(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	w, err := New(logger, Options{})
	require.NoError(t, err)
	defer w.Stop() //nolint:errcheck // Test cleanup

	dir := t.TempDir()
	templateFile := filepath.Join(dir, "retired.json")
	require.NoError(t, os.WriteFile(templateFile, []byte("content"), 0o644))

	require.NoError(t, w.Watch(dir))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go w.Start(ctx) //nolint:errcheck // Test goroutine

	require.NoError(t, os.Remove(templateFile))

	event := waitForEvent(t, w, 500*time.Millisecond)
	assert.Equal(t, EventRemoved, event.Type)
	assert.Equal(t, templateFile, event.Path)
}

func TestWatcher_IgnoreHidden(t *testing.T) {
	w, dir := startWatcher(t, Options{
		IgnoreHidden: true,
		SettleDelay:  50 * time.Millisecond,
	})

	hiddenFile := filepath.Join(dir, ".hidden")
	require.NoError(t, os.WriteFile(hiddenFile, []byte("secret"), 0o644))

	normalFile := filepath.Join(dir, "normal.json")
	require.NoError(t, os.WriteFile(normalFile, []byte("content"), 0o644))

	event := waitForEvent(t, w, 500*time.Millisecond)
	assert.Equal(t, normalFile, event.Path)

	select {
	case event := <-w.Events():
		t.Fatalf("unexpected event for hidden file: %+v", event)
	case <-time.After(200 * time.Millisecond):
	}
}
