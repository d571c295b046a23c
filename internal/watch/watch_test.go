package watch

import (
	"context"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWatcherReportsWrites(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "model.hcl")
	require.NoError(t, os.WriteFile(path, []byte("a"), 0o600))

	w, err := New(path, WithDebounceDelay(20*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	changes := make(chan struct{}, 8)
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx, func() { changes <- struct{}{} })
	}()

	// Writes to other files are ignored.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.hcl"), []byte("x"), 0o600))

	require.NoError(t, os.WriteFile(path, []byte("b"), 0o600))
	select {
	case <-changes:
	case <-time.After(5 * time.Second):
		t.Fatal("no change reported")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestWatcherDebounces(t *testing.T) {
	path := filepath.Join(t.TempDir(), "model.hcl")
	require.NoError(t, os.WriteFile(path, nil, 0o600))

	w, err := New(path, WithDebounceDelay(200*time.Millisecond))
	require.NoError(t, err)
	defer w.Close()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()

	var calls atomic.Int32
	go func() {
		for i := 0; i < 5; i++ {
			_ = os.WriteFile(path, []byte{byte(i)}, 0o600)
			time.Sleep(10 * time.Millisecond)
		}
	}()
	require.NoError(t, w.Run(ctx, func() { calls.Add(1) }))
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewMissingDirectory(t *testing.T) {
	_, err := New(filepath.Join(t.TempDir(), "gone", "model.hcl"))
	assert.Error(t, err)
}
