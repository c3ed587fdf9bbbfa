package watch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	paths []string
	mu    sync.Mutex
}

func (r *recorder) handle(_ context.Context, path string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths = append(r.paths, filepath.Base(path))
	return nil
}

func (r *recorder) seen() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.paths...)
}

func startWatch(t *testing.T, cfg Config, handler Handler) {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- Watch(ctx, cfg, handler) }()
	t.Cleanup(func() {
		cancel()
		select {
		case err := <-done:
			assert.NoError(t, err)
		case <-time.After(5 * time.Second):
			t.Error("watch did not stop")
		}
	})
	// Give the watcher time to register the directory.
	time.Sleep(100 * time.Millisecond)
}

func TestWatch_HandlesSettledPDFsOnce(t *testing.T) {
	dir := t.TempDir()
	rec := &recorder{}
	startWatch(t, Config{Dir: dir, Debounce: 100 * time.Millisecond}, rec.handle)

	path := filepath.Join(dir, "report.pdf")
	require.NoError(t, os.WriteFile(path, []byte("%PDF-1.7"), 0o600))
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0o600)
	require.NoError(t, err)
	_, err = f.WriteString("\n%%EOF")
	require.NoError(t, err)
	require.NoError(t, f.Close())

	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("skip"), 0o600))

	assert.Eventually(t, func() bool {
		return len(rec.seen()) == 1
	}, 3*time.Second, 20*time.Millisecond)

	time.Sleep(300 * time.Millisecond)
	assert.Equal(t, []string{"report.pdf"}, rec.seen())
}

func TestWatch_InitialScan(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.PDF"), []byte("%PDF"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "existing.txt"), []byte("x"), 0o600))

	rec := &recorder{}
	startWatch(t, Config{Dir: dir, Debounce: 50 * time.Millisecond, InitialScan: true}, rec.handle)

	assert.Eventually(t, func() bool {
		return len(rec.seen()) == 1
	}, 3*time.Second, 20*time.Millisecond)
	assert.Equal(t, []string{"existing.PDF"}, rec.seen())
}

func TestWatch_HandlerErrorDoesNotStop(t *testing.T) {
	dir := t.TempDir()
	var mu sync.Mutex
	calls := 0
	handler := func(context.Context, string) error {
		mu.Lock()
		defer mu.Unlock()
		calls++
		return errors.New("upload failed")
	}
	startWatch(t, Config{Dir: dir, Debounce: 50 * time.Millisecond}, handler)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "a.pdf"), []byte("%PDF"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "b.pdf"), []byte("%PDF"), 0o600))

	assert.Eventually(t, func() bool {
		mu.Lock()
		defer mu.Unlock()
		return calls == 2
	}, 3*time.Second, 20*time.Millisecond)
}

func TestWatch_InvalidConfig(t *testing.T) {
	ctx := context.Background()
	noop := func(context.Context, string) error { return nil }

	assert.Error(t, Watch(ctx, Config{}, noop))
	assert.Error(t, Watch(ctx, Config{Dir: t.TempDir()}, nil))
	assert.Error(t, Watch(ctx, Config{Dir: filepath.Join(t.TempDir(), "missing")}, noop))

	file := filepath.Join(t.TempDir(), "file.pdf")
	require.NoError(t, os.WriteFile(file, []byte("x"), 0o600))
	assert.Error(t, Watch(ctx, Config{Dir: file}, noop))
}

func TestIsPDF(t *testing.T) {
	tests := []struct {
		path string
		want bool
	}{
		{path: "a.pdf", want: true},
		{path: "/tmp/B.PDF", want: true},
		{path: "a.pdf.tmp", want: false},
		{path: "pdf", want: false},
	}
	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			assert.Equal(t, tt.want, IsPDF(tt.path))
		})
	}
}
