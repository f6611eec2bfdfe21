package sweeper

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const root = "/data"

var now = time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

func writeFile(t *testing.T, fsys afero.Fs, name string, age time.Duration) string {
	t.Helper()
	path := filepath.Join(root, name)
	require.NoError(t, afero.WriteFile(fsys, path, []byte("x"), 0o644))
	mtime := now.Add(-age)
	require.NoError(t, fsys.Chtimes(path, mtime, mtime))
	return path
}

func newSweeper(fsys afero.Fs) *Sweeper {
	return New(fsys, root, 7*24*time.Hour, time.Hour, zap.NewNop(), WithClock(func() time.Time { return now }))
}

func TestSweep_DeletesOnlyExpiredFiles(t *testing.T) {
	fsys := afero.NewMemMapFs()
	require.NoError(t, fsys.MkdirAll(filepath.Join(root, ".work"), 0o755))

	old := writeFile(t, fsys, "old.csv", 8*24*time.Hour)
	fresh := writeFile(t, fsys, "fresh.csv", time.Hour)
	edge := writeFile(t, fsys, "edge.csv", 7*24*time.Hour)

	// Files in subdirectories are out of scope regardless of age.
	nested := filepath.Join(root, ".work", "upload-1")
	require.NoError(t, afero.WriteFile(fsys, nested, []byte("x"), 0o644))
	ancient := now.Add(-365 * 24 * time.Hour)
	require.NoError(t, fsys.Chtimes(nested, ancient, ancient))

	stats := newSweeper(fsys).Sweep(context.Background())

	assert.Equal(t, Stats{Scanned: 3, Deleted: 1}, stats)
	assertExists(t, fsys, old, false)
	assertExists(t, fsys, fresh, true)
	assertExists(t, fsys, edge, true)
	assertExists(t, fsys, nested, true)
}

func TestSweep_MissingRoot(t *testing.T) {
	stats := newSweeper(afero.NewMemMapFs()).Sweep(context.Background())
	assert.Equal(t, Stats{}, stats)
}

func TestSweep_ContinuesAfterDeleteFailure(t *testing.T) {
	base := afero.NewMemMapFs()
	writeFile(t, base, "a.csv", 30*24*time.Hour)
	writeFile(t, base, "b.csv", 30*24*time.Hour)

	fsys := &failingRemoveFs{Fs: base, fail: filepath.Join(root, "a.csv")}
	stats := newSweeper(fsys).Sweep(context.Background())

	assert.Equal(t, 1, stats.Failed)
	assert.Equal(t, 1, stats.Deleted)
	assertExists(t, base, filepath.Join(root, "a.csv"), true)
	assertExists(t, base, filepath.Join(root, "b.csv"), false)
}

func TestSweep_StopsWhenCancelled(t *testing.T) {
	fsys := afero.NewMemMapFs()
	writeFile(t, fsys, "a.csv", 30*24*time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	stats := newSweeper(fsys).Sweep(ctx)
	assert.Zero(t, stats.Deleted)
}

func TestRun_SweepsOnStartAndStops(t *testing.T) {
	fsys := afero.NewMemMapFs()
	old := writeFile(t, fsys, "old.csv", 30*24*time.Hour)

	s := New(fsys, root, 7*24*time.Hour, time.Hour, zap.NewNop(),
		WithClock(func() time.Time { return now }),
		WithSweepOnStart(true),
	)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	require.Eventually(t, func() bool {
		ok, _ := afero.Exists(fsys, old)
		return !ok
	}, 2*time.Second, 10*time.Millisecond)

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancellation")
	}
}

func assertExists(t *testing.T, fsys afero.Fs, path string, want bool) {
	t.Helper()
	ok, err := afero.Exists(fsys, path)
	require.NoError(t, err)
	assert.Equal(t, want, ok, path)
}

type failingRemoveFs struct {
	afero.Fs
	fail string
}

func (f *failingRemoveFs) Remove(name string) error {
	if name == f.fail {
		return &os.PathError{Op: "remove", Path: name, Err: errors.New("permission denied")}
	}
	return f.Fs.Remove(name)
}
