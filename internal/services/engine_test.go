package services

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirscope/internal/scanner"
)

func buildFixture(t *testing.T) string {
	t.Helper()
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "sub"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "a.txt"), make([]byte, 10), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(root, "sub", "b.txt"), make([]byte, 20), 0o644))
	return root
}

// drainScan reads events until the completion marker and returns the
// result event, if any.
func drainScan(t *testing.T, engine *Engine) *ScanResult {
	t.Helper()
	var result *ScanResult
	for {
		select {
		case event := <-engine.Events():
			switch event.Kind {
			case EventScanResult:
				result = event.Result
			case EventScanComplete:
				return result
			}
		case <-time.After(10 * time.Second):
			t.Fatal("no completion event")
		}
	}
}

func TestEngine_ScanEmitsResultThenComplete(t *testing.T) {
	root := buildFixture(t)
	engine := NewEngine(scanner.Options{})
	defer engine.Close()

	require.NoError(t, engine.ScanDirectory(context.Background(), root))
	result := drainScan(t, engine)

	require.NotNil(t, result)
	assert.Equal(t, cleanPath(root), result.RootPath)
	assert.True(t, result.Tree.IsDir)
	assert.GreaterOrEqual(t, result.Tree.SizeBytes, int64(30))
	assert.EqualValues(t, 2, result.Tree.FileCount)
	require.NotEmpty(t, result.Tree.Children)
}

func TestEngine_ScanFailureStillCompletes(t *testing.T) {
	engine := NewEngine(scanner.Options{})
	defer engine.Close()

	err := engine.ScanDirectory(context.Background(), filepath.Join(t.TempDir(), "missing"))
	require.Error(t, err)

	result := drainScan(t, engine)
	assert.Nil(t, result)

	_, qerr := engine.DirectoryChildren("/")
	assert.ErrorIs(t, qerr, ErrNoScanData)
}

func TestEngine_CancelledScanNotCached(t *testing.T) {
	root := buildFixture(t)
	engine := NewEngine(scanner.Options{})
	defer engine.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := engine.ScanDirectory(ctx, root)
	require.ErrorIs(t, err, context.Canceled)

	result := drainScan(t, engine)
	assert.Nil(t, result)

	_, qerr := engine.DirectoryChildren(root)
	assert.ErrorIs(t, qerr, ErrNoScanData)
}

func TestEngine_DirectoryChildrenBeforeScan(t *testing.T) {
	engine := NewEngine(scanner.Options{})
	defer engine.Close()

	_, err := engine.DirectoryChildren(t.TempDir())
	assert.ErrorIs(t, err, ErrNoScanData)
}

func TestEngine_DirectoryChildrenQueries(t *testing.T) {
	root := buildFixture(t)
	engine := NewEngine(scanner.Options{})
	defer engine.Close()

	require.NoError(t, engine.ScanDirectory(context.Background(), root))
	result := drainScan(t, engine)
	require.NotNil(t, result)

	sub, err := engine.DirectoryChildren(filepath.Join(root, "sub"))
	require.NoError(t, err)
	assert.EqualValues(t, 1, sub.FileCount)
	require.Len(t, sub.Children, 1)
	assert.True(t, sub.Children[0].VirtualDir)

	// Same answer after the background indexes land.
	engine.Close()
	indexed, err := engine.DirectoryChildren(filepath.Join(root, "sub"))
	require.NoError(t, err)
	assert.Equal(t, sub, indexed)
}

func TestEngine_DirectoryChildrenOutsideScope(t *testing.T) {
	root := buildFixture(t)
	engine := NewEngine(scanner.Options{})
	defer engine.Close()

	require.NoError(t, engine.ScanDirectory(context.Background(), root))
	drainScan(t, engine)

	_, err := engine.DirectoryChildren(filepath.Dir(cleanPath(root)))
	assert.ErrorIs(t, err, ErrOutsideScope)

	_, err = engine.DirectoryChildren(t.TempDir())
	assert.ErrorIs(t, err, ErrOutsideScope)
}

func TestEngine_ClearCacheDropsScan(t *testing.T) {
	root := buildFixture(t)
	engine := NewEngine(scanner.Options{})
	defer engine.Close()

	require.NoError(t, engine.ScanDirectory(context.Background(), root))
	drainScan(t, engine)

	engine.ClearCache()
	_, err := engine.DirectoryChildren(root)
	assert.ErrorIs(t, err, ErrNoScanData)
}

func TestEngine_RescanReplacesCache(t *testing.T) {
	first := buildFixture(t)
	second := buildFixture(t)
	engine := NewEngine(scanner.Options{})
	defer engine.Close()

	require.NoError(t, engine.ScanDirectory(context.Background(), first))
	drainScan(t, engine)
	require.NoError(t, engine.ScanDirectory(context.Background(), second))
	drainScan(t, engine)

	_, err := engine.DirectoryChildren(first)
	assert.ErrorIs(t, err, ErrOutsideScope)
	_, err = engine.DirectoryChildren(second)
	require.NoError(t, err)
}

func TestEngine_SpaceInfo(t *testing.T) {
	engine := NewEngine(scanner.Options{})
	defer engine.Close()

	info, err := engine.SpaceInfo(t.TempDir())
	require.NoError(t, err)
	assert.Greater(t, info.Total, uint64(0))
	assert.LessOrEqual(t, info.Used, info.Total)

	// Two independent statfs calls on a live volume drift; only sanity
	// is asserted.
	free, err := engine.FreeSpace(t.TempDir())
	require.NoError(t, err)
	assert.Greater(t, free, uint64(0))
	assert.LessOrEqual(t, free, info.Total)
}
