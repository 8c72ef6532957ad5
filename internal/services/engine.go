package services

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"dirscope/internal/domain"
	"dirscope/internal/logging"
	"dirscope/internal/platform"
	"dirscope/internal/scanner"
	"dirscope/internal/tree"
)

const (
	// resultDepth is the expansion depth of trees handed to the front
	// end; deeper levels are fetched on demand via DirectoryChildren.
	resultDepth = 1

	eventBuffer = 64
)

// Engine is the analytics facade: it runs scans, caches their results,
// answers subtree and volume-space queries, and streams events to a
// single consumer.
type Engine struct {
	opts  scanner.Options
	cache cacheSlot

	events chan Event
	bg     sync.WaitGroup
	log    *slog.Logger
}

var (
	_ DirectoryScanner = (*Engine)(nil)
	_ ChildrenProvider = (*Engine)(nil)
	_ CacheClearer     = (*Engine)(nil)
	_ SpaceQuerier     = (*Engine)(nil)
)

func NewEngine(opts scanner.Options) *Engine {
	return &Engine{
		opts:   opts,
		events: make(chan Event, eventBuffer),
		log:    logging.L("engine"),
	}
}

// Events returns the engine's event stream. Progress events are
// dropped when the consumer lags; result and completion events are
// always delivered.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// ScanDirectory scans path, caches the aggregated records and emits
// EventScanResult with a depth-limited tree. EventScanComplete follows
// unconditionally, carrying the error when the scan failed. A scan
// superseded by a newer one is discarded instead of cached: no result
// event, no index build. The cached indexes are built in the
// background after the result is delivered.
func (e *Engine) ScanDirectory(ctx context.Context, path string) error {
	gen := e.cache.nextGeneration()

	e.log.Info("scan starting", "path", path)
	start := time.Now()

	records, root, err := scanner.Scan(ctx, path, e.opts, e.progress)
	if err != nil {
		e.log.Warn("scan failed", "path", path, "error", err)
		e.events <- Event{Kind: EventScanComplete, Err: err}
		return err
	}

	elapsed := time.Since(start)
	node, ok := tree.Project(records, root, resultDepth, true)
	if !ok {
		// The root record always exists when Scan succeeds; treat a
		// miss as an empty scan rather than failing the whole request.
		node = domain.TreeNode{Path: root, IsDir: true}
	}

	cached := e.cache.replace(&scanCache{
		generation: gen,
		scopeRoot:  root,
		records:    records,
	})
	if !cached {
		e.log.Info("scan superseded, result discarded", "path", root)
		e.events <- Event{Kind: EventScanComplete}
		return nil
	}

	e.events <- Event{Kind: EventScanResult, Result: &ScanResult{
		RootPath:  root,
		Tree:      node,
		ElapsedMS: elapsed.Milliseconds(),
	}}
	e.events <- Event{Kind: EventScanComplete}
	e.log.Info("scan finished", "path", root, "records", len(records), "elapsed", elapsed)

	e.bg.Add(1)
	go func() {
		defer e.bg.Done()
		pathIdx, childIdx := tree.BuildIndexes(records, root)
		if e.cache.attachIndexes(gen, pathIdx, childIdx) {
			e.log.Debug("indexes attached", "paths", len(pathIdx))
		} else {
			e.log.Debug("indexes discarded, cache superseded")
		}
	}()
	return nil
}

// DirectoryChildren expands one directory of the cached scan to a
// depth-1 tree. Queries race with background indexing by design: until
// the indexes land, projection falls back to a full-record pass.
func (e *Engine) DirectoryChildren(path string) (domain.TreeNode, error) {
	cached, ok := e.cache.view()
	if !ok {
		return domain.TreeNode{}, ErrNoScanData
	}

	target := cleanPath(path)
	if !isWithin(cached.scopeRoot, target) {
		return domain.TreeNode{}, ErrOutsideScope
	}

	var node domain.TreeNode
	if cached.pathIdx != nil {
		node, ok = tree.ProjectIndexed(cached.records, cached.pathIdx, cached.childIdx, target, resultDepth, true)
	} else {
		node, ok = tree.Project(cached.records, target, resultDepth, true)
	}
	if !ok {
		return domain.TreeNode{}, ErrOutsideScope
	}
	return node, nil
}

// ClearCache drops the cached scan and invalidates any in-flight
// scan or background index build.
func (e *Engine) ClearCache() {
	e.cache.clear()
	e.log.Debug("cache cleared")
}

func (e *Engine) FreeSpace(path string) (uint64, error) {
	return platform.FreeSpace(path)
}

func (e *Engine) SpaceInfo(path string) (SpaceInfo, error) {
	total, available, used, err := platform.SpaceInfo(path)
	if err != nil {
		return SpaceInfo{}, err
	}
	return SpaceInfo{Total: total, Available: available, Used: used}, nil
}

// Close waits for background index builds to settle. The event channel
// stays open; the engine does not own its consumer's lifetime.
func (e *Engine) Close() {
	e.bg.Wait()
}

// progress forwards scanner counters as a non-blocking send; a slow
// consumer loses intermediate ticks, never the final result.
func (e *Engine) progress(entries, bytes int64) {
	select {
	case e.events <- Event{Kind: EventProgress, Entries: entries, Bytes: bytes}:
	default:
	}
}
