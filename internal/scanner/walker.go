// Package scanner walks a directory tree concurrently and aggregates
// per-path size and count statistics bottom-up.
package scanner

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/semaphore"

	"dirscope/internal/domain"
	"dirscope/internal/logging"
	"dirscope/internal/platform"
)

// DefaultProgressInterval is the cadence of progress callbacks when
// the caller does not choose one.
const DefaultProgressInterval = 500 * time.Millisecond

// Options configures a scan.
type Options struct {
	// Workers bounds the number of concurrently walking goroutines
	// (0 = 2×CPU count; directory walking is I/O bound).
	Workers int
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
}

// Scan walks root and returns one aggregate record per distinct path,
// plus the canonicalized root. The only fatal failures are root
// resolution and context cancellation; every per-path failure is
// absorbed and the path simply contributes nothing. Order of the
// returned records is unspecified.
func Scan(ctx context.Context, root string, opts Options, progressHook func(entries, bytes int64)) ([]domain.Record, string, error) {
	canonical, err := filepath.EvalSymlinks(root)
	if err != nil {
		return nil, "", fmt.Errorf("resolving scan root %q: %w", root, err)
	}
	canonical, err = filepath.Abs(canonical)
	if err != nil {
		return nil, "", fmt.Errorf("resolving scan root %q: %w", root, err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU() * 2
	}

	w := &walker{
		ctx:        ctx,
		sem:        semaphore.NewWeighted(int64(workers)),
		table:      newRecordTable(),
		paths:      newPathSet(),
		identities: newIdentitySet(),
		log:        logging.L("scanner"),
	}

	reporterCtx, stopReporter := context.WithCancel(ctx)
	defer stopReporter()
	w.startReporter(reporterCtx, progressHook, opts.ProgressInterval)

	w.walk(canonical)

	// A cancelled walk leaves partial aggregates behind; they must
	// not be mistaken for a finished scan.
	if err := ctx.Err(); err != nil {
		return nil, "", err
	}

	records := w.table.list()
	w.log.Debug("scan finished", "root", canonical, "records", len(records))

	return records, canonical, nil
}

type walker struct {
	ctx        context.Context
	sem        *semaphore.Weighted
	table      *recordTable
	paths      *pathSet
	identities *identitySet
	entries    atomic.Int64
	bytes      atomic.Int64
	log        *slog.Logger
}

// walk visits one path and, for directories, fans out over the
// children before writing the rolled-up record. Child subtrees run on
// extra goroutines only while semaphore slots are free; otherwise
// recursion continues inline on the current goroutine, so the global
// goroutine count stays bounded without any blocking acquire that
// could deadlock the fork/join.
func (w *walker) walk(path string) {
	if w.ctx.Err() != nil {
		return
	}
	if !w.paths.insert(path) {
		return
	}

	snap, ok := platform.Stat(path, false)
	if !ok {
		return
	}
	if snap.HasIdentity && !w.identities.insert(snap.Identity) {
		// Same physical object reached through another path: a
		// hardlink alias or a cycle. The first path keeps the record.
		return
	}

	rec := leafRecord(path, snap)
	w.table.put(rec)
	w.entries.Add(1)
	w.bytes.Add(snap.SizeBytes)

	if !snap.IsDir || snap.IsSymlink {
		return
	}

	children := childPaths(path)
	if len(children) == 0 {
		return
	}

	var wg sync.WaitGroup
	for _, child := range children {
		if w.sem.TryAcquire(1) {
			wg.Add(1)
			go func(p string) {
				defer wg.Done()
				defer w.sem.Release(1)
				w.walk(p)
			}(child)
		} else {
			w.walk(child)
		}
	}
	wg.Wait()

	// All children are resolved past this point; this is the single
	// overwrite of the directory's key.
	for _, child := range children {
		crec, ok := w.table.get(child)
		if !ok {
			continue
		}
		rec.SizeBytes += crec.SizeBytes
		rec.AllocatedBytes += crec.AllocatedBytes
		if crec.IsSymlink {
			rec.EntryCount++
		} else {
			rec.EntryCount += crec.EntryCount
			rec.FileCount += crec.FileCount
			rec.DirCount += crec.DirCount
		}
	}
	w.table.put(rec)
}

// leafRecord is the provisional record for any path: for files and
// symlinks it is also final. Symlinks count as entries but never as
// files or directories.
func leafRecord(path string, snap platform.Snapshot) domain.Record {
	rec := domain.Record{
		Path:           path,
		SizeBytes:      snap.SizeBytes,
		AllocatedBytes: snap.AllocatedBytes,
		EntryCount:     1,
		ModTime:        snap.ModTime,
		Owner:          snap.Owner,
		IsDir:          snap.IsDir && !snap.IsSymlink,
		IsSymlink:      snap.IsSymlink,
	}
	switch {
	case snap.IsSymlink:
	case snap.IsDir:
		rec.DirCount = 1
	default:
		rec.FileCount = 1
	}
	return rec
}

// childPaths enumerates a directory's immediate children. A read
// failure yields an empty list, not an error: the directory still
// carries its own snapshot values.
func childPaths(dir string) []string {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil
	}
	children := make([]string, 0, len(entries))
	for _, entry := range entries {
		children = append(children, filepath.Join(dir, entry.Name()))
	}
	return children
}

// startReporter invokes hook on each tick until ctx is done.
func (w *walker) startReporter(ctx context.Context, hook func(int64, int64), interval time.Duration) {
	if hook == nil {
		return
	}
	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)
	go func() {
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				hook(w.entries.Load(), w.bytes.Load())
			case <-ctx.Done():
				return
			}
		}
	}()
}
