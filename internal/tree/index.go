package tree

import (
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"dirscope/internal/domain"
)

// BuildIndexes builds the path and children lookup tables over a
// finished scan's records, restricted to paths at or below scopeRoot.
// Child lists come back pre-sorted descending by size so later
// projections never sort. Runs after the first tree has already been
// delivered, so it trades latency for parallel throughput: records
// are partitioned across workers and the partial maps merged.
func BuildIndexes(records []domain.Record, scopeRoot string) (PathIndex, ChildrenIndex) {
	workers := runtime.NumCPU()
	if workers > len(records) {
		workers = 1
	}

	type partial struct {
		paths    PathIndex
		children ChildrenIndex
	}
	partials := make([]partial, workers)
	chunk := (len(records) + workers - 1) / workers

	scopePrefix := strings.TrimSuffix(scopeRoot, string(filepath.Separator)) + string(filepath.Separator)

	var g errgroup.Group
	for w := 0; w < workers; w++ {
		w := w
		g.Go(func() error {
			lo := w * chunk
			hi := lo + chunk
			if hi > len(records) {
				hi = len(records)
			}
			p := partial{paths: make(PathIndex, hi-lo), children: make(ChildrenIndex)}
			for i := lo; i < hi; i++ {
				rec := records[i]
				p.paths[rec.Path] = i

				parent := filepath.Dir(rec.Path)
				if parent == rec.Path {
					continue
				}
				if parent != scopeRoot && !strings.HasPrefix(parent, scopePrefix) {
					continue
				}
				p.children[parent] = append(p.children[parent], i)
			}
			partials[w] = p
			return nil
		})
	}
	g.Wait()

	pathIdx := make(PathIndex, len(records))
	childIdx := make(ChildrenIndex)
	for _, p := range partials {
		for path, i := range p.paths {
			pathIdx[path] = i
		}
		for parent, indices := range p.children {
			childIdx[parent] = append(childIdx[parent], indices...)
		}
	}

	// Drop phantom parents that have no record of their own (paths
	// outside the scan that happen to share a prefix).
	for parent := range childIdx {
		if _, ok := pathIdx[parent]; !ok {
			delete(childIdx, parent)
		}
	}

	parents := make([]string, 0, len(childIdx))
	for parent := range childIdx {
		parents = append(parents, parent)
	}
	var wg sync.WaitGroup
	sortChunk := (len(parents) + workers - 1) / workers
	for w := 0; w < workers; w++ {
		lo := w * sortChunk
		if lo >= len(parents) {
			break
		}
		hi := lo + sortChunk
		if hi > len(parents) {
			hi = len(parents)
		}
		wg.Add(1)
		go func(keys []string) {
			defer wg.Done()
			for _, parent := range keys {
				sortIndices(records, childIdx[parent])
			}
		}(parents[lo:hi])
	}
	wg.Wait()

	return pathIdx, childIdx
}
