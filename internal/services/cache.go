package services

import (
	"sync"

	"dirscope/internal/domain"
	"dirscope/internal/tree"
)

// scanCache is the payload of the single process-wide cache slot: one
// completed scan's records plus the lookup indexes, tagged with the
// generation of the scan that produced it. Payloads are immutable
// after being stored; a new scan replaces the slot wholesale.
type scanCache struct {
	generation uint64
	scopeRoot  string
	records    []domain.Record
	pathIdx    tree.PathIndex
	childIdx   tree.ChildrenIndex
}

// cacheSlot guards the current payload with a single mutex; existence
// check and read happen in one critical section so a concurrent
// replace cannot slip between them. The slot also owns the generation
// counter: every write carries the generation it was minted for, and
// writes from superseded generations are rejected, so a slow scan or
// index build can never clobber a newer scan's cache.
type cacheSlot struct {
	mu      sync.Mutex
	latest  uint64
	current *scanCache
}

// nextGeneration invalidates the current payload and mints the
// generation for the scan about to start.
func (s *cacheSlot) nextGeneration() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.latest++
	s.current = nil
	return s.latest
}

// replace installs a finished scan's payload. Reports false, leaving
// the slot untouched, when the payload's generation has been
// superseded by a newer scan or a cache clear.
func (s *cacheSlot) replace(c *scanCache) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if c.generation != s.latest {
		return false
	}
	s.current = c
	return true
}

func (s *cacheSlot) clear() {
	s.mu.Lock()
	s.latest++
	s.current = nil
	s.mu.Unlock()
}

// view returns a consistent copy of the current payload. The copy is
// taken under the mutex so a concurrent replace or attachIndexes
// cannot be observed half-applied; the referenced records and maps
// are never mutated once stored.
func (s *cacheSlot) view() (scanCache, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.current == nil {
		return scanCache{}, false
	}
	return *s.current, true
}

// attachIndexes adds a finished background index build to the cached
// scan, unless the cache has moved on to a newer generation — a slow
// indexer from a superseded scan must never resurface. Reports
// whether the indexes were accepted.
func (s *cacheSlot) attachIndexes(generation uint64, pathIdx tree.PathIndex, childIdx tree.ChildrenIndex) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.current == nil || s.current.generation != generation {
		return false
	}
	s.current.pathIdx = pathIdx
	s.current.childIdx = childIdx
	return true
}
