package scanner

import (
	"sync"

	"github.com/cespare/xxhash/v2"

	"dirscope/internal/domain"
	"dirscope/internal/platform"
)

// recordTable is the shared per-scan aggregate table. Every key is
// written at most twice: a provisional leaf record, then for
// directories one overwrite after all children have joined. The
// mutex only guards the map itself; the join barrier in the walker is
// what orders child writes before the parent's rollup.
type recordTable struct {
	mu      sync.Mutex
	records map[string]domain.Record
}

func newRecordTable() *recordTable {
	return &recordTable{records: make(map[string]domain.Record, 1024)}
}

func (t *recordTable) put(rec domain.Record) {
	t.mu.Lock()
	t.records[rec.Path] = rec
	t.mu.Unlock()
}

func (t *recordTable) get(path string) (domain.Record, bool) {
	t.mu.Lock()
	rec, ok := t.records[path]
	t.mu.Unlock()
	return rec, ok
}

func (t *recordTable) list() []domain.Record {
	t.mu.Lock()
	out := make([]domain.Record, 0, len(t.records))
	for _, rec := range t.records {
		out = append(out, rec)
	}
	t.mu.Unlock()
	return out
}

// pathSet tracks already-processed canonical paths. Keys are xxhash
// sums rather than retained strings; at millions of paths the strings
// are already held by the record table and duplicating them here
// roughly doubles peak memory.
type pathSet struct {
	mu   sync.Mutex
	seen map[uint64]struct{}
}

func newPathSet() *pathSet {
	return &pathSet{seen: make(map[uint64]struct{}, 1024)}
}

// insert reports whether path was new.
func (s *pathSet) insert(path string) bool {
	sum := xxhash.Sum64String(path)
	s.mu.Lock()
	_, dup := s.seen[sum]
	if !dup {
		s.seen[sum] = struct{}{}
	}
	s.mu.Unlock()
	return !dup
}

// identitySet tracks visited physical objects for hardlink and
// symlink-cycle detection.
type identitySet struct {
	mu   sync.Mutex
	seen map[platform.Identity]struct{}
}

func newIdentitySet() *identitySet {
	return &identitySet{seen: make(map[platform.Identity]struct{}, 1024)}
}

// insert reports whether id was new.
func (s *identitySet) insert(id platform.Identity) bool {
	s.mu.Lock()
	_, dup := s.seen[id]
	if !dup {
		s.seen[id] = struct{}{}
	}
	s.mu.Unlock()
	return !dup
}
