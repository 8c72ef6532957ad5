// Package platform turns paths into uniform metadata snapshots and
// answers volume-space queries, hiding OS differences from the rest
// of the engine.
package platform

// Identity is a stable, unique-per-object token for a filesystem
// object on its volume: device+inode on unix, volume serial+file
// index (or a synthetic MFT record id) on Windows. It exists only for
// cycle and hardlink detection and is never displayed.
type Identity struct {
	Device uint64
	Object uint64
}

// Snapshot is the point-in-time metadata for one path. Immutable once
// produced; the walker folds it into an aggregate record and drops it.
type Snapshot struct {
	SizeBytes      int64
	AllocatedBytes int64
	Identity       Identity
	HasIdentity    bool
	ModTime        int64
	AccessTime     int64
	ChangeTime     int64
	IsDir          bool
	IsFile         bool
	IsSymlink      bool
	Owner          string
}

// Stat snapshots path. It reports ok=false instead of an error for
// permission failures, races with deletion, or otherwise unreadable
// metadata; callers skip such paths and keep going.
func Stat(path string, followSymlinks bool) (Snapshot, bool) {
	return stat(path, followSymlinks)
}
