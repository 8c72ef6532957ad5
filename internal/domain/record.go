package domain

// Record is the per-path aggregate produced by a scan. For a leaf it
// mirrors the path's own snapshot; for a directory it is the sum of
// the directory's own snapshot plus every descendant's contribution,
// written once after all children have been resolved.
type Record struct {
	Path           string
	SizeBytes      int64
	AllocatedBytes int64
	EntryCount     int64
	FileCount      int64
	DirCount       int64
	ModTime        int64
	Owner          string
	IsDir          bool
	IsSymlink      bool
}

// TreeNode is the UI-facing projection of one or more Records. It is
// rebuilt on every query and never stored.
type TreeNode struct {
	Path            string     `json:"path"`
	Name            string     `json:"name"`
	SizeBytes       int64      `json:"sizeBytes"`
	AllocatedBytes  int64      `json:"allocatedBytes"`
	EntryCount      int64      `json:"entryCount"`
	FileCount       int64      `json:"fileCount"`
	DirCount        int64      `json:"dirCount"`
	PercentOfParent float64    `json:"percentOfParent"`
	ModTime         int64      `json:"modTime"`
	Owner           string     `json:"owner,omitempty"`
	Children        []TreeNode `json:"children,omitempty"`
	IsDir           bool       `json:"isDir"`
	VirtualDir      bool       `json:"virtualDir"`
}
