package services

import (
	"context"

	"dirscope/internal/domain"
)

// DirectoryScanner starts scans and streams their events.
type DirectoryScanner interface {
	ScanDirectory(ctx context.Context, path string) error
	Events() <-chan Event
}

// ChildrenProvider answers subtree-expansion queries from the last
// completed scan.
type ChildrenProvider interface {
	DirectoryChildren(path string) (domain.TreeNode, error)
}

// CacheClearer drops the cached scan.
type CacheClearer interface {
	ClearCache()
}

// SpaceQuerier answers volume-space questions.
type SpaceQuerier interface {
	FreeSpace(path string) (uint64, error)
	SpaceInfo(path string) (SpaceInfo, error)
}
