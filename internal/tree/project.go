// Package tree projects the flat per-path record table into
// size-ranked, depth-limited tree views.
package tree

import (
	"path/filepath"
	"sort"
	"strconv"

	"dirscope/internal/domain"
)

// PathIndex maps a record's path to its position in the record list.
type PathIndex map[string]int

// ChildrenIndex maps a directory path to the positions of its
// immediate children, pre-sorted descending by size.
type ChildrenIndex map[string][]int

// Project builds a tree rooted at focus from the flat record list,
// expanding maxDepth levels below it (0 = the focus node alone).
// It reports ok=false when focus has no record. This is the slow
// full-rebuild path; queries against a finished scan should prefer
// ProjectIndexed with prebuilt indexes.
func Project(records []domain.Record, focus string, maxDepth int, groupLooseFiles bool) (domain.TreeNode, bool) {
	pathIdx, childIdx := adjacency(records)
	return project(records, pathIdx, childIdx, focus, maxDepth, groupLooseFiles)
}

// ProjectIndexed is Project against prebuilt indexes: child lists are
// already sorted, so building a node is pure index slicing.
func ProjectIndexed(records []domain.Record, pathIdx PathIndex, childIdx ChildrenIndex, focus string, maxDepth int, groupLooseFiles bool) (domain.TreeNode, bool) {
	return project(records, pathIdx, childIdx, focus, maxDepth, groupLooseFiles)
}

func project(records []domain.Record, pathIdx PathIndex, childIdx ChildrenIndex, focus string, maxDepth int, groupLooseFiles bool) (domain.TreeNode, bool) {
	i, ok := pathIdx[focus]
	if !ok {
		return domain.TreeNode{}, false
	}

	node := buildNode(records, childIdx, records[i], 0, maxDepth)
	if groupLooseFiles && maxDepth >= 1 {
		node = groupLoose(node, records[i])
	}

	return node, true
}

func buildNode(records []domain.Record, childIdx ChildrenIndex, rec domain.Record, depth, maxDepth int) domain.TreeNode {
	node := nodeFrom(rec)
	if depth >= maxDepth {
		return node
	}

	for _, ci := range childIdx[rec.Path] {
		child := buildNode(records, childIdx, records[ci], depth+1, maxDepth)
		child.PercentOfParent = percent(child.SizeBytes, rec.SizeBytes)
		node.Children = append(node.Children, child)
	}

	return node
}

// groupLoose replaces the focus node's direct non-directory children
// with one synthetic "[N Files]" node holding them. Display only: the
// records themselves are untouched.
func groupLoose(node domain.TreeNode, focus domain.Record) domain.TreeNode {
	var dirs, loose []domain.TreeNode
	for _, child := range node.Children {
		if child.DirCount > 0 {
			dirs = append(dirs, child)
		} else {
			loose = append(loose, child)
		}
	}
	if len(loose) == 0 {
		return node
	}

	virtual := domain.TreeNode{
		// The synthetic path only has to not collide with a real
		// sibling; "<name> Files" next to the focus directory is the
		// convention the front end relies on.
		Path:       filepath.Join(filepath.Dir(focus.Path), filepath.Base(focus.Path)+" Files"),
		Name:       "[" + strconv.Itoa(len(loose)) + " Files]",
		ModTime:    focus.ModTime,
		Owner:      focus.Owner,
		VirtualDir: true,
	}
	for _, f := range loose {
		virtual.SizeBytes += f.SizeBytes
		virtual.AllocatedBytes += f.AllocatedBytes
		virtual.EntryCount++
		virtual.FileCount += f.FileCount
	}
	for i := range loose {
		loose[i].PercentOfParent = percent(loose[i].SizeBytes, virtual.SizeBytes)
	}
	sortNodes(loose)
	virtual.Children = loose
	virtual.PercentOfParent = percent(virtual.SizeBytes, focus.SizeBytes)

	node.Children = append(dirs, virtual)
	sortNodes(node.Children)
	for i := range node.Children {
		node.Children[i].PercentOfParent = percent(node.Children[i].SizeBytes, focus.SizeBytes)
	}

	return node
}

func nodeFrom(rec domain.Record) domain.TreeNode {
	name := filepath.Base(rec.Path)
	if name == "" {
		name = rec.Path
	}
	return domain.TreeNode{
		Path:            rec.Path,
		Name:            name,
		SizeBytes:       rec.SizeBytes,
		AllocatedBytes:  rec.AllocatedBytes,
		EntryCount:      rec.EntryCount,
		FileCount:       rec.FileCount,
		DirCount:        rec.DirCount,
		PercentOfParent: 100,
		ModTime:         rec.ModTime,
		Owner:           rec.Owner,
		IsDir:           rec.IsDir,
	}
}

func percent(size, parentSize int64) float64 {
	if parentSize <= 0 {
		return 0
	}
	return float64(size) / float64(parentSize) * 100
}

// sortNodes orders projected siblings descending by size, ties broken
// by path so repeated projections are structurally identical.
func sortNodes(nodes []domain.TreeNode) {
	sort.Slice(nodes, func(i, j int) bool {
		if nodes[i].SizeBytes != nodes[j].SizeBytes {
			return nodes[i].SizeBytes > nodes[j].SizeBytes
		}
		return nodes[i].Path < nodes[j].Path
	})
}

// adjacency is the sequential index build used by the full-rebuild
// projector; same shape as BuildIndexes but unscoped.
func adjacency(records []domain.Record) (PathIndex, ChildrenIndex) {
	pathIdx := make(PathIndex, len(records))
	for i, rec := range records {
		pathIdx[rec.Path] = i
	}

	childIdx := make(ChildrenIndex)
	for i, rec := range records {
		parent := filepath.Dir(rec.Path)
		if parent == rec.Path {
			continue
		}
		if _, ok := pathIdx[parent]; !ok {
			continue
		}
		childIdx[parent] = append(childIdx[parent], i)
	}
	for parent := range childIdx {
		sortIndices(records, childIdx[parent])
	}

	return pathIdx, childIdx
}

func sortIndices(records []domain.Record, indices []int) {
	sort.Slice(indices, func(a, b int) bool {
		ra, rb := records[indices[a]], records[indices[b]]
		if ra.SizeBytes != rb.SizeBytes {
			return ra.SizeBytes > rb.SizeBytes
		}
		return ra.Path < rb.Path
	})
}
