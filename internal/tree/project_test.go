package tree

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirscope/internal/domain"
)

// fixtureRecords models:
//
//	/r            (dir, 100)
//	/r/a          (dir, 60)
//	/r/a/deep.bin (file, 55)
//	/r/b          (dir, 25)
//	/r/x.txt      (file, 7)
//	/r/y.txt      (file, 3)
func fixtureRecords() ([]domain.Record, string) {
	r := filepath.FromSlash("/r")
	join := func(parts ...string) string {
		return filepath.Join(append([]string{r}, parts...)...)
	}
	return []domain.Record{
		{Path: r, SizeBytes: 100, EntryCount: 6, FileCount: 3, DirCount: 3, IsDir: true},
		{Path: join("a"), SizeBytes: 60, EntryCount: 2, FileCount: 1, DirCount: 1, IsDir: true},
		{Path: join("a", "deep.bin"), SizeBytes: 55, EntryCount: 1, FileCount: 1},
		{Path: join("b"), SizeBytes: 25, EntryCount: 1, DirCount: 1, IsDir: true},
		{Path: join("x.txt"), SizeBytes: 7, EntryCount: 1, FileCount: 1},
		{Path: join("y.txt"), SizeBytes: 3, EntryCount: 1, FileCount: 1},
	}, r
}

func childNames(node domain.TreeNode) []string {
	names := make([]string, 0, len(node.Children))
	for _, child := range node.Children {
		names = append(names, child.Name)
	}
	return names
}

func TestProject_SortsBySizeDescending(t *testing.T) {
	records, root := fixtureRecords()

	node, ok := Project(records, root, 1, false)
	require.True(t, ok)
	assert.Equal(t, []string{"a", "b", "x.txt", "y.txt"}, childNames(node))
}

func TestProject_CarriesDirectoryFlag(t *testing.T) {
	records, root := fixtureRecords()

	node, ok := Project(records, root, 1, false)
	require.True(t, ok)
	assert.True(t, node.IsDir)
	assert.True(t, node.Children[0].IsDir, "a")
	assert.True(t, node.Children[1].IsDir, "b")
	assert.False(t, node.Children[2].IsDir, "x.txt")
	assert.False(t, node.Children[3].IsDir, "y.txt")
}

func TestProject_GroupsLooseFiles(t *testing.T) {
	records, root := fixtureRecords()

	node, ok := Project(records, root, 1, true)
	require.True(t, ok)
	require.Equal(t, []string{"a", "b", "[2 Files]"}, childNames(node))

	virtual := node.Children[2]
	assert.True(t, virtual.VirtualDir)
	assert.EqualValues(t, 10, virtual.SizeBytes)
	assert.EqualValues(t, 2, virtual.FileCount)
	assert.EqualValues(t, 2, virtual.EntryCount)
	assert.InDelta(t, 10.0, virtual.PercentOfParent, 0.001)

	// Grouped members keep percentages relative to the virtual node.
	require.Equal(t, []string{"x.txt", "y.txt"}, childNames(virtual))
	assert.InDelta(t, 70.0, virtual.Children[0].PercentOfParent, 0.001)
	assert.InDelta(t, 30.0, virtual.Children[1].PercentOfParent, 0.001)
}

func TestProject_NoVirtualNodeWithoutLooseFiles(t *testing.T) {
	records, root := fixtureRecords()

	node, ok := Project(records, filepath.Join(root, "a"), 1, true)
	require.True(t, ok)
	// a's only child is a file, so it all collapses into one group.
	require.Len(t, node.Children, 1)
	assert.True(t, node.Children[0].VirtualDir)

	node, ok = Project(records, filepath.Join(root, "b"), 1, true)
	require.True(t, ok)
	assert.Empty(t, node.Children)
}

func TestProject_DepthZeroIsFocusAlone(t *testing.T) {
	records, root := fixtureRecords()

	node, ok := Project(records, root, 0, true)
	require.True(t, ok)
	assert.Empty(t, node.Children)
	assert.EqualValues(t, 100, node.SizeBytes)
}

func TestProject_UnknownFocus(t *testing.T) {
	records, _ := fixtureRecords()

	_, ok := Project(records, filepath.FromSlash("/nope"), 1, true)
	assert.False(t, ok)
}

func TestProject_PercentOfParent(t *testing.T) {
	records, root := fixtureRecords()

	node, ok := Project(records, root, 2, false)
	require.True(t, ok)
	assert.InDelta(t, 100.0, node.PercentOfParent, 0.001)
	assert.InDelta(t, 60.0, node.Children[0].PercentOfParent, 0.001)
	assert.InDelta(t, 25.0, node.Children[1].PercentOfParent, 0.001)

	deep := node.Children[0].Children[0]
	assert.Equal(t, "deep.bin", deep.Name)
	assert.InDelta(t, 55.0/60.0*100, deep.PercentOfParent, 0.001)
}

func TestProject_ZeroSizeParent(t *testing.T) {
	r := filepath.FromSlash("/z")
	records := []domain.Record{
		{Path: r, SizeBytes: 0, DirCount: 1, IsDir: true},
		{Path: filepath.Join(r, "empty"), SizeBytes: 0, EntryCount: 1, FileCount: 1},
	}

	node, ok := Project(records, r, 1, false)
	require.True(t, ok)
	require.Len(t, node.Children, 1)
	assert.Zero(t, node.Children[0].PercentOfParent)
}

func TestProject_Deterministic(t *testing.T) {
	records, root := fixtureRecords()

	first, ok := Project(records, root, 2, true)
	require.True(t, ok)
	second, ok := Project(records, root, 2, true)
	require.True(t, ok)
	assert.Equal(t, first, second)
}
