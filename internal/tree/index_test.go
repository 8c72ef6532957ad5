package tree

import (
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"dirscope/internal/domain"
)

// wideRecords builds a root with fan directories of files each, big
// enough to spread across index workers.
func wideRecords(fan, filesPer int) ([]domain.Record, string) {
	root := filepath.FromSlash("/data")
	records := []domain.Record{{Path: root, SizeBytes: 0, DirCount: 1, IsDir: true}}
	for d := 0; d < fan; d++ {
		dir := filepath.Join(root, fmt.Sprintf("d%03d", d))
		dirRec := domain.Record{Path: dir, DirCount: 1, EntryCount: 1, IsDir: true}
		start := len(records)
		records = append(records, dirRec)
		for f := 0; f < filesPer; f++ {
			size := int64((d*filesPer + f) % 17)
			records = append(records, domain.Record{
				Path:      filepath.Join(dir, fmt.Sprintf("f%03d", f)),
				SizeBytes: size,
				FileCount: 1, EntryCount: 1,
			})
			records[start].SizeBytes += size
			records[start].EntryCount++
			records[start].FileCount++
		}
		records[0].SizeBytes += records[start].SizeBytes
	}
	return records, root
}

func TestBuildIndexes_MatchesSequentialProjection(t *testing.T) {
	records, root := wideRecords(20, 30)

	pathIdx, childIdx := BuildIndexes(records, root)

	for _, focus := range []string{root, filepath.Join(root, "d007")} {
		slow, ok := Project(records, focus, 2, true)
		require.True(t, ok)
		fast, ok := ProjectIndexed(records, pathIdx, childIdx, focus, 2, true)
		require.True(t, ok)
		assert.Equal(t, slow, fast)
	}
}

func TestBuildIndexes_ChildListsSortedBySize(t *testing.T) {
	records, root := wideRecords(5, 10)

	_, childIdx := BuildIndexes(records, root)
	for parent, indices := range childIdx {
		for i := 1; i < len(indices); i++ {
			prev, cur := records[indices[i-1]], records[indices[i]]
			assert.GreaterOrEqual(t, prev.SizeBytes, cur.SizeBytes, "unsorted children of %s", parent)
		}
	}
}

func TestBuildIndexes_RestrictsToScope(t *testing.T) {
	records, root := wideRecords(3, 2)
	outside := filepath.FromSlash("/elsewhere")
	records = append(records,
		domain.Record{Path: outside, DirCount: 1, IsDir: true},
		domain.Record{Path: filepath.Join(outside, "stray"), SizeBytes: 9, FileCount: 1, EntryCount: 1},
	)

	pathIdx, childIdx := BuildIndexes(records, root)

	// Every record is addressable, but only in-scope parents carry
	// child lists.
	assert.Contains(t, pathIdx, outside)
	assert.NotContains(t, childIdx, outside)
	assert.Contains(t, childIdx, root)
}

func TestBuildIndexes_DropsPhantomParents(t *testing.T) {
	root := filepath.FromSlash("/p")
	records := []domain.Record{
		{Path: root, DirCount: 1, IsDir: true},
		// Parent /p/ghost has no record of its own.
		{Path: filepath.Join(root, "ghost", "orphan"), SizeBytes: 1, FileCount: 1, EntryCount: 1},
	}

	_, childIdx := BuildIndexes(records, root)
	assert.NotContains(t, childIdx, filepath.Join(root, "ghost"))
}

func TestBuildIndexes_EmptyRecords(t *testing.T) {
	pathIdx, childIdx := BuildIndexes(nil, filepath.FromSlash("/x"))
	assert.Empty(t, pathIdx)
	assert.Empty(t, childIdx)
}
