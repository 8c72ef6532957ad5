// Package report produces summary reports over a directory tree,
// independently of the scan cache.
package report

import (
	"context"
	"io/fs"
	"sort"
	"sync"

	"github.com/charlievieth/fastwalk"

	"dirscope/internal/logging"
)

// FileStat is one entry of a largest-files report.
type FileStat struct {
	Path string `json:"path"`
	Size int64  `json:"size"`
}

// collector keeps the running top-N under a mutex; fastwalk invokes
// the walk callback from multiple goroutines.
type collector struct {
	mu    sync.Mutex
	limit int
	files []FileStat
}

func (c *collector) add(path string, size int64) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if len(c.files) == c.limit && size <= c.files[len(c.files)-1].Size {
		return
	}
	c.files = append(c.files, FileStat{Path: path, Size: size})
	sort.Slice(c.files, func(i, j int) bool {
		if c.files[i].Size != c.files[j].Size {
			return c.files[i].Size > c.files[j].Size
		}
		return c.files[i].Path < c.files[j].Path
	})
	if len(c.files) > c.limit {
		c.files = c.files[:c.limit]
	}
}

// TopFiles walks root in parallel and returns the n largest regular
// files, largest first. Unreadable paths are skipped; symlinks are not
// followed.
func TopFiles(ctx context.Context, root string, n int) ([]FileStat, error) {
	if n <= 0 {
		return nil, nil
	}

	log := logging.L("report")
	coll := &collector{limit: n}

	conf := &fastwalk.Config{Follow: false}
	err := fastwalk.Walk(conf, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			log.Debug("path skipped", "path", path, "error", err)
			return nil
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}
		if !d.Type().IsRegular() {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			log.Debug("stat skipped", "path", path, "error", err)
			return nil
		}
		coll.add(path, info.Size())
		return nil
	})
	if err != nil {
		return nil, err
	}
	return coll.files, nil
}
