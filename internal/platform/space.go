package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/shirou/gopsutil/v3/disk"
)

// SpaceInfo reports total/available/used bytes for the mounted volume
// containing path. Files resolve to their parent directory first.
func SpaceInfo(path string) (total, available, used uint64, err error) {
	dir, err := containingDir(path)
	if err != nil {
		return 0, 0, 0, err
	}

	usage, err := disk.Usage(mountPointFor(dir))
	if err != nil {
		return 0, 0, 0, fmt.Errorf("querying volume usage for %q: %w", dir, err)
	}

	return usage.Total, usage.Free, usage.Used, nil
}

// FreeSpace reports the available bytes on the volume containing path.
func FreeSpace(path string) (uint64, error) {
	_, available, _, err := SpaceInfo(path)
	return available, err
}

func containingDir(path string) (string, error) {
	resolved, err := filepath.EvalSymlinks(path)
	if err != nil {
		return "", fmt.Errorf("resolving %q: %w", path, err)
	}
	abs, err := filepath.Abs(resolved)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if !info.IsDir() {
		abs = filepath.Dir(abs)
	}
	return abs, nil
}

// mountPointFor matches dir to the mounted partition with the longest
// mount-point prefix. When enumeration fails the dir itself is
// returned; statfs on any path inside the volume answers the same.
func mountPointFor(dir string) string {
	partitions, err := disk.Partitions(false)
	if err != nil {
		return dir
	}

	best := ""
	for _, part := range partitions {
		mp := part.Mountpoint
		if mp == "" {
			continue
		}
		if dir == mp || strings.HasPrefix(dir, strings.TrimSuffix(mp, string(filepath.Separator))+string(filepath.Separator)) {
			if len(mp) > len(best) {
				best = mp
			}
		}
	}
	if best == "" {
		return dir
	}

	return best
}
