//go:build linux || darwin

package platform

import (
	"io/fs"
	"os"
	"os/user"
	"strconv"
	"sync"
	"syscall"
)

// st_blocks counts 512-byte units regardless of the filesystem's real
// block size.
const blockSize = 512

func stat(path string, followSymlinks bool) (Snapshot, bool) {
	var (
		info os.FileInfo
		err  error
	)
	if followSymlinks {
		info, err = os.Stat(path)
	} else {
		info, err = os.Lstat(path)
	}
	if err != nil {
		return Snapshot{}, false
	}

	snap := Snapshot{
		SizeBytes:      info.Size(),
		AllocatedBytes: info.Size(),
		ModTime:        info.ModTime().Unix(),
		IsDir:          info.IsDir(),
		IsFile:         info.Mode().IsRegular(),
		IsSymlink:      info.Mode()&fs.ModeSymlink != 0,
	}

	st, ok := info.Sys().(*syscall.Stat_t)
	if !ok {
		return snap, true
	}

	snap.AllocatedBytes = st.Blocks * blockSize
	snap.Identity = Identity{Device: uint64(st.Dev), Object: st.Ino}
	snap.HasIdentity = true
	snap.ModTime, snap.AccessTime, snap.ChangeTime = statTimes(st)
	snap.Owner = ownerName(st.Uid)

	return snap, true
}

var ownerCache sync.Map // uid -> name

// ownerName resolves a uid to a user name, caching lookups: os/user
// hits /etc/passwd (or worse, NSS) and a scan asks millions of times
// for a handful of distinct uids.
func ownerName(uid uint32) string {
	if name, ok := ownerCache.Load(uid); ok {
		return name.(string)
	}

	name := ""
	if u, err := user.LookupId(strconv.FormatUint(uint64(uid), 10)); err == nil {
		name = u.Username
	}
	ownerCache.Store(uid, name)

	return name
}
