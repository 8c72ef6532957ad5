//go:build windows

package platform

import (
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"syscall"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	attrReadonly           = 0x00000001
	attrHidden             = 0x00000002
	attrSystem             = 0x00000004
	attrDirectory          = 0x00000010
	attrArchive            = 0x00000020
	attrNormal             = 0x00000080
	attrSparse             = 0x00000200
	attrReparsePoint       = 0x00000400
	attrCompressed         = 0x00000800
	attrOffline            = 0x00001000
	attrRecallOnOpen       = 0x00040000
	attrPinned             = 0x00080000
	attrUnpinned           = 0x00100000
	attrRecallOnDataAccess = 0x00400000
)

// Attribute bits that mean the enumeration-supplied size cannot be
// trusted: sparse, compressed, reparse, and the cloud-placeholder
// family (OneDrive and friends sometimes mask the sparse bit, so all
// of them are checked).
const untrustedAttrs = attrSparse | attrCompressed | attrReparsePoint |
	attrOffline | attrRecallOnOpen | attrPinned | attrUnpinned | attrRecallOnDataAccess

// stat on Windows avoids opening a handle for plain files: the
// metadata already returned by directory enumeration is orders of
// magnitude cheaper (an open can trigger Defender scanning the file).
// The price is no identity key for plain files, so hardlinked files
// count once per link. Directories and anything carrying special
// attribute bits go through the NTFS raw path or a limited-access
// handle, both of which do supply an identity.
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
		return handleStat(path, followSymlinks, Snapshot{})
	}

	snap := Snapshot{
		SizeBytes:      info.Size(),
		AllocatedBytes: clusterRound(path, info.Size()),
		ModTime:        info.ModTime().Unix(),
		IsDir:          info.IsDir(),
		IsFile:         info.Mode().IsRegular(),
		IsSymlink:      info.Mode()&fs.ModeSymlink != 0,
	}

	d, ok := info.Sys().(*syscall.Win32FileAttributeData)
	if !ok {
		return snap, true
	}

	snap.AccessTime = filetimeUnix(d.LastAccessTime.LowDateTime, d.LastAccessTime.HighDateTime)
	snap.ChangeTime = filetimeUnix(d.CreationTime.LowDateTime, d.CreationTime.HighDateTime)

	filtered := d.FileAttributes &^ (attrHidden | attrReadonly | attrSystem)
	plainFile := (filtered&attrArchive != 0 || d.FileAttributes == attrNormal) &&
		filtered&attrDirectory == 0 &&
		filtered&untrustedAttrs == 0
	if plainFile {
		return snap, true
	}

	if out, ok := mftStat(path, snap); ok {
		return out, true
	}

	return handleStat(path, followSymlinks, snap)
}

// handleStat opens path with FILE_READ_ATTRIBUTES only; requesting
// FILE_READ_DATA is what makes opens expensive, and none of the
// queried information needs it.
func handleStat(path string, followSymlinks bool, base Snapshot) (Snapshot, bool) {
	namep, err := windows.UTF16PtrFromString(path)
	if err != nil {
		return Snapshot{}, false
	}

	flags := uint32(windows.FILE_FLAG_BACKUP_SEMANTICS)
	if !followSymlinks {
		flags |= windows.FILE_FLAG_OPEN_REPARSE_POINT
	}
	h, err := windows.CreateFile(
		namep,
		windows.FILE_READ_ATTRIBUTES,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE|windows.FILE_SHARE_DELETE,
		nil,
		windows.OPEN_EXISTING,
		flags,
		0,
	)
	if err != nil {
		return Snapshot{}, false
	}
	defer windows.CloseHandle(h)

	var fi windows.ByHandleFileInformation
	if err := windows.GetFileInformationByHandle(h, &fi); err != nil {
		return Snapshot{}, false
	}

	snap := base
	snap.SizeBytes = int64(fi.FileSizeHigh)<<32 | int64(fi.FileSizeLow)
	snap.Identity = Identity{
		Device: uint64(fi.VolumeSerialNumber),
		Object: uint64(fi.FileIndexHigh)<<32 | uint64(fi.FileIndexLow),
	}
	snap.HasIdentity = true
	snap.ModTime = filetimeUnix(fi.LastWriteTime.LowDateTime, fi.LastWriteTime.HighDateTime)
	snap.AccessTime = filetimeUnix(fi.LastAccessTime.LowDateTime, fi.LastAccessTime.HighDateTime)
	snap.ChangeTime = filetimeUnix(fi.CreationTime.LowDateTime, fi.CreationTime.HighDateTime)
	snap.IsDir = fi.FileAttributes&attrDirectory != 0
	snap.IsSymlink = fi.FileAttributes&attrReparsePoint != 0
	snap.IsFile = !snap.IsDir && !snap.IsSymlink

	// Compressed and sparse files occupy what GetCompressedFileSize
	// reports, not their logical length.
	var hi uint32
	lo, err := windows.GetCompressedFileSize(namep, &hi)
	if err == nil {
		snap.AllocatedBytes = clusterRound(path, int64(hi)<<32|int64(lo))
	} else {
		snap.AllocatedBytes = clusterRound(path, snap.SizeBytes)
	}

	return snap, true
}

var (
	clusterMu    sync.Mutex
	clusterSizes = map[string]int64{}

	kernel32             = windows.NewLazySystemDLL("kernel32.dll")
	procGetDiskFreeSpace = kernel32.NewProc("GetDiskFreeSpaceW")
)

// clusterRound rounds size up to the allocation unit of the volume
// containing path. Unknown cluster sizes fall back to 4 KiB, the NTFS
// default.
func clusterRound(path string, size int64) int64 {
	vol := filepath.VolumeName(path)
	if vol == "" {
		return roundUp(size, 4096)
	}
	root := vol + `\`

	clusterMu.Lock()
	cluster, ok := clusterSizes[root]
	clusterMu.Unlock()

	if !ok {
		cluster = 4096
		if rootp, err := windows.UTF16PtrFromString(root); err == nil {
			var sectorsPerCluster, bytesPerSector, freeClusters, totalClusters uint32
			r, _, _ := procGetDiskFreeSpace.Call(
				uintptr(unsafe.Pointer(rootp)),
				uintptr(unsafe.Pointer(&sectorsPerCluster)),
				uintptr(unsafe.Pointer(&bytesPerSector)),
				uintptr(unsafe.Pointer(&freeClusters)),
				uintptr(unsafe.Pointer(&totalClusters)),
			)
			if r != 0 && sectorsPerCluster > 0 && bytesPerSector > 0 {
				cluster = int64(sectorsPerCluster) * int64(bytesPerSector)
			}
		}
		clusterMu.Lock()
		clusterSizes[root] = cluster
		clusterMu.Unlock()
	}

	return roundUp(size, cluster)
}

func roundUp(size, unit int64) int64 {
	if unit <= 0 || size <= 0 {
		return size
	}
	return (size + unit - 1) / unit * unit
}

// filetimeUnix converts a FILETIME (100ns units since 1601) split into
// its two halves to unix epoch seconds.
func filetimeUnix(lo, hi uint32) int64 {
	t := int64(hi)<<32 | int64(lo)
	t -= 116444736000000000
	return t / 10_000_000
}
