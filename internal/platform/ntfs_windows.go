//go:build windows

package platform

import (
	"encoding/binary"
	"errors"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf16"

	"golang.org/x/sys/windows"

	"dirscope/internal/logging"
)

// Raw NTFS fast path: instead of opening a handle per special file,
// read the volume's own structures once — boot sector for geometry,
// the $MFT's data runs for record locations, then every in-use FILE
// record for its name, parent and $DATA sizes — and answer lookups
// for relative paths out of the resulting in-memory table. Any
// failure at any stage simply disables this path for the volume; the
// caller falls back to the handle-based query and the scan never
// notices.

const (
	mftRecordRoot = 5 // the volume root directory is always record 5

	attrTypeStandardInfo = 0x10
	attrTypeFileName     = 0x30
	attrTypeData         = 0x80
	attrTypeEnd          = 0xFFFFFFFF

	fileNameNamespaceDOS = 2
)

type mftEntry struct {
	parent    uint64
	name      string
	isDir     bool
	size      int64
	allocated int64
	mtime     int64
}

type mftVolume struct {
	serial uint64
	byPath map[string]mftFinal
}

type mftFinal struct {
	record    uint64
	isDir     bool
	size      int64
	allocated int64
	mtime     int64
}

var (
	mftMu      sync.Mutex
	mftVolumes = map[string]*mftVolume{} // volume root -> parsed table, nil when the build failed
)

// mftStat serves a snapshot for path from the volume's MFT table.
// Symlinks are never served from here: reparse semantics need the
// handle path.
func mftStat(path string, base Snapshot) (Snapshot, bool) {
	if base.IsSymlink {
		return Snapshot{}, false
	}

	root := filepath.VolumeName(path)
	if root == "" {
		return Snapshot{}, false
	}

	vol := volumeTable(root)
	if vol == nil {
		return Snapshot{}, false
	}

	rel := strings.TrimPrefix(path, root)
	rel = strings.Trim(rel, `\`)
	entry, ok := vol.byPath[strings.ToLower(rel)]
	if !ok {
		return Snapshot{}, false
	}

	snap := base
	snap.SizeBytes = entry.size
	snap.AllocatedBytes = clusterRound(path, entry.allocated)
	snap.ModTime = entry.mtime
	snap.IsDir = entry.isDir
	snap.IsFile = !entry.isDir
	snap.IsSymlink = false
	snap.Identity = Identity{Device: vol.serial, Object: entry.record}
	snap.HasIdentity = true

	return snap, true
}

func volumeTable(root string) *mftVolume {
	mftMu.Lock()
	defer mftMu.Unlock()

	vol, tried := mftVolumes[root]
	if tried {
		return vol
	}

	vol, err := readVolume(root)
	if err != nil {
		logging.L("platform").Debug("ntfs fast path unavailable", "volume", root, "error", err)
		vol = nil
	}
	mftVolumes[root] = vol

	return vol
}

func readVolume(root string) (*mftVolume, error) {
	namep, err := windows.UTF16PtrFromString(`\\.\` + root)
	if err != nil {
		return nil, err
	}
	h, err := windows.CreateFile(
		namep,
		windows.GENERIC_READ,
		windows.FILE_SHARE_READ|windows.FILE_SHARE_WRITE,
		nil,
		windows.OPEN_EXISTING,
		0,
		0,
	)
	if err != nil {
		return nil, err
	}
	defer windows.CloseHandle(h)

	boot := make([]byte, 512)
	if err := readAt(h, 0, boot); err != nil {
		return nil, err
	}
	if string(boot[3:7]) != "NTFS" {
		return nil, errors.New("not an NTFS volume")
	}

	bytesPerSector := int64(binary.LittleEndian.Uint16(boot[11:13]))
	sectorsPerCluster := int64(boot[13])
	if bytesPerSector == 0 || sectorsPerCluster == 0 {
		return nil, errors.New("invalid boot sector geometry")
	}
	clusterSize := bytesPerSector * sectorsPerCluster
	mftCluster := int64(binary.LittleEndian.Uint64(boot[48:56]))

	// Per-record size: positive values count clusters, negative ones
	// are a power-of-two byte count.
	recordSize := clusterSize
	if v := int8(boot[64]); v < 0 {
		recordSize = 1 << uint(-v)
	} else {
		recordSize = int64(v) * clusterSize
	}
	if recordSize <= 0 || recordSize > 64*1024 {
		return nil, errors.New("implausible MFT record size")
	}
	serial := binary.LittleEndian.Uint64(boot[72:80])

	// Record 0 describes the MFT itself; its $DATA runs locate every
	// other record.
	first := make([]byte, recordSize)
	if err := readAt(h, mftCluster*clusterSize, first); err != nil {
		return nil, err
	}
	runs, err := mftDataRuns(first, clusterSize)
	if err != nil {
		return nil, err
	}

	entries := map[uint64]mftEntry{}
	var record uint64
	buf := make([]byte, 1024*1024)
	for _, run := range runs {
		if run.offset < 0 {
			// Sparse extent: no bytes to read, but the records it
			// would hold still occupy numbers.
			record += uint64(run.length / recordSize)
			continue
		}
		for off := run.offset; off < run.offset+run.length; {
			chunk := buf
			if remaining := run.offset + run.length - off; remaining < int64(len(chunk)) {
				chunk = chunk[:remaining]
			}
			if err := readAt(h, off, chunk); err != nil {
				return nil, err
			}
			for pos := int64(0); pos+recordSize <= int64(len(chunk)); pos += recordSize {
				if e, ok := parseRecord(chunk[pos:pos+recordSize], bytesPerSector); ok {
					entries[record] = e
				}
				record++
			}
			off += int64(len(chunk))
		}
	}

	vol := &mftVolume{serial: serial, byPath: make(map[string]mftFinal, len(entries))}
	paths := make(map[uint64]string, len(entries))
	for rec, e := range entries {
		p, ok := entryPath(rec, entries, paths)
		if !ok || p == "" {
			continue
		}
		vol.byPath[p] = mftFinal{
			record:    rec,
			isDir:     e.isDir,
			size:      e.size,
			allocated: e.allocated,
			mtime:     e.mtime,
		}
	}

	return vol, nil
}

type dataRun struct {
	offset int64 // byte offset on volume
	length int64 // byte length
}

// mftDataRuns parses record 0's non-resident $DATA runlist.
func mftDataRuns(record []byte, clusterSize int64) ([]dataRun, error) {
	if err := applyFixups(record, 512); err != nil {
		return nil, err
	}
	attrs, err := attributeOffsets(record)
	if err != nil {
		return nil, err
	}

	for _, off := range attrs {
		if binary.LittleEndian.Uint32(record[off:off+4]) != attrTypeData {
			continue
		}
		if record[off+8] == 0 {
			return nil, errors.New("$MFT data attribute is resident")
		}
		runOff := int(binary.LittleEndian.Uint16(record[off+32 : off+34]))
		return decodeRunList(record[off+runOff:], clusterSize)
	}

	return nil, errors.New("$MFT has no data attribute")
}

// decodeRunList expands an NTFS runlist into absolute byte extents.
// Cluster offsets in the list are deltas from the previous run and
// sign-extended.
func decodeRunList(raw []byte, clusterSize int64) ([]dataRun, error) {
	var runs []dataRun
	var cluster int64
	i := 0
	for i < len(raw) && raw[i] != 0 {
		header := raw[i]
		lenBytes := int(header & 0x0F)
		offBytes := int(header >> 4)
		i++
		if lenBytes == 0 || i+lenBytes+offBytes > len(raw) {
			return nil, errors.New("truncated runlist")
		}

		var length int64
		for j := lenBytes - 1; j >= 0; j-- {
			length = length<<8 | int64(raw[i+j])
		}
		i += lenBytes

		if offBytes == 0 {
			// Sparse run: holes hold no records worth reading, but
			// they still occupy record numbers.
			i += offBytes
			runs = append(runs, dataRun{offset: -1, length: length * clusterSize})
			continue
		}

		var delta int64
		for j := offBytes - 1; j >= 0; j-- {
			delta = delta<<8 | int64(raw[i+j])
		}
		// Sign-extend.
		if raw[i+offBytes-1]&0x80 != 0 {
			delta -= 1 << uint(8*offBytes)
		}
		i += offBytes

		cluster += delta
		runs = append(runs, dataRun{offset: cluster * clusterSize, length: length * clusterSize})
	}

	if len(runs) == 0 {
		return nil, errors.New("empty runlist")
	}

	return runs, nil
}

// parseRecord extracts name, parent, flags, sizes and mtime from one
// FILE record. Records that are unused, extensions, or reparse-backed
// are skipped.
func parseRecord(rec []byte, bytesPerSector int64) (mftEntry, bool) {
	if len(rec) < 48 || string(rec[0:4]) != "FILE" {
		return mftEntry{}, false
	}
	if err := applyFixups(rec, bytesPerSector); err != nil {
		return mftEntry{}, false
	}

	flags := binary.LittleEndian.Uint16(rec[22:24])
	const inUse, isDirectory = 0x1, 0x2
	if flags&inUse == 0 {
		return mftEntry{}, false
	}
	// Extension records belong to a base record that carries the name.
	if baseRef := binary.LittleEndian.Uint64(rec[32:40]); baseRef&0xFFFFFFFFFFFF != 0 {
		return mftEntry{}, false
	}

	attrs, err := attributeOffsets(rec)
	if err != nil {
		return mftEntry{}, false
	}

	e := mftEntry{isDir: flags&isDirectory != 0}
	var haveName bool
	for _, off := range attrs {
		// Attribute lengths come off disk; a corrupt record must
		// degrade to a skipped attribute, never an out-of-range panic.
		if off+24 > len(rec) {
			continue
		}
		attrType := binary.LittleEndian.Uint32(rec[off : off+4])
		nonResident := rec[off+8] != 0

		switch attrType {
		case attrTypeFileName:
			if nonResident {
				continue
			}
			contentOff := int(binary.LittleEndian.Uint16(rec[off+20 : off+22]))
			if contentOff <= 0 || off+contentOff > len(rec) {
				continue
			}
			body := rec[off+contentOff:]
			if len(body) < 66 {
				continue
			}
			namespace := body[65]
			if haveName && namespace == fileNameNamespaceDOS {
				continue // keep the Win32 name over the 8.3 alias
			}
			nameLen := int(body[64])
			if len(body) < 66+nameLen*2 {
				continue
			}
			u16 := make([]uint16, nameLen)
			for i := range u16 {
				u16[i] = binary.LittleEndian.Uint16(body[66+i*2 : 68+i*2])
			}
			e.name = string(utf16.Decode(u16))
			e.parent = binary.LittleEndian.Uint64(body[0:8]) & 0xFFFFFFFFFFFF
			e.mtime = filetimeUnix(
				binary.LittleEndian.Uint32(body[16:20]),
				binary.LittleEndian.Uint32(body[20:24]),
			)
			haveName = true

		case attrTypeData:
			if int(rec[off+9]) != 0 {
				continue // named streams don't count toward the file size
			}
			if nonResident {
				if off+56 > len(rec) {
					continue
				}
				e.allocated = int64(binary.LittleEndian.Uint64(rec[off+40 : off+48]))
				e.size = int64(binary.LittleEndian.Uint64(rec[off+48 : off+56]))
			} else {
				length := int64(binary.LittleEndian.Uint32(rec[off+16 : off+20]))
				e.size = length
				e.allocated = length
			}
		}
	}

	if !haveName {
		return mftEntry{}, false
	}

	return e, true
}

// attributeOffsets walks the record's attribute list and returns the
// offset of each attribute header.
func attributeOffsets(rec []byte) ([]int, error) {
	start := int(binary.LittleEndian.Uint16(rec[20:22]))
	if start <= 0 || start >= len(rec) {
		return nil, errors.New("bad attribute offset")
	}

	var offsets []int
	for off := start; off+8 <= len(rec); {
		attrType := binary.LittleEndian.Uint32(rec[off : off+4])
		if attrType == attrTypeEnd {
			return offsets, nil
		}
		length := int(binary.LittleEndian.Uint32(rec[off+4 : off+8]))
		if length <= 0 || off+length > len(rec) {
			return nil, errors.New("bad attribute length")
		}
		offsets = append(offsets, off)
		off += length
	}

	return offsets, nil
}

// applyFixups replaces the last two bytes of every sector with the
// values saved in the update sequence array; without this, multi-
// sector records are silently corrupt.
func applyFixups(rec []byte, bytesPerSector int64) error {
	usaOff := int(binary.LittleEndian.Uint16(rec[4:6]))
	usaCount := int(binary.LittleEndian.Uint16(rec[6:8]))
	if usaCount < 2 || usaOff+usaCount*2 > len(rec) {
		return errors.New("bad update sequence array")
	}

	usn := rec[usaOff : usaOff+2]
	for i := 1; i < usaCount; i++ {
		end := int(bytesPerSector)*i - 2
		if end+2 > len(rec) {
			break
		}
		if rec[end] != usn[0] || rec[end+1] != usn[1] {
			return errors.New("fixup mismatch")
		}
		rec[end] = rec[usaOff+i*2]
		rec[end+1] = rec[usaOff+i*2+1]
	}

	return nil
}

// entryPath resolves a record's lowercase path relative to the volume
// root, memoizing through paths. A missing ancestor or a parent loop
// makes the record unresolvable.
func entryPath(rec uint64, entries map[uint64]mftEntry, paths map[uint64]string) (string, bool) {
	if rec == mftRecordRoot {
		return "", true
	}
	if p, ok := paths[rec]; ok {
		return p, p != "\x00"
	}

	e, ok := entries[rec]
	if !ok || e.name == "" || strings.HasPrefix(e.name, "$") {
		paths[rec] = "\x00"
		return "", false
	}
	if e.parent == rec {
		paths[rec] = "\x00"
		return "", false
	}

	parent, ok := entryPath(e.parent, entries, paths)
	if !ok {
		paths[rec] = "\x00"
		return "", false
	}

	p := strings.ToLower(e.name)
	if parent != "" {
		p = parent + `\` + p
	}
	paths[rec] = p

	return p, true
}

func readAt(h windows.Handle, offset int64, buf []byte) error {
	if _, err := windows.Seek(h, offset, 0); err != nil {
		return err
	}
	var done uint32
	if err := windows.ReadFile(h, buf, &done, nil); err != nil {
		return err
	}
	if int(done) != len(buf) {
		return errors.New("short volume read")
	}
	return nil
}
