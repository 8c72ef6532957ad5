//go:build linux

package platform

import "syscall"

func statTimes(st *syscall.Stat_t) (mtime, atime, ctime int64) {
	return st.Mtim.Sec, st.Atim.Sec, st.Ctim.Sec
}
