//go:build darwin

package platform

import "syscall"

func statTimes(st *syscall.Stat_t) (mtime, atime, ctime int64) {
	return st.Mtimespec.Sec, st.Atimespec.Sec, st.Ctimespec.Sec
}
