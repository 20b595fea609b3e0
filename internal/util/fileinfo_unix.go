//go:build unix

package util

import (
	"os"

	"golang.org/x/sys/unix"
)

func fileIdentity(path string) (inode, dev uint64) {
	var st unix.Stat_t
	if err := unix.Stat(path, &st); err != nil {
		return 0, 0
	}
	return uint64(st.Ino), uint64(st.Dev)
}

func openFileIdentity(f *os.File) (inode, dev uint64) {
	var st unix.Stat_t
	if err := unix.Fstat(int(f.Fd()), &st); err != nil {
		return 0, 0
	}
	return uint64(st.Ino), uint64(st.Dev)
}
