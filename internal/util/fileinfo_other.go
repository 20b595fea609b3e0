//go:build !unix

package util

import "os"

// Without inode numbers identity falls back to path comparison.
func fileIdentity(string) (inode, dev uint64) {
	return 0, 0
}

func openFileIdentity(*os.File) (inode, dev uint64) {
	return 0, 0
}
