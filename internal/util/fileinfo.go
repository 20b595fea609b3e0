package util

import (
	"os"
	"time"
)

// FileInfo contains extended file information, including modification time, size, and inode number.
type FileInfo struct {
	Path    string
	ModTime time.Time
	Size    int64
	Inode   uint64 // zero when the platform does not expose one
	Dev     uint64
}

// GetFileInfo retrieves detailed file information, including inode number
// where the platform supports it.
func GetFileInfo(path string) (*FileInfo, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	info := &FileInfo{
		Path:    path,
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
	}
	info.Inode, info.Dev = fileIdentity(path)
	return info, nil
}

// GetOpenFileInfo is GetFileInfo for an already open handle.
func GetOpenFileInfo(f *os.File) (*FileInfo, error) {
	stat, err := f.Stat()
	if err != nil {
		return nil, err
	}

	info := &FileInfo{
		Path:    f.Name(),
		ModTime: stat.ModTime(),
		Size:    stat.Size(),
	}
	info.Inode, info.Dev = openFileIdentity(f)
	return info, nil
}

// SameFile reports whether a and b describe the same underlying file. Paths
// must match; inode and device are compared only when both sides carry them.
func (a *FileInfo) SameFile(b *FileInfo) bool {
	if a == nil || b == nil {
		return a == b
	}
	if a.Path != b.Path {
		return false
	}
	if a.Inode != 0 && b.Inode != 0 {
		return a.Inode == b.Inode && a.Dev == b.Dev
	}
	return true
}
