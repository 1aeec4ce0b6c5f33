//go:build windows
// +build windows

package utils

import "os"

// IsWritable reports whether the file looks writable. Windows has no
// faccessat, so the mode bits are the best cheap signal available.
func IsWritable(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return info.Mode().Perm()&0o200 != 0
}
