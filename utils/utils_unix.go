//go:build !windows
// +build !windows

package utils

import "golang.org/x/sys/unix"

// IsWritable reports whether the current user can write to the file.
func IsWritable(path string) bool {
	return unix.Access(path, unix.W_OK) == nil
}
