//go:build !linux && !windows
// +build !linux,!windows

package tcp

import "syscall"

// availableRaw reports 0, the count is only queried on linux.
func availableRaw(syscall.RawConn) (int, error) {
	return 0, nil
}
