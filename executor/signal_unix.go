//go:build !windows

package executor

import "syscall"

func exitSignal() syscall.Signal {
	return syscall.SIGTERM
}
