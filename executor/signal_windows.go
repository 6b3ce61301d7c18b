//go:build windows

package executor

import "os"

func exitSignal() os.Signal {
	return os.Kill
}
