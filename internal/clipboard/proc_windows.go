//go:build windows

package clipboard

import (
	"os"
	"syscall"
)

const createNewProcessGroup = 0x00000200

func detached() *syscall.SysProcAttr {
	return &syscall.SysProcAttr{CreationFlags: createNewProcessGroup}
}

func terminate(pid int) error {
	p, err := os.FindProcess(pid)
	if err != nil {
		// No such process.
		return nil
	}
	_ = p.Kill()
	return nil
}
