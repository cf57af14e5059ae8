//go:build windows

package main

import (
	"os/exec"
	"syscall"
)

// detachProcess starts cmd in a new process group without a console
func detachProcess(cmd *exec.Cmd) {
	const detachedProcess = 0x00000008
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
	cmd.SysProcAttr = &syscall.SysProcAttr{
		CreationFlags: syscall.CREATE_NEW_PROCESS_GROUP | detachedProcess,
	}
}
