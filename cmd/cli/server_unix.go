//go:build !windows

package main

import (
	"os/exec"
	"syscall"
)

// detachProcess runs cmd in its own session so it outlives the terminal
func detachProcess(cmd *exec.Cmd) {
	cmd.Stdin, cmd.Stdout, cmd.Stderr = nil, nil, nil
	cmd.SysProcAttr = &syscall.SysProcAttr{Setsid: true}
}
