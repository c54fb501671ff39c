//go:build !unix

package engine

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup is a no-op where process groups are unavailable;
// only the direct child can be signaled.
func setProcessGroup(_ *exec.Cmd) {}

// soloProcess controls the direct child only. There is no graceful
// signal here, so both escalation steps kill outright.
type soloProcess struct {
	proc *os.Process
}

func newProcessHandle(proc *os.Process) processHandle {
	return soloProcess{proc: proc}
}

func (p soloProcess) alive() bool {
	return p.proc.Signal(syscall.Signal(0)) == nil
}

func (p soloProcess) terminateGracefully() {
	_ = p.proc.Kill()
}

func (p soloProcess) terminateForcefully() {
	_ = p.proc.Kill()
}
