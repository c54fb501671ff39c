//go:build unix

package engine

import (
	"os"
	"os/exec"
	"syscall"
)

// setProcessGroup places the child in its own process group so that a
// single signal reaches any subprocesses the user code spawns.
func setProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
}

// unixProcessGroup signals the whole process group. The group id
// equals the leader pid because the leader was started with Setpgid.
type unixProcessGroup struct {
	pgid int
}

func newProcessHandle(proc *os.Process) processHandle {
	return unixProcessGroup{pgid: proc.Pid}
}

func (p unixProcessGroup) alive() bool {
	return syscall.Kill(-p.pgid, 0) == nil
}

func (p unixProcessGroup) terminateGracefully() {
	_ = syscall.Kill(-p.pgid, syscall.SIGTERM)
}

func (p unixProcessGroup) terminateForcefully() {
	_ = syscall.Kill(-p.pgid, syscall.SIGKILL)
}
