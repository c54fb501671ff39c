//go:build linux

package engine

import (
	"time"

	"go.uber.org/zap"
	"golang.org/x/sys/unix"
)

// maxOpenFiles is the conservative file-descriptor ceiling for user
// code.
const maxOpenFiles = 64

// applyLimits applies rlimit ceilings to a just-started child. The
// interpreter is still in startup at this point, so the ceilings are
// in place before user code runs. Exceeding them makes the kernel
// terminate the child, not the engine. Failures are logged and
// tolerated: limiting is best-effort and reported via LimitsEnforced.
func applyLimits(pid int, lim limits, log *zap.Logger) {
	if lim.maxMemoryBytes > 0 {
		bytes := uint64(lim.maxMemoryBytes)
		ceiling := unix.Rlimit{Cur: bytes, Max: bytes}
		if err := unix.Prlimit(pid, unix.RLIMIT_AS, &ceiling, nil); err != nil {
			log.Debug("address-space limit not applied", zap.Error(err))
		}
	}

	if lim.maxCPUTime > 0 {
		seconds := uint64(lim.maxCPUTime / time.Second)
		if seconds < 1 {
			seconds = 1
		}
		ceiling := unix.Rlimit{Cur: seconds, Max: seconds}
		if err := unix.Prlimit(pid, unix.RLIMIT_CPU, &ceiling, nil); err != nil {
			log.Debug("cpu-time limit not applied", zap.Error(err))
		}
	}

	// Lower the soft fd limit without raising the hard one, which
	// would need privilege.
	var current unix.Rlimit
	if err := unix.Prlimit(pid, unix.RLIMIT_NOFILE, nil, &current); err == nil {
		desired := uint64(maxOpenFiles)
		if desired > current.Max {
			desired = current.Max
		}
		ceiling := unix.Rlimit{Cur: desired, Max: current.Max}
		if err := unix.Prlimit(pid, unix.RLIMIT_NOFILE, &ceiling, nil); err != nil {
			log.Debug("file-descriptor limit not applied", zap.Error(err))
		}
	}
}

func limitsEnforced() bool {
	return true
}
