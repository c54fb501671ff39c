//go:build !linux

package engine

import "go.uber.org/zap"

// applyLimits is a documented no-op on platforms without per-process
// limit support. The engine does not claim protection it cannot
// provide; LimitsEnforced reports false here.
func applyLimits(_ int, _ limits, log *zap.Logger) {
	log.Debug("resource limits not supported on this platform")
}

func limitsEnforced() bool {
	return false
}
