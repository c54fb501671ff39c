// Package engine provides the untrusted code execution engine.
//
// The engine turns a (code, timeout, resource-limit) request into an
// isolated subprocess run: it bounds system-wide concurrency through
// an admission gate, gives each run an exclusively owned workspace
// directory, applies best-effort memory/CPU ceilings to the child,
// supervises the run against its deadline with graceful-then-forced
// termination of the full process tree, and classifies the outcome
// into one of success, error, timeout, or failed.
//
// Execute never fails with anything but a pre-flight validation
// rejection; every runtime failure mode ends up in the Result status.
//
// Usage:
//
//	eng, err := engine.New(logger, cfg)
//	result, err := eng.Execute(ctx, engine.Request{
//	    Code:    "print('Hello, World!')",
//	    Timeout: 5 * time.Second,
//	})
package engine
