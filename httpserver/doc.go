// Package httpserver provides the REST boundary for code execution.
//
// The httpserver package exposes the execution engine over HTTP using
// the chi router: POST /api/v1/execute runs code and returns the
// captured output, GET /health reports the engine's environment
// health, and GET / returns service information.
//
// Validation rejections map to HTTP 400; every engine outcome,
// including timeouts and engine-level failures, travels as a 200 with
// the result status field set.
package httpserver
