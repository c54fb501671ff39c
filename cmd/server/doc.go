// Package main is the entry point for the Runbox execution server.
//
// The Runbox server executes untrusted Python code in isolated subprocesses
// with per-run workspaces, resource limits, and timeout supervision. The
// server exposes the execution engine either over HTTP or as a Model Context
// Protocol (MCP) server on stdio, selected by configuration.
//
// The application uses Uber's fx framework for dependency injection and lifecycle
// management, with zap for structured logging and viper for configuration.
package main
