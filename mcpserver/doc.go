// Package mcpserver provides the Model Context Protocol (MCP) server implementation.
//
// The mcpserver package implements an MCP-compliant server that exposes the
// run_python tool for code execution. It uses the mark3labs/mcp-go library to
// handle the protocol details and delegates the actual execution to the
// engine package.
//
// The server runs on the stdio transport as configured by the application
// configuration.
//
// Usage:
//
//	server, err := mcpserver.New(config, logger, executor)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	err = server.ServeStdio()
package mcpserver
