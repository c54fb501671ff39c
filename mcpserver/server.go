package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"runbox/config"
	"runbox/engine"
)

// MCPServer represents the MCP server
type MCPServer struct {
	config    *config.Config
	logger    *zap.Logger
	exec      engine.Executor
	mcpServer *server.MCPServer
}

// New creates a new MCPServer
func New(cfg *config.Config, logger *zap.Logger, exec engine.Executor) (*MCPServer, error) {
	s := &MCPServer{
		config: cfg,
		logger: logger,
		exec:   exec,
	}

	// Log configuration parameters on startup
	logger.Info("configuration loaded",
		zap.String("server.transport", s.config.Server.Transport),
		zap.Int("server.http_port", s.config.Server.HTTPPort),
		zap.String("engine.interpreter", s.config.Engine.Interpreter),
		zap.Int("engine.default_timeout_sec", s.config.Engine.DefaultTimeoutSec),
		zap.Int("engine.memory_mb", s.config.Engine.MemoryMB),
		zap.Int("engine.cpu_time_sec", s.config.Engine.CPUTimeSec),
		zap.Int("engine.max_concurrent", s.config.Engine.MaxConcurrent),
		zap.Bool("engine.workspace_isolation", s.config.Engine.WorkspaceIsolation),
	)

	// Create the MCP server
	s.mcpServer = server.NewMCPServer("runbox-executor", "An isolated Python code execution server")

	// Register the run_python tool
	s.registerRunPythonTool()

	return s, nil
}

// registerRunPythonTool registers the run_python tool
func (s *MCPServer) registerRunPythonTool() {
	tool := mcp.Tool{
		Name:        "run_python",
		Description: "Execute untrusted Python code in an isolated subprocess",
		InputSchema: mcp.ToolInputSchema{
			Type: "object",
			Properties: map[string]any{
				"code": map[string]any{
					"type":        "string",
					"description": "Python source code to execute",
				},
				"timeout": map[string]any{
					"type":        "number",
					"description": "Execution timeout in seconds (optional, falls back to the configured default)",
				},
			},
			Required: []string{"code"},
		},
	}

	s.mcpServer.AddTool(tool, s.handleRunPython)
}

// handleRunPython handles the run_python tool
func (s *MCPServer) handleRunPython(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	s.logger.Info("code execution requested")

	// Extract parameters
	code, err := request.RequireString("code")
	if err != nil {
		return nil, fmt.Errorf("code parameter is required: %w", err)
	}

	// An explicit non-positive timeout is rejected; only an omitted one
	// selects the configured default.
	var timeout time.Duration
	if _, present := request.GetArguments()["timeout"]; present {
		secs := request.GetFloat("timeout", 0)
		if secs <= 0 {
			return &mcp.CallToolResult{
				Content: []mcp.Content{
					mcp.TextContent{
						Type: "text",
						Text: "Execution rejected: timeout must be positive",
					},
				},
				IsError: true,
			}, nil
		}
		timeout = time.Duration(secs * float64(time.Second))
	}

	// Execute the code
	result, err := s.exec.Execute(ctx, engine.Request{
		Code:    code,
		Timeout: timeout,
	})
	if err != nil {
		s.logger.Warn("execution rejected", zap.Error(err))
		return &mcp.CallToolResult{
			Content: []mcp.Content{
				mcp.TextContent{
					Type: "text",
					Text: fmt.Sprintf("Execution rejected: %v", err),
				},
			},
			IsError: true,
		}, nil
	}

	// Log execution result
	s.logger.Info("code execution completed",
		zap.String("status", string(result.Status)),
		zap.Duration("duration", result.Duration),
		zap.Int("stdout_len", len(result.Stdout)),
		zap.Int("stderr_len", len(result.Stderr)))

	// Convert result to JSON string for content
	payload, err := json.Marshal(map[string]any{
		"status":         result.Status,
		"stdout":         result.Stdout,
		"stderr":         result.Stderr,
		"execution_time": result.Duration.Seconds(),
		"return_code":    result.ReturnCode,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode result: %w", err)
	}

	return &mcp.CallToolResult{
		Content: []mcp.Content{
			mcp.TextContent{
				Type: "text",
				Text: string(payload),
			},
		},
	}, nil
}

// ServeStdio starts the server on stdio
func (s *MCPServer) ServeStdio() error {
	s.logger.Info("starting MCP server on stdio")
	return server.ServeStdio(s.mcpServer)
}

// GetMCPServer returns the underlying MCP server for fx
func (s *MCPServer) GetMCPServer() *server.MCPServer {
	return s.mcpServer
}
