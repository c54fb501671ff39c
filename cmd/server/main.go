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

import (
	"context"
	"errors"
	"net/http"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"

	"runbox/config"
	"runbox/engine"
	"runbox/httpserver"
	"runbox/logger"
	"runbox/mcpserver"
)

func main() {
	app := fx.New(
		// Provide dependencies
		fx.Provide(
			// Config
			config.New,

			// Logger with configuration
			logger.NewFromConfig,

			// Execution engine
			engine.New,
			func(e *engine.Engine) engine.Executor { return e },

			// Transport servers
			httpserver.New,
			mcpserver.New,
		),

		// Start the appropriate transport based on config
		fx.Invoke(
			func(lc fx.Lifecycle, cfg *config.Config, httpSrv *httpserver.Server, mcpSrv *mcpserver.MCPServer) {
				switch cfg.Server.Transport {
				case "http":
					lc.Append(fx.Hook{
						OnStart: func(context.Context) error {
							go func() {
								if err := httpSrv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
									panic(err)
								}
							}()
							return nil
						},
						OnStop: httpSrv.Stop,
					})
				case "mcp":
					// Use fx to run this as a background task
					go func() {
						if err := mcpSrv.ServeStdio(); err != nil {
							panic(err)
						}
					}()
				default:
					panic("unsupported transport: " + cfg.Server.Transport)
				}
			},
		),

		// Use the application logger for fx logs
		fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
			return &fxevent.ZapLogger{Logger: log}
		}),
	)

	// Start the application
	app.Run()
}
