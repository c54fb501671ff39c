// Package config provides application configuration management.
//
// The config package handles loading and validation of the application's
// configuration from YAML files. It supports configuration for server
// settings, execution engine parameters (interpreter, timeout bounds,
// resource ceilings, concurrency), and logging.
//
// Usage:
//
//	cfg, err := config.New()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Printf("Interpreter: %s\n", cfg.Engine.Interpreter)
package config
