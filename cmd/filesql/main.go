// Command filesql runs the interactive statement session against a
// directory of filesql databases, grounded on basic-sql's apps/main.cpp
// REPL loop and, for its flag handling, the teacher's cmd/sqlmapper
// entry point.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/mstgnz/filesql/config"
	"github.com/mstgnz/filesql/di"
	"github.com/mstgnz/filesql/logger"
	"github.com/mstgnz/filesql/repl"
)

func main() {
	dataDir := flag.String("data", "", "directory holding the database subdirectories (default ./data)")
	logLevel := flag.String("log-level", "", "minimum log level: debug, info, warn, error (default info)")
	flag.Parse()

	cfg := config.Default()
	if *dataDir != "" {
		cfg.DataDir = *dataDir
	}
	if *logLevel != "" {
		cfg.Log.Level = parseLevel(*logLevel)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o700); err != nil {
		fmt.Fprintf(os.Stderr, "filesql: cannot create data directory %s: %v\n", cfg.DataDir, err)
		os.Exit(1)
	}

	container := di.NewContainer()
	if err := di.RegisterServices(container, cfg); err != nil {
		fmt.Fprintf(os.Stderr, "filesql: cannot wire services: %v\n", err)
		os.Exit(1)
	}
	svc, err := di.ResolveServices(container)
	if err != nil {
		fmt.Fprintf(os.Stderr, "filesql: cannot resolve service: %v\n", err)
		os.Exit(1)
	}

	session := repl.New(os.Stdin, os.Stdout, svc.DB, svc.Metrics, svc.Alerts, svc.Log)
	if err := session.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "filesql: %v\n", err)
		_ = svc.DB.Close()
		os.Exit(1)
	}

	if err := svc.DB.Close(); err != nil {
		fmt.Fprintf(os.Stderr, "filesql: error closing databases: %v\n", err)
		os.Exit(1)
	}
}

func parseLevel(name string) logger.LogLevel {
	switch name {
	case "debug":
		return logger.DEBUG
	case "warn":
		return logger.WARN
	case "error":
		return logger.ERROR
	default:
		return logger.INFO
	}
}
