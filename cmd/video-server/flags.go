package main

import (
	"flag"
	"fmt"
	"os"
)

// version is injected at build time with -ldflags "-X main.version=...". Defaults to dev.
var version = "dev"

// cliConfig holds user supplied flag values prior to translation into
// videoserver.Config so main.go can validate and map.
type cliConfig struct {
	listenAddr  string
	dataRoot    string
	logLevel    string
	numWorkers  uint
	workerPath  string
	showVersion bool
}

func parseFlags(args []string) (*cliConfig, error) {
	fs := flag.NewFlagSet("video-server", flag.ContinueOnError)
	fs.SetOutput(os.Stdout)

	cfg := &cliConfig{}
	fs.StringVar(&cfg.listenAddr, "listen", ":3001", "TCP listen address (e.g. :3001 or 0.0.0.0:3001)")
	fs.StringVar(&cfg.dataRoot, "data-root", "./data", "Root directory for the project store, media and temp files")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "Log level: debug|info|warn|error")
	fs.UintVar(&cfg.numWorkers, "workers", 2, "Number of render-process pool workers")
	fs.StringVar(&cfg.workerPath, "worker-path", "video-render-worker", "Path to the render-worker executable")
	fs.BoolVar(&cfg.showVersion, "version", false, "Print version and exit")

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	switch cfg.logLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("invalid log-level %q", cfg.logLevel)
	}

	if cfg.numWorkers == 0 {
		return nil, fmt.Errorf("workers must be at least 1")
	}

	return cfg, nil
}
