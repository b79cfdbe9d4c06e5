package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ajsmith595/videoedit/internal/client"
	"github.com/ajsmith595/videoedit/internal/logger"
	"github.com/ajsmith595/videoedit/internal/project"
)

func main() {
	cfg, err := parseFlags(os.Args[1:])
	if err != nil {
		// flag package already printed usage/error
		os.Exit(2)
	}
	if cfg.showVersion {
		fmt.Println(version)
		return
	}

	logger.Init()
	if err := logger.SetLevel(cfg.logLevel); err != nil {
		fmt.Printf("Warning: invalid log level %q, using default\n", cfg.logLevel)
	}
	log := logger.Logger().With("component", "cli")

	if err := project.Init(cfg.dataRoot, false); err != nil {
		log.Error("failed to initialize data root", "error", err)
		os.Exit(1)
	}

	c, err := client.New(client.Config{ServerAddr: cfg.serverAddr})
	if err != nil {
		log.Error("failed to connect to server", "addr", cfg.serverAddr, "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go logEvents(log, c.Events())

	if err := c.Start(ctx); err != nil {
		log.Error("failed to start client", "error", err)
		os.Exit(1)
	}

	log.Info("client connected", "server", cfg.serverAddr, "version", version)

	<-ctx.Done()
	log.Info("shutdown signal received")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	done := make(chan struct{})
	go func() {
		if err := c.Stop(); err != nil {
			log.Error("client stop error", "error", err)
		}
		close(done)
	}()

	select {
	case <-done:
		log.Info("client stopped cleanly")
	case <-shutdownCtx.Done():
		log.Error("forced exit after timeout")
	}
}

// logEvents drains the client's event stream to the structured logger
// until it closes, giving a headless run visibility into store updates,
// uploads and rendered chunks without a UI attached.
func logEvents(log *slog.Logger, events <-chan client.Event) {
	for ev := range events {
		log.Info("client event", "kind", ev.Kind, "clip", ev.ClipID)
	}
}
