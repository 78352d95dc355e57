package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/charmbracelet/log"
	"github.com/theapemachine/qecc/cmd/qecc/commands"
)

// Set via ldflags.
var (
	Version = "dev"
	Commit  = "unknown"
)

func main() {
	log.SetReportTimestamp(true)
	log.SetPrefix("qecc")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("received interrupt, shutting down")
		cancel()
	}()

	if err := commands.Execute(ctx, Version, Commit); err != nil {
		log.Error("command failed", "err", err)
		os.Exit(1)
	}
}
