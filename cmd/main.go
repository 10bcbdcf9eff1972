package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
)

// These variables are set at build time via -ldflags
var (
	version = "dev"     // Set via -X main.version=...
	commit  = "unknown" // Set via -X main.commit=...
	date    = "unknown" // Set via -X main.date=...
)

func main() {
	// Cancelled on SIGINT/SIGTERM so a long emit run stops between rounds
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	Execute(ctx)
}
