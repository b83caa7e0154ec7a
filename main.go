package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/gaze-network/ticket-integrity/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cmd.Execute(ctx)
}
