package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/bjulian5/stackpr/cmd"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := cmd.Execute(ctx)
	cancel()
	os.Exit(code)
}
