package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/maxkimambo/sitebuild/cmd"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := cmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		// The error has already been rendered
		os.Exit(1)
	}
}
