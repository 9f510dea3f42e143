package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/rget/rget/cmd"
	"github.com/rget/rget/pkg/logging"
)

func main() {
	logging.SetupLogger()
	rootCMD := cmd.GetRootCommand()

	// A received SIGINT/SIGTERM cancels the context, which unwinds the
	// in-flight attempt and closes the destination file before exit. A
	// partial file left behind this way is still resumable.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCMD.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}
