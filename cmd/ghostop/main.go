package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/stigoleg/ghost-operator/internal/config"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), shutdownSignals()...)

	err := config.NewRootCommand(version, run).ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, config.FormatError(err))
		os.Exit(1)
	}
}
