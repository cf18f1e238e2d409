package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/ARISA-Lab-LLC/ESCSP-AZUS/internal/services"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cmd := newRootCommand()
	if err := cmd.ExecuteContext(ctx); err != nil {
		if !errors.Is(err, context.Canceled) {
			fmt.Fprintln(os.Stderr, err)
		}
		// Setup problems exit 2 so wrappers can tell a misconfigured
		// invocation from a failed run.
		if services.IsFatal(err) {
			os.Exit(2)
		}
		os.Exit(1)
	}
}
