package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/tartampluch/go-yahrzeit/cmd/yahrzeit/cmd"
	"github.com/tartampluch/go-yahrzeit/internal/config"
)

// main delegates to runMain so deferred calls (closing the log file, stopping
// signal delivery) run before os.Exit.
func main() {
	os.Exit(runMain())
}

// runMain returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain() int {
	// Create a root context that cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := cmd.Execute(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "%s: %v\n", config.ErrAppFailed, err)
		return config.ExitCodeError
	}
	return config.ExitCodeSuccess
}
