// Command nestedset manages nested-set hierarchies stored in SQLite.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/roach88/nestedset/internal/cli"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cli.NewRootCommand().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		stop()
		os.Exit(cli.GetExitCode(err))
	}
}
