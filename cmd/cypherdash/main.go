// Command cypherdash is the terminal dashboard for the on-chain analytics backend.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rshade/cypherdash/internal/cli"
	"github.com/rshade/cypherdash/pkg/version"
)

func main() {
	os.Exit(run())
}

// run executes the root command and returns the process exit code.
func run() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	root := cli.NewRootCmd(version.GetVersion())
	return exitCode(root.ExecuteContext(ctx), os.Stderr)
}

// exitCode prints err, if any, and maps it to an exit status.
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	fmt.Fprintf(w, "Error: %v\n", err)
	return 1
}
