// Command energyscope explores national energy consumption by source.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rshade/energyscope/internal/cli"
	"github.com/rshade/energyscope/internal/ingest"
	"github.com/rshade/energyscope/pkg/version"
)

// Process exit codes.
const (
	exitOK       = 0
	exitFailure  = 1
	exitUsage    = 2
	exitDataLoad = 3
)

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

// run executes the root command with a background context.
func run() error {
	root := cli.NewRootCmd(version.GetVersion())
	return root.ExecuteContext(context.Background())
}

// exitCode maps an error returned by run to the process exit status.
func exitCode(err error) int {
	switch {
	case err == nil:
		return exitOK
	case errors.Is(err, ingest.ErrLoad):
		return exitDataLoad
	case errors.Is(err, cli.ErrInvalidOutputFormat), errors.Is(err, cli.ErrIncompleteRange):
		return exitUsage
	default:
		return exitFailure
	}
}
