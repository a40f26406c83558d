// Command scimfilter parses, validates and translates SCIM 2.0 filters.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/scimfilter/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
