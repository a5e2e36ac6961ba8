// cineshelf - terminal client for the movie catalog API.
//
// Runs the cobra CLI. `cineshelf browse` opens the interactive browser.
package main

import (
	"fmt"
	"os"

	"github.com/cineshelf/cineshelf/internal/cli"
	"github.com/cineshelf/cineshelf/internal/version"
)

func main() {
	// Propagate version from internal/version to the CLI package
	cli.Version = version.Version
	cli.BuildTime = version.BuildTime

	if err := cli.Execute(); err != nil {
		// Service failures were already printed as notices
		if !cli.Reported(err) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
