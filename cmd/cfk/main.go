// cfk is the component kernel CLI: inspect registered libraries and
// builders, build components, and watch plugin directories.
package main

import (
	"os"

	"github.com/corey/cfk/cmd/cfk/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
