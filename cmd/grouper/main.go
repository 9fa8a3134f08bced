// Command grouper serves the roster and shuffle UI, and forms groups from
// the command line.
package main

import (
	"os"

	"github.com/arloliu/grouper/cmd/grouper/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
