// Command ppictl runs the interaction pipeline from the command line: it
// resolves genes, builds and annotates networks and writes them out in any
// export format, without starting the server.
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
