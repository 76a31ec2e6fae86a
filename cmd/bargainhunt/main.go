// Command bargainhunt runs the antiques game show simulator.
package main

import (
	"fmt"
	"os"

	"bargain-hunt/internal/cli"
)

func main() {
	if err := cli.NewRootCmd(os.Stderr).Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}
