// Command stackctl is the control-plane CLI for the stackhaus storage
// engine: stat, ls, get, bind, and preload against a stack location and
// the allocation service.
package main

import (
	"fmt"
	"os"

	"github.com/marmos91/stackhaus/cmd/stackctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		// stackerr.Error.Error() already renders "Kind: message", which is
		// exactly what the control-plane CLI is specified to print; a bare
		// error (flag parsing, cobra usage) prints as-is.
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
