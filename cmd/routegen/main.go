// Command routegen generates Go client bindings from an RPC API description.
package main

import (
	"os"

	"github.com/roach88/routegen/internal/cli"
)

func main() {
	err := cli.Execute(os.Args[1:], os.Stdout, os.Stderr)
	os.Exit(cli.GetExitCode(err))
}
