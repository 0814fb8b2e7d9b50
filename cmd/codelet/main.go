// Command codelet is the codelet daemon and command line client.
// "codelet serve" listens on a Unix domain socket for completion requests
// from editors; the other subcommands run one request in process.
package main

import (
	"os"

	"github.com/Paranoid-AF/codelet/cli"
)

func main() {
	os.Exit(cli.Execute())
}
