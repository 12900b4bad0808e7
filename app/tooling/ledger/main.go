// This program performs the ledger tasks from the command line.
package main

import "github.com/ardanlabs/hashchain/app/tooling/ledger/cmd"

func main() {
	cmd.Execute()
}
