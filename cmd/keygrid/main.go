// Command keygrid edits keyboard layouts and compiles them into QMK
// firmware sources.
package main

import (
	"fmt"
	"os"

	"github.com/roach88/keygrid/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		// Commands report their own errors on stdout; stderr gets the
		// short form for scripts and flag parsing failures.
		fmt.Fprintln(os.Stderr, "keygrid:", err)
		os.Exit(cli.GetExitCode(err))
	}
}
