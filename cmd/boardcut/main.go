// boardcut packs melamine cut lists onto boards with guillotine cuts and
// keeps computed layouts retrievable by request hash.
//
// Build:
//
//	go build -o boardcut ./cmd/boardcut
package main

import (
	"os"

	"github.com/fatih/color"

	"github.com/piwi3910/boardcut/cmd/boardcut/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		color.New(color.FgRed).Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
