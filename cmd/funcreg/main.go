// Command funcreg serves registered request handlers and inspects
// handler registries.
package main

import (
	"fmt"
	"os"

	// Publishes the stock handlers and context processors.
	_ "github.com/randalmurphal/funcreg/pkg/funcreg/builtin"
)

func main() {
	if err := NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
