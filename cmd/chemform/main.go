// Command chemform formats chemical formulas and renders periodic tables,
// Lewis atoms, Markdown lessons and property trends from the command line.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
