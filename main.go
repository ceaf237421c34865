// Package main is the entry point for smparser, the serial message parser.
package main

import (
	"fmt"
	"os"

	"firestige.xyz/smparser/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
