// Command batchdash is a terminal dashboard and CLI for a Spring Batch
// monitoring backend.
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
