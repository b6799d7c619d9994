// main.go: entry point of mediasort
package main

import (
	"os"
)

// version is printed by --version.
const version = "v0.2.0"

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
