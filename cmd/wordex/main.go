// Package main provides the entry point for the wordex CLI.
package main

import (
	"os"

	"github.com/Aman-CERP/wordex/cmd/wordex/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
