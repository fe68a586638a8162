package main

import (
	"os"

	"github.com/mwhitfield/alphascore/cmd/alphascore/commands"
)

// main is the entry point for the alphascore CLI:
// go run ./cmd/alphascore [command]
func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
