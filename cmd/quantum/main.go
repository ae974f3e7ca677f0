package main

import (
	"os"

	"github.com/quantumstock/backend/cmd/quantum/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
