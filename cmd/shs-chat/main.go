package main

import (
	"os"

	"github.com/inlet-labs/shs/cmd/shs-chat/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
