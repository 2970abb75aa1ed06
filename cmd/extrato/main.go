package main

import (
	"os"

	"github.com/rmacedo/extrato/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
