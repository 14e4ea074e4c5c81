package main

import (
	"os"

	"github.com/willkamu/crm-shekinah-sub001/internal/commands"
)

func main() {
	if err := commands.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
