package main

import (
	"os"

	"openclipboard/cmd/openclipboardd/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
