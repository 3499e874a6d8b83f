package main

import (
	"os"

	"bedrock/cmd/bedrockctl/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
