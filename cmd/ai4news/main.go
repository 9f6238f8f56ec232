package main

import (
	"os"

	"github.com/AaronLPS/ai4news/internal/cli"
)

func main() {
	if err := cli.NewRootCommand().Execute(); err != nil {
		os.Exit(1)
	}
}
