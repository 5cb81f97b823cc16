package main

import (
	"context"
	"fmt"
	"os"

	"task-tracker/internal/cli"
	"task-tracker/internal/config"
)

// version is set at build time with -ldflags "-X main.version=..."
var version = "dev"

func main() {
	// Stores are opened per command, once flags and config are known
	root := cli.NewRootCommand(config.NewLoader(), config.CreateRepository, version)

	if err := root.Execute(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
