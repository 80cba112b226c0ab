package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/archmap-dev/archmap/internal/cli"
)

var version = "0.1.0-dev"

func main() {
	// Optional .env for ARCHMAP_* defaults; absence is fine.
	_ = godotenv.Load()

	if err := cli.NewRootCommand(version).Execute(); err != nil {
		os.Exit(1)
	}
}
