package main

import (
	"os"

	"github.com/joho/godotenv"

	"github.com/jiho-dev/recap-archive/internal/cli"
)

func main() {
	// A missing .env is fine, the environment still applies.
	_ = godotenv.Load()

	if err := cli.RootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
