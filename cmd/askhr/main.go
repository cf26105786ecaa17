package main

import (
	"github.com/joho/godotenv"

	"askhr/internal/cli"
)

func main() {
	// ASKHR_* overrides may live in a local .env file.
	_ = godotenv.Load()
	cli.Execute()
}
