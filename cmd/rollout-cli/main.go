package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/malbeclabs/rollout-analytics/internal/rollout/cli"
)

func main() {
	_ = godotenv.Load()
	os.Exit(int(cli.Run()))
}
