package main

import (
	"log/slog"
	"os"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err == nil {
		slog.Info("loaded environment from .env")
	}

	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
