package main

import (
	"os"

	"github.com/joho/godotenv"

	"nsewatch/cmd"
	"nsewatch/logger"
)

func main() {
	// Load environment variables from .env if present
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		logger.GetLogger().WithError(err).Warn("Error loading .env file")
	}

	cmd.Execute()
}
