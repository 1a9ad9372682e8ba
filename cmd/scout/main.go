package main

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/scouthq/scout/cmd/scout/cmd"
	"github.com/sirupsen/logrus"
)

func main() {
	// .env is optional; real deployments use environment variables.
	if err := godotenv.Load(); err != nil {
		logrus.Debug("no .env file found, using environment variables")
	}

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
