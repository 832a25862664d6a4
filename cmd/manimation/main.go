package main

import (
	"github.com/joho/godotenv"
	"github.com/manimation/manimation/cli"
	"github.com/manimation/manimation/logger"
)

func main() {
	// Provider keys may live in a local .env file.
	_ = godotenv.Load()
	logger.InitLogger()
	cli.Execute()
}
