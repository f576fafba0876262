package main

import (
	"log"

	"horizon-client/internal/cli"

	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("[MAIN] No .env file found, relying on system env vars")
	}
	cli.Execute()
}
