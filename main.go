package main

import (
	"fmt"
	"os"

	"book-my-session/core/server"
)

// @title Book My Session API
// @version 1.0
// @description Speakers publish session slots, users reserve them.

// @host localhost:7070
// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "run server error: %v\n", err)
		os.Exit(1)
	}
}
