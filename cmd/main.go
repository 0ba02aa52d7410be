package main

import (
	"log"

	"marketsnap/internal/app"
)

// @title Market Snapshot API
// @version 1.0
// @description Dollar exchange rates and asset price history behind a short-lived cache.
// @BasePath /api
func main() {
	if err := app.Run(); err != nil {
		log.Fatal(err)
	}
}
