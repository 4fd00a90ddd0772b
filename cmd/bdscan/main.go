package main

import (
	"log"

	"github.com/netfab/bdscan/internal/app"
)

func main() {
	if err := app.New().Run(); err != nil {
		log.Fatalf("bdscan failed to start: %v", err)
	}
}
