// cmd/f1picks/main.go
// Admin command line for the prediction game.
//
// Usage:
//
//	go run ./cmd/f1picks user add --username lando --email lando@example.com --password secret123
//	go run ./cmd/f1picks race add --name "Monaco Grand Prix" --starts 2025-05-25T13:00:00Z --cutoff 2025-05-23T11:30:00Z
//	go run ./cmd/f1picks ingest 7
//	go run ./cmd/f1picks standings
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := rootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
