// Command standings ranks tournaments from files, serves the ranking API
// and migrates the Postgres schema.
//
// Usage:
//
//	standings rank --tournament tournament.yaml --snapshot snapshot.json
//	standings serve
//	standings migrate
package main

import (
	"os"

	"github.com/ahrav/go-standings/cmd/standings/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
