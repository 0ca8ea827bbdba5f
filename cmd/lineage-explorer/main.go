// Package main provides the lineage-explorer CLI.
package main

import (
	"os"

	"github.com/Arjun-123414/LineageSnowflakeApp/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
