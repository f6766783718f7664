package main

import (
	"os"

	"github.com/joacominatel/sqlmapper/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
