package main

import (
	"os"

	"github.com/maintlog/backend/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
