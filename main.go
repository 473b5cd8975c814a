package main

import (
	"os"

	"github.com/nightsky-software/stardb-go/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
