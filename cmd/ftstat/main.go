package main

import (
	"os"

	"github.com/kailas-cloud/searchd/cmd/ftstat/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
