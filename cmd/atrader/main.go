package main

import (
	"os"

	"github.com/mingli/atrader/cmd/atrader/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
