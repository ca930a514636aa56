package main

import (
	"os"

	"github.com/mpjhorner/specdash/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
