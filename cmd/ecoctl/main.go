package main

import (
	"fmt"
	"os"

	"ecocare/internal/cli"
)

var version = "dev"

func main() {
	if err := cli.Run(version); err != nil {
		fmt.Fprintf(os.Stderr, "ecoctl: %v\n", err)
		os.Exit(1)
	}
}
