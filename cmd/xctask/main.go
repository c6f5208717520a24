package main

import (
	"os"

	"github.com/xctask/xctask/pkg/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
