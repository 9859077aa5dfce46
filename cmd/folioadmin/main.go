package main

import (
	"os"

	"github.com/folioadmin/folioadmin/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
