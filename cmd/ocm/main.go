// Package main is the entry point for the ocm CLI tool.
package main

import (
	"os"

	"github.com/roach88/ocm/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
