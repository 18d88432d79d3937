// Package main is the entry point for the financial-researcher CLI
package main

import (
	"github.com/kokjohn0824/financial-researcher/internal/cli"
)

func main() {
	cli.Execute()
}
