// Package main is the entry point for the tdq CLI.
package main

import "github.com/tdq/tdq/internal/cli"

func main() {
	cli.Execute()
}
