// Package main is the entry point for the cppast CLI tool.
package main

import (
	"github.com/hargabyte/cppast/internal/cmd"
)

func main() {
	cmd.Execute()
}
