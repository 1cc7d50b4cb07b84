// ./main.go
package main

import (
	"github.com/xkilldash9x/formrun/cmd"
)

// main is the entry point for the formrun CLI.
func main() {
	// Execute the root command defined in the cmd package.
	// It handles command-line parsing, configuration, and execution.
	cmd.Execute()
}
