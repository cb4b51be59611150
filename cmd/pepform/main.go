// pepform - peptide notation, mass and fragment tool
package main

import (
	"fmt"
	"os"

	"github.com/ChrisMcGann/pepform/cmd/pepform/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
