package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spherical/pdf-scanner/cmd/pdf-scanner/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		var exitErr *commands.ExitError
		if !errors.As(err, &exitErr) || exitErr.Message != "" {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
		os.Exit(1)
	}
}
