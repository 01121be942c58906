// Package main provides the entry point for the tome CLI.
package main

import (
	"fmt"
	"os"

	"github.com/tome-search/tome/cmd/tome/cmd"
	terrors "github.com/tome-search/tome/internal/errors"
)

func main() {
	if err := cmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(terrors.ExitCode(err))
	}
}
