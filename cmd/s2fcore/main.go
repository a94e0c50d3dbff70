// ============================================================================
// Seq2Fun-Core - Main Entry Point
// ============================================================================
//
// File: cmd/s2fcore/main.go
// Purpose: Application entry point and CLI initialization.
//
// Version Injection:
//   Variables injected at build time via -ldflags:
//   go build -ldflags "-X main.version=1.0.0 -X main.commit=abc123"
//
// Usage:
//   ./s2fcore --help                       # Show help
//   ./s2fcore process -c config.yaml       # Run the filter/trim/search pipeline
//   ./s2fcore demux -c config.yaml         # Run the demultiplex-by-feature variant
//   ./s2fcore version                      # Show version
//
// ============================================================================

package main

import (
	"fmt"
	"os"

	"github.com/wyang-bio/seq2fun-core/internal/cli"
)

var (
	version = "dev"
	commit  = "dev"
	date    = "unknown"
)

func main() {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Fatal error: %v\n", r)
			os.Exit(1)
		}
	}()

	rootCmd := cli.BuildCLI()
	cli.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date)
	rootCmd.Version = cli.Version

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
