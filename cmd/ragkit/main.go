// Command ragkit creates document-backed models and answers questions about them.
package main

import (
	"context"
	"os"

	"github.com/custodia-labs/ragkit/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.Execute(context.Background(), version); err != nil {
		os.Exit(1)
	}
}
