package main

import (
	"fmt"
	"os"

	"github.com/signalsfoundry/interference-hypergraph/internal/cli"
)

func main() {
	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "hypergraph:", err)
		os.Exit(1)
	}
}
