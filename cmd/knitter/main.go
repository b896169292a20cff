package main

import (
	"context"
	"os"

	"pkt.systems/psi"

	"rmd-knitter/internal/cli"
)

// Development entry point: the desktop shell serves ./frontend from disk.
func main() {
	psi.Run(func(ctx context.Context) int {
		return cli.Main(ctx, nil, os.Args[1:])
	})
}
