package main

import (
	"context"
	"embed"
	"os"

	"pkt.systems/psi"

	"rmd-knitter/internal/cli"
)

//go:embed frontend/index.html
var appAssets embed.FS

func main() {
	psi.Run(submain)
}

func submain(ctx context.Context) int {
	return cli.Main(ctx, appAssets, os.Args[1:])
}
