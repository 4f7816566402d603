package main

import (
	"context"
	"embed"
	"fmt"
	"os"

	"recipe-desk/cli"
)

//go:embed static
var staticFiles embed.FS

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	if err := cli.RootCmd(staticFiles, version).ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "recipe-desk:", err)
		os.Exit(1)
	}
}
