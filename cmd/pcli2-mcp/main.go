package main

import (
	"os"

	"github.com/lydakis/pcli2-mcp/internal/cli"
)

func main() {
	os.Exit(cli.Run(os.Args[1:]))
}
