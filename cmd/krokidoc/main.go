package main

import (
	"os"

	"github.com/dshills/krokidoc/internal/cli"
)

func main() {
	os.Exit(cli.Run())
}
