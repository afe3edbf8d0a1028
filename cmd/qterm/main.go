package main

import (
	"os"

	"github.com/viant/qterm/internal/cli"
)

// Version is populated by build ldflags in CI/release builds.
var Version = "dev"

func main() {
	cli.SetVersion(Version)
	cli.Run(os.Args[1:])
}
