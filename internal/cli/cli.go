package cli

import (
	"fmt"
	"log"
	"os"

	"github.com/jessevdk/go-flags"

	"github.com/viant/qterm/internal/config"
)

// version is set via SetVersion before Run, normally from a build-time
// ldflags override in cmd/qterm/main.go.
var version = "dev"

// SetVersion overrides the string printed by -v/--version.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Run parses args and executes the selected sub-command.
func Run(args []string) {
	opts := &Options{}
	var first string
	if len(args) > 0 {
		first = args[0]
	}
	opts.Init(first)

	if hasVersionFlag(args) {
		fmt.Println(version)
		os.Exit(0)
	}

	config.Home() // ensures the workspace directory exists before any subcommand runs
	log.SetPrefix("qterm: ")
	log.SetFlags(0)

	parser := flags.NewParser(opts, flags.HelpFlag|flags.PassDoubleDash)
	if _, err := parser.ParseArgs(args); err != nil {
		if flags.WroteHelp(err) {
			os.Exit(0)
		}
		log.Fatalf("%v", err)
	}
}

func hasVersionFlag(args []string) bool {
	for _, a := range args {
		if a == "-v" || a == "--version" {
			return true
		}
	}
	return false
}
