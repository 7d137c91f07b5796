// Command corvid is the UCI engine process entry point: it loads
// engineconfig defaults, wires attack.Init, and runs the uci command
// loop over stdin/stdout until the GUI sends "quit" or closes the pipe.
package main

import (
	"flag"
	"os"

	"github.com/corvidchess/corvid/attack"
	"github.com/corvidchess/corvid/engineconfig"
	"github.com/corvidchess/corvid/enginelog"
	"github.com/corvidchess/corvid/uci"
)

func main() {
	configPath := flag.String("config", "", "path to a TOML file of default engine options")
	flag.Parse()

	attack.Init()

	opts := engineconfig.Defaults()
	if *configPath != "" {
		loaded, err := engineconfig.Load(*configPath)
		if err != nil {
			enginelog.Errorf("failed to load config %q, using defaults: %s", *configPath, err)
		} else {
			opts = loaded
		}
	}
	enginelog.Debugf("corvid starting with options: %+v", opts)

	uci.Run(os.Stdin, os.Stdout, opts)
}
