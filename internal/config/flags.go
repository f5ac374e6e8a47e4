package config

import (
	"flag"
	"os"

	"github.com/dmitrijs2005/keyvault/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
//	-d string   data directory (default from Config)
//	-l string   log level (default from Config)
//
// Only -d and -l are picked out of os.Args, so the -c flag handled by
// parseJson does not trip the parser.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-d", "-l"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)
	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "directory holding the vault files")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}
}
