package main

import (
	"fmt"
	"os"

	"github.com/gardenbase/seedvault/cmd"
	"github.com/gardenbase/seedvault/internal/conf"
	"github.com/gardenbase/seedvault/internal/logging"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	logging.Init()

	settings, err := conf.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error loading configuration: %v\n", err)
		os.Exit(1)
	}
	settings.Version = version

	if err := conf.ValidateSettings(settings); err != nil {
		fmt.Fprintf(os.Stderr, "invalid configuration: %v\n", err)
		os.Exit(1)
	}

	rootCmd := cmd.RootCommand(settings)
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(1)
	}
}
