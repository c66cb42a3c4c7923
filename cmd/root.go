// Package cmd assembles the seedvault command line interface.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	exportcmd "github.com/gardenbase/seedvault/cmd/export"
	"github.com/gardenbase/seedvault/cmd/serve"
	"github.com/gardenbase/seedvault/internal/conf"
)

// RootCommand creates and returns the root command.
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "seedvault",
		Short: "Seedvault seed catalog",
		Long:  "Seedvault manages a seed catalog with category taxonomy, AI-assisted data entry and CSV export.",
	}

	if err := setupFlags(rootCmd, settings); err != nil {
		fmt.Printf("error setting up flags: %v\n", err)
	}

	rootCmd.AddCommand(
		serve.Command(settings),
		exportcmd.Command(settings),
	)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}
	return nil
}
