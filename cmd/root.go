package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mindwell/mindwell-go/cmd/prefs"
	"github.com/mindwell/mindwell-go/cmd/watch"
	"github.com/mindwell/mindwell-go/internal/conf"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "mindwell",
		Short: "MindWell notification client",
		Long:  "Client for the MindWell notification API: watches the delivery feed and manages notification preferences.",
	}

	// Set up the global flags for the root command.
	if err := setupFlags(rootCmd, settings); err != nil {
		cobra.CheckErr(err)
	}

	subcommands := []*cobra.Command{
		watch.Command(settings),
		prefs.Command(settings),
	}
	rootCmd.AddCommand(subcommands...)

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		// Flags override file and environment values; validate the merged
		// result before any subcommand touches the backend
		return conf.ValidateSettings(settings)
	}

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) error {
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", viper.GetBool("debug"), "Enable debug output")
	rootCmd.PersistentFlags().StringVar(&settings.Backend.BaseURL, "server", viper.GetString("backend.baseurl"), "MindWell API base URL")
	rootCmd.PersistentFlags().StringVar(&settings.Session.Token, "token", viper.GetString("session.token"), "Session bearer token (JWT)")
	rootCmd.PersistentFlags().StringVar(&settings.Session.TokenFile, "token-file", viper.GetString("session.tokenfile"), "File to read the session token from")

	if err := viper.BindPFlags(rootCmd.PersistentFlags()); err != nil {
		return fmt.Errorf("error binding flags: %w", err)
	}

	return nil
}
