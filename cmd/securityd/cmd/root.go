package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/bittyphp/bitty-security/cmd/securityd/cmd/users"
	"github.com/bittyphp/bitty-security/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "securityd",
	Short: "Session-backed security server",
	Long: `securityd serves an HTTP application behind the security middleware.
Form login and HTTP Basic shields guard configured path patterns, with
sessions held in memory or in a database.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
