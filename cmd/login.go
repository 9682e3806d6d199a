package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Tiliavir/freshtrack/internal/config"
	"github.com/Tiliavir/freshtrack/internal/freshbooks"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in to FreshBooks with the OAuth device code flow",
	Args:  cobra.NoArgs,
	RunE:  runLogin,
}

func runLogin(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		fail(err)
	}
	if cfg.OAuth == nil {
		fmt.Fprintln(os.Stderr, "No oauth block in the config; the API token is used instead.")
		os.Exit(1)
	}

	if err := freshbooks.Login(cmd.Context(), cfg.OAuth, os.Stdout); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(2)
	}
	fmt.Println("Signed in.")
	return nil
}
