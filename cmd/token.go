package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// tokenCmd represents the token command
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Authenticate and show the session token state",
	Long: `Request a session token with the cached credentials. On first use the
password from SD_PWD (or the config file) is hashed and written to the cache.`,
	RunE: runToken,
}

var tokenClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Remove cached credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cache.Clear(cmd.Context()); err != nil {
			return fmt.Errorf("failed to clear credential cache: %w", err)
		}
		fmt.Println("✓ Cached credentials removed")
		return nil
	},
}

func init() {
	tokenCmd.AddCommand(tokenClearCmd)
}

func runToken(cmd *cobra.Command, args []string) error {
	fmt.Printf("Authenticating with %s...\n", client.BaseURL())

	if err := client.Authenticate(cmd.Context()); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	snap := client.Tokens().Snapshot()
	fmt.Println("✓ Authentication successful!")
	fmt.Printf("- State: %s\n", client.Tokens().State())
	fmt.Printf("- Issued: %s\n", snap.IssuedAt.Format("2006-01-02 15:04:05"))
	if snap.ServerID != "" {
		fmt.Printf("- Server: %s\n", snap.ServerID)
	}

	return nil
}
