package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

// statusCmd represents the status command
var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show account and service status",
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	status, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	fmt.Printf("Account:\n")
	fmt.Printf("- Expires: %s\n", status.Account.Expires)
	fmt.Printf("- Lineups: %d of %d\n", len(status.Lineups), status.Account.MaxLineups)
	fmt.Printf("- Last data update: %s\n", status.LastDataUpdate)

	service := "Offline"
	if status.IsOnline() {
		service = "Online"
	}
	fmt.Printf("\nService: %s\n", service)
	for _, s := range status.SystemStatus {
		if s.Message != "" {
			fmt.Printf("  • %s %s: %s\n", s.Date, s.Status, s.Message)
		}
	}

	return nil
}
