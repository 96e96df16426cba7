package cmd

import (
	"context"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/s0up4200/sdgrab/filter"
	"github.com/s0up4200/sdgrab/schedulesdirect"
)

var (
	country    string
	postalCode string
)

// lineupsCmd represents the lineups command
var lineupsCmd = &cobra.Command{
	Use:   "lineups",
	Short: "List the lineups on the account",
	RunE:  runLineups,
}

var lineupsSearchCmd = &cobra.Command{
	Use:   "search",
	Short: "Find headends and lineups for a postal code",
	RunE:  runLineupsSearch,
}

var lineupsAddCmd = &cobra.Command{
	Use:   "add <lineup>",
	Short: "Add a lineup to the account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeLineup(cmd.Context(), args[0], client.LineupAdd)
	},
}

var lineupsDeleteCmd = &cobra.Command{
	Use:   "delete <lineup>",
	Short: "Remove a lineup from the account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return changeLineup(cmd.Context(), args[0], client.LineupDelete)
	},
}

// stationsCmd represents the stations command
var stationsCmd = &cobra.Command{
	Use:   "stations <lineup>",
	Short: "List the stations of a lineup matching the filter",
	Long: `List the channels of a lineup on the account. An optional filter
expression selects stations, for example:

  sdgrab stations USA-NY67791-X -f 'hasLanguage("en") and not IsCommercialFree'`,
	Args: cobra.ExactArgs(1),
	RunE: runStations,
}

func init() {
	lineupsSearchCmd.Flags().StringVar(&country, "country", "USA", "ISO 3166-1 alpha-3 country code")
	lineupsSearchCmd.Flags().StringVar(&postalCode, "postal", "", "postal code")
	_ = lineupsSearchCmd.MarkFlagRequired("postal")

	lineupsCmd.AddCommand(lineupsSearchCmd)
	lineupsCmd.AddCommand(lineupsAddCmd)
	lineupsCmd.AddCommand(lineupsDeleteCmd)

	stationsCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	stationsCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a named filter from config")
}

func runLineups(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	status, err := client.Status(ctx)
	if err != nil {
		return fmt.Errorf("failed to get status: %w", err)
	}

	if len(status.Lineups) == 0 {
		fmt.Println("No lineups on this account. Use 'sdgrab lineups search' to find one.")
		return nil
	}

	fmt.Printf("%-28s %-10s %s\n", "LINEUP", "TRANSPORT", "NAME")
	fmt.Println(strings.Repeat("━", 80))
	for _, l := range status.Lineups {
		if l.IsDeleted {
			continue
		}
		fmt.Printf("%-28s %-10s %s\n", l.Lineup, l.Transport, l.Name)
	}

	return nil
}

func runLineupsSearch(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	if err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	headends, err := client.Headends(ctx, country, postalCode)
	if err != nil {
		return fmt.Errorf("failed to search headends: %w", err)
	}

	if len(headends) == 0 {
		fmt.Printf("No headends found for %s %s\n", country, postalCode)
		return nil
	}

	for _, h := range headends {
		fmt.Printf("%s (%s, %s)\n", h.Headend, h.Transport, h.Location)
		for _, l := range h.Lineups {
			fmt.Printf("  • %-28s %s\n", l.Lineup, l.Name)
		}
	}

	return nil
}

func changeLineup(ctx context.Context, lineupID string, change func(context.Context, string) (*schedulesdirect.ChangeResponse, error)) error {
	if err := client.Authenticate(ctx); err != nil {
		return fmt.Errorf("authentication failed: %w", err)
	}

	resp, err := change(ctx, lineupID)
	if err != nil {
		return fmt.Errorf("failed to change lineup %s: %w", lineupID, err)
	}

	fmt.Printf("✓ %s: %s\n", lineupID, resp.Response)
	fmt.Printf("- Changes remaining today: %s\n", resp.ChangesRemaining)
	return nil
}

func runStations(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	channelFilter, err := compileFilter()
	if err != nil {
		return err
	}

	channels, err := lineupChannels(ctx, args[0], channelFilter)
	if err != nil {
		return err
	}

	if len(channels) == 0 {
		fmt.Println("No stations found matching the filter criteria.")
		return nil
	}

	fmt.Printf("\nFound %d stations:\n", len(channels))
	fmt.Println(strings.Repeat("-", 80))
	for _, ch := range channels {
		fmt.Printf("%-8s %-8s %-12s %s\n", ch.Channel, ch.Station.StationID, ch.Station.CallSign, ch.Station.Name)
	}

	return nil
}

// lineupChannels loads the mapping of an account lineup and applies the
// filter when one is given.
func lineupChannels(ctx context.Context, lineupID string, channelFilter *filter.ExprFilter) ([]filter.Channel, error) {
	if err := client.Authenticate(ctx); err != nil {
		return nil, fmt.Errorf("authentication failed: %w", err)
	}

	status, err := client.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get status: %w", err)
	}

	uri := ""
	for _, l := range status.Lineups {
		if l.Lineup == lineupID && !l.IsDeleted {
			uri = l.URI
			break
		}
	}
	if uri == "" {
		return nil, fmt.Errorf("lineup '%s' is not on this account", lineupID)
	}

	mapping, err := client.LineupMap(ctx, uri)
	if err != nil {
		return nil, fmt.Errorf("failed to get lineup map: %w", err)
	}

	channels := filter.Channels(mapping)
	if channelFilter == nil {
		return channels, nil
	}

	logger.Debug().Str("filter", channelFilter.String()).Int("channels", len(channels)).Msg("Filtering stations")
	return channelFilter.Apply(channels)
}

// compileFilter returns the filter selected on the command line, or nil
// when every station should be kept.
func compileFilter() (*filter.ExprFilter, error) {
	expr, err := filterExpression(filterExpr, preset, cfg.Filter)
	if err != nil || expr == "" {
		return nil, err
	}

	f, err := filter.Compile(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid filter expression: %w", err)
	}
	return f, nil
}

// filterExpression determines the filter expression to use.
// Priority: command line filter > preset > none.
func filterExpression(expr, presetName string, presets map[string]string) (string, error) {
	if expr != "" {
		return expr, nil
	}

	if presetName != "" {
		if presetExpr, ok := presets[strings.ToLower(presetName)]; ok {
			return presetExpr, nil
		}
		return "", fmt.Errorf("preset '%s' not found in config", presetName)
	}

	return "", nil
}
