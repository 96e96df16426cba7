package cmd

import (
	"fmt"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/sdgrab/schedulesdirect"
)

var (
	days          int
	fetchPrograms bool
)

// schedulesCmd represents the schedules command
var schedulesCmd = &cobra.Command{
	Use:   "schedules <lineup>",
	Short: "Fetch schedules for the stations of a lineup",
	Long: `Fetch schedules for every station of a lineup that matches the filter.
Stations are requested in chunks; chunks that fail after retries are
reported and the rest of the results are kept.`,
	Args: cobra.ExactArgs(1),
	RunE: runSchedules,
}

func init() {
	schedulesCmd.Flags().IntVar(&days, "days", 1, "number of days to fetch, starting today")
	schedulesCmd.Flags().BoolVar(&fetchPrograms, "programs", false, "also fetch program details")
	schedulesCmd.Flags().StringVarP(&filterExpr, "filter", "f", "", "filter expression")
	schedulesCmd.Flags().StringVarP(&preset, "preset", "p", "", "use a named filter from config")
}

func runSchedules(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	if days < 1 {
		return fmt.Errorf("--days must be at least 1")
	}

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

	dates := scheduleDates(time.Now().UTC(), days)
	stations := make([]schedulesdirect.StationRequest, 0, len(channels))
	seen := make(map[string]bool, len(channels))
	for _, ch := range channels {
		if seen[ch.Station.StationID] {
			continue
		}
		seen[ch.Station.StationID] = true
		stations = append(stations, schedulesdirect.StationRequest{StationID: ch.Station.StationID, Date: dates})
	}

	logger.Info().
		Int("stations", len(stations)).
		Int("days", days).
		Msg("Fetching schedules")

	opts := cfg.Batch.Options()
	result := client.FetchSchedules(ctx, stations, opts)

	var airings int
	programIDs := make(map[string]struct{})
	for _, s := range result.Items {
		airings += len(s.Programs)
		for _, a := range s.Programs {
			programIDs[a.ProgramID] = struct{}{}
		}
	}

	fmt.Printf("✓ Fetched %d schedules with %d airings (%d programs)\n", len(result.Items), airings, len(programIDs))
	reportFailures(result.Failed)

	if fetchPrograms && len(programIDs) > 0 {
		ids := make([]string, 0, len(programIDs))
		for id := range programIDs {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		programs := client.FetchPrograms(ctx, ids, opts)
		fmt.Printf("✓ Fetched %d of %d programs\n", len(programs.Items), len(ids))
		reportFailures(programs.Failed)
		if err := programs.Err(); err != nil {
			return err
		}
	}

	return result.Err()
}

func reportFailures(failed []schedulesdirect.ChunkError) {
	for _, f := range failed {
		fmt.Printf("  ✗ chunk %d (%d items): %v\n", f.Index, f.Size, f.Err)
	}
}

// scheduleDates returns n consecutive dates starting at from.
func scheduleDates(from time.Time, n int) []string {
	dates := make([]string, n)
	for i := range dates {
		dates[i] = from.AddDate(0, 0, i).Format("2006-01-02")
	}
	return dates
}
