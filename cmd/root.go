package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/s0up4200/sdgrab/config"
	"github.com/s0up4200/sdgrab/credentials"
	"github.com/s0up4200/sdgrab/schedulesdirect"
	"github.com/s0up4200/sdgrab/token"
)

var (
	version   = "dev"
	buildTime = "unknown"

	cfgFile string
	cfg     *config.Config
	logger  zerolog.Logger
	cache   *credentials.SQLiteCache
	client  *schedulesdirect.Client

	// Command flags
	filterExpr string
	preset     string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "sdgrab",
	Short: "A Schedules Direct listings client",
	Long: `sdgrab talks to the Schedules Direct JSON API. It authenticates with a
cached password hash, manages lineups and fetches station schedules and
program details with retries and automatic re-authentication.`,
	SilenceUsage:       true,
	PersistentPreRunE:  initializeApp,
	PersistentPostRunE: closeApp,
}

// SetVersion records build information for the version command.
func SetVersion(v, built string) {
	version = v
	buildTime = built
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")

	// Add subcommands
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(tokenCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(lineupsCmd)
	rootCmd.AddCommand(stationsCmd)
	rootCmd.AddCommand(schedulesCmd)
}

// initializeApp initializes the configuration, credential cache and client
func initializeApp(cmd *cobra.Command, args []string) error {
	if cmd == versionCmd {
		return nil
	}

	// Load configuration
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	// Setup logger
	logger = setupLogger(cfg.Logging)

	cache, err = credentials.OpenSQLiteCache(cmd.Context(), cfg.Database.Path)
	if err != nil {
		return fmt.Errorf("failed to open credential cache: %w", err)
	}

	provider := credentials.NewProvider(cache, credentials.Source{
		Username: cfg.SchedulesDirect.Username,
		Password: cfg.SchedulesDirect.Password,
	}, logger)

	client, err = schedulesdirect.NewClient(cfg.SchedulesDirect.URL, provider, logger,
		schedulesdirect.WithAPIVersion(cfg.SchedulesDirect.APIVersion),
		schedulesdirect.WithTimeout(cfg.SchedulesDirect.Timeout),
		schedulesdirect.WithUserAgent(userAgent()),
		schedulesdirect.WithRetryPolicy(cfg.Retry.Policy()),
		schedulesdirect.WithAutoReauth(cfg.SchedulesDirect.AutoReauth),
		schedulesdirect.WithTokenOptions(token.WithObserver(func(from, to token.State) {
			logger.Debug().Str("from", from.String()).Str("to", to.String()).Msg("Token state changed")
		})),
	)
	if err != nil {
		return fmt.Errorf("failed to create Schedules Direct client: %w", err)
	}

	return nil
}

func closeApp(cmd *cobra.Command, args []string) error {
	if cache == nil {
		return nil
	}
	err := cache.Close()
	cache = nil
	return err
}

func userAgent() string {
	if cfg.SchedulesDirect.UserAgent != schedulesdirect.DefaultUserAgent {
		return cfg.SchedulesDirect.UserAgent
	}
	return schedulesdirect.DefaultUserAgent + "/" + version
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
	// Set log level
	level := zerolog.InfoLevel
	switch strings.ToLower(cfg.Level) {
	case "trace":
		level = zerolog.TraceLevel
	case "debug":
		level = zerolog.DebugLevel
	case "warn":
		level = zerolog.WarnLevel
	case "error":
		level = zerolog.ErrorLevel
	}

	zerolog.SetGlobalLevel(level)

	// Configure output format
	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Console format, colored only on a terminal
	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !isatty.IsTerminal(os.Stderr.Fd()),
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("sdgrab %s (built %s)\n", version, buildTime)
	},
}
