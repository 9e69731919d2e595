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

	"github.com/s0up4200/tusdatos/config"
	"github.com/s0up4200/tusdatos/filter"
	"github.com/s0up4200/tusdatos/tracker"
	"github.com/s0up4200/tusdatos/tusdatos"
)

var (
	version   = "dev"
	buildTime = "unknown"

	cfgFile     string
	environment string
	timeout     time.Duration

	cfg     *config.Config
	logger  zerolog.Logger
	client  *tusdatos.Client
	jobs    *tracker.Tracker
	filters *filter.Manager
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "tusdatos",
	Short: "Run background checks against the TusDatos.co API",
	Long: `tusdatos is a CLI for the TusDatos.co background-check API. It launches
person, vehicle and identity checks, polls their results and downloads reports.

Every command prints the API response as indented JSON on stdout.`,
	SilenceUsage:      true,
	PersistentPreRunE: initializeApp,
}

// SetVersion records build information shown by the version command
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
	rootCmd.PersistentFlags().StringVarP(&environment, "environment", "e", "", "API environment: production or testing (overrides config)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 0, "per-request timeout (overrides config)")

	rootCmd.AddCommand(versionCmd)
}

// initializeApp initializes the configuration and clients
func initializeApp(cmd *cobra.Command, args []string) error {
	var err error
	cfg, err = config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("environment") {
		cfg.TusDatos.Environment = environment
	}
	if cmd.Flags().Changed("timeout") {
		cfg.TusDatos.Timeout = timeout
	}

	logger = setupLogger(cfg.Logging)

	client, err = newClient(cfg.TusDatos, logger)
	if err != nil {
		return fmt.Errorf("failed to create TusDatos client: %w", err)
	}

	jobs = tracker.New(client, logger,
		tracker.WithPollInterval(cfg.Tracker.PollInterval),
		tracker.WithConcurrency(cfg.Tracker.Concurrency),
	)

	filters = filter.NewManager()
	if err := filters.RegisterFilters(cfg.Filters); err != nil {
		return fmt.Errorf("invalid filter preset: %w", err)
	}

	logger.Debug().
		Str("environment", client.Environment().String()).
		Str("base_url", client.BaseURL()).
		Msg("TusDatos client ready")

	return nil
}

func newClient(c config.TusDatosConfig, logger zerolog.Logger) (*tusdatos.Client, error) {
	opts := []tusdatos.Option{
		tusdatos.WithTimeout(c.Timeout),
		tusdatos.WithLogger(logger),
		tusdatos.WithUserAgent("tusdatos-cli/" + version),
	}
	if c.UserAgent != "" {
		opts = append(opts, tusdatos.WithUserAgent(c.UserAgent))
	}
	if c.Username != "" || c.Password != "" {
		opts = append(opts, tusdatos.WithCredentials(c.Username, c.Password))
	}
	return tusdatos.NewClient(c.Env(), opts...)
}

// setupLogger configures the zerolog logger
func setupLogger(cfg config.LoggingConfig) zerolog.Logger {
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

	if cfg.Format == "json" {
		return zerolog.New(os.Stderr).With().Timestamp().Logger()
	}

	// Colour only when asked for and stderr is a terminal
	fd := os.Stderr.Fd()
	tty := isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)

	output := zerolog.ConsoleWriter{
		Out:        os.Stderr,
		TimeFormat: time.RFC3339,
		NoColor:    !cfg.Color || !tty,
	}

	return zerolog.New(output).With().Timestamp().Logger()
}

// versionCmd prints build information
var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	// no config or client needed
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error { return nil },
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "tusdatos %s (built %s)\n", version, buildTime)
		return nil
	},
}
