package commands

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/pitidev/workhub/internal/client"
	"github.com/pitidev/workhub/internal/client/auth"
	"github.com/pitidev/workhub/internal/client/config"
	"github.com/pitidev/workhub/internal/client/credstore"
	"github.com/pitidev/workhub/internal/client/errors"
	"github.com/pitidev/workhub/internal/client/output"
)

// Version is set at build time via -ldflags
var Version = "dev"

var (
	// Global flags
	flagURL         string
	flagToken       string
	flagJSON        bool
	flagVerbose     bool
	flagTimeout     time.Duration
	flagYes         bool
	flagConfig      string
	flagCredentials string
)

// rootCmd represents the base command
var rootCmd = &cobra.Command{
	Use:   "workhub",
	Short: "Workhub CLI client",
	Long: `workhub is a command-line client for the Workhub project API.

Access tokens are renewed automatically with the stored refresh token. When
the refresh token is rejected the stored credentials are removed and you are
asked to log in again.`,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute executes the root command
func Execute(ctx context.Context) error {
	return rootCmd.ExecuteContext(ctx)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagURL, "url", "", "Server URL (or use WORKHUB_URL env var)")
	rootCmd.PersistentFlags().StringVar(&flagToken, "token", "", "Access token to use instead of stored credentials (or use WORKHUB_TOKEN env var)")
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "Output in JSON format")
	rootCmd.PersistentFlags().BoolVar(&flagVerbose, "verbose", false, "Enable verbose logging")
	rootCmd.PersistentFlags().DurationVar(&flagTimeout, "timeout", 0, "HTTP request timeout (default from config, 30s)")
	rootCmd.PersistentFlags().BoolVarP(&flagYes, "yes", "y", false, "Skip confirmation prompts")
	rootCmd.PersistentFlags().StringVar(&flagConfig, "config", "", "Config file (default ~/.config/workhub/config.yaml)")
	rootCmd.PersistentFlags().StringVar(&flagCredentials, "credentials", "", "Credential store URI: file://<path>, keyring://<service> or memory://")
}

// configPath returns the config file selected by --config or the default location
func configPath() string {
	if flagConfig != "" {
		return flagConfig
	}
	path, err := config.DefaultPath()
	if err != nil {
		errors.ExitWithError(err, "failed to locate config file")
	}
	return path
}

// loadConfig loads the CLI config, applying --credentials
func loadConfig() *config.Config {
	cfg, err := config.Load(configPath())
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}
	if flagCredentials != "" {
		cfg.Credentials = flagCredentials
	}
	if flagTimeout > 0 {
		cfg.Timeout = flagTimeout
	}
	return cfg
}

// newLogger returns a debug logger on stderr with --verbose, otherwise nil
func newLogger() *slog.Logger {
	if !flagVerbose {
		return nil
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// newClient builds an API client for serverURL backed by store
func newClient(cfg *config.Config, serverURL string, store credstore.Store) *client.Client {
	opts := []client.Option{
		client.WithTimeout(cfg.Timeout),
		client.WithSingleFlightRefresh(cfg.Refresh.SingleFlight),
		client.WithUserAgent("workhub-cli/" + Version),
		client.WithLoginRedirector(client.RedirectFunc(func(cause error) {
			if !flagJSON {
				output.PrintWarning("Your session has expired and stored credentials were removed")
			}
		})),
	}
	if logger := newLogger(); logger != nil {
		opts = append(opts, client.WithLogger(logger))
	}
	return client.New(serverURL, store, opts...)
}

// getAuthenticatedClient resolves URL and credentials using normal precedence:
// - URL: --url flag > WORKHUB_URL env var > URL saved by login
// - Credentials: --token flag > WORKHUB_TOKEN env var > credential store
func getAuthenticatedClient() *client.Client {
	cfg := loadConfig()

	serverURL, err := config.ResolveURL(flagURL, cfg)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	store, err := auth.ResolveStore(flagToken, cfg.Credentials)
	if err != nil {
		errors.ExitWithCode(errors.ExitInvalidArguments, err.Error())
	}

	return newClient(cfg, serverURL, store)
}
