package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/pitidev/workhub/internal/auth"
	"github.com/pitidev/workhub/internal/config"
	"github.com/pitidev/workhub/internal/server"
	"github.com/pitidev/workhub/internal/storage"
)

var configFile string

// ServerCmd represents the server command
var ServerCmd = &cobra.Command{
	Use:   "server",
	Short: "Start the Workhub HTTP server",
	Long: `Start the HTTP server that issues access and refresh tokens and serves the
project API.

Configuration precedence: flags > WORKHUB_* environment variables > config file > defaults.`,
	RunE: runServer,
}

func init() {
	addServerFlags(ServerCmd)
}

func addServerFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Path to configuration file (optional, can also use WORKHUB_CONFIG_FILE env var)")
	cmd.Flags().Int("port", 8080, "Port to listen on")
	cmd.Flags().String("host", "0.0.0.0", "Address to bind")
	cmd.Flags().String("storage-uri", "file://./data/workhub.json", "Storage URI (memory://, file://, sqlite://, postgres://)")
	cmd.Flags().String("users-file", "", "YAML file of accounts to seed at startup")
	cmd.Flags().String("log-level", "info", "Log level (debug, info, warn, error)")
	cmd.Flags().String("log-format", "json", "Log format (json, text)")
}

// flagKeys maps server flags to config keys
var flagKeys = map[string]string{
	"port":        "server.port",
	"host":        "server.host",
	"storage-uri": "storage.uri",
	"users-file":  "auth.users_file",
	"log-level":   "logging.level",
	"log-format":  "logging.format",
}

func loadServerConfig(cmd *cobra.Command) (*config.Config, error) {
	// Check for config file from environment variable if not provided via flag
	if configFile == "" {
		configFile = os.Getenv("WORKHUB_CONFIG_FILE")
	}

	v := config.NewViper()
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	for name, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return nil, fmt.Errorf("failed to bind flag --%s: %w", name, err)
		}
	}

	return config.LoadWithViper(v)
}

func runServer(cmd *cobra.Command, args []string) error {
	cfg, err := loadServerConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	logger := server.NewLogger(cfg.Logging.Level, cfg.Logging.Format)

	storageURI, err := cfg.GetParsedStorageURI()
	if err != nil {
		return fmt.Errorf("invalid storage URI: %w", err)
	}

	logger.Info("Server starting",
		"port", cfg.Server.Port,
		"config_file", configFile,
		"storage_uri", storageURI.Redacted(),
		"jwt_secret", cfg.MaskSecret(),
		"users_file", cfg.Auth.UsersFile)

	store, err := storage.NewStorage(storageURI, logger)
	if err != nil {
		logger.Error("Failed to initialize storage",
			"error", err,
			"storage_uri", storageURI.Redacted())
		return fmt.Errorf("failed to initialize storage: %w", err)
	}

	if cfg.Auth.UsersFile != "" {
		if err := auth.SeedUsers(cmd.Context(), store, cfg.Auth.UsersFile, logger); err != nil {
			logger.Error("Failed to seed users",
				"error", err,
				"users_file", cfg.Auth.UsersFile)
			store.Close()
			return fmt.Errorf("failed to seed users: %w", err)
		}
	}

	issuer := auth.NewTokenIssuer(cfg.Auth.JWTSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL)
	srv := server.NewServer(cfg, logger, store, issuer)

	logger.Info("Server ready to accept connections",
		"address", fmt.Sprintf("http://%s:%d", cfg.Server.Host, cfg.Server.Port))

	if err := srv.Start(); err != nil {
		logger.Error("Server stopped with error", "error", err)
		return err
	}

	return nil
}
