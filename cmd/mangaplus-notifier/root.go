package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/nhle/mangaplus-notifier/internal/app"
	"github.com/nhle/mangaplus-notifier/internal/credential"
	"github.com/nhle/mangaplus-notifier/internal/mangaplus"
	"github.com/nhle/mangaplus-notifier/internal/model"
	"github.com/nhle/mangaplus-notifier/internal/notify"
	"github.com/nhle/mangaplus-notifier/internal/store"
)

var (
	cfgFile string
	verbose bool
	cfg     *model.AppConfig
	logger  *zap.Logger
)

// rootCmd runs one check when called without a subcommand.
var rootCmd = &cobra.Command{
	Use:   "mangaplus-notifier",
	Short: "Notify about new MANGA Plus chapters",
	Long: `mangaplus-notifier checks one MANGA Plus title for a chapter you have
not acknowledged yet and shows a notification for it.

The last response is cached and only refreshed once the announced next
release time has passed. Acknowledging the notification records the
latest chapter so it is not shown again.

Example usage:
  mangaplus-notifier              # Run one check
  mangaplus-notifier status       # Show cached state without fetching
  mangaplus-notifier ack          # Acknowledge the cached latest chapter
  mangaplus-notifier history      # Show past notifications`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initConfig()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
	RunE: runCheck,
}

// Execute adds all child commands to the root command and runs it.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ~/.config/mangaplus-notifier/config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

func configPath() string {
	if cfgFile != "" {
		return cfgFile
	}
	return model.DefaultConfigPath()
}

// initConfig loads the configuration and builds the logger.
func initConfig() error {
	var err error
	cfg, err = model.LoadConfig(configPath())
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	config := zap.NewProductionConfig()
	if verbose || cfg.Log.Level == "debug" {
		config.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else if lvl, err := zapcore.ParseLevel(cfg.Log.Level); err == nil {
		config.Level = zap.NewAtomicLevelAt(lvl)
	}
	logger, err = config.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Debug("configuration loaded",
		zap.String("path", configPath()),
		zap.Int("title_id", cfg.Title.ID),
		zap.String("data_dir", cfg.DataDir),
		zap.String("backend", cfg.Notify.Backend),
	)
	return nil
}

// signalContext is canceled on SIGINT or SIGTERM.
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// openHistory opens the notification log in the data directory.
func openHistory() (*store.SQLiteStore, error) {
	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return store.NewSQLiteStore(filepath.Join(cfg.DataDir, store.HistoryFile))
}

// newApp builds the application context. Offline commands skip the
// keyring lookup and the notifier, since "auto" probes the session bus.
func newApp(history store.HistoryStore, online bool) (*app.App, error) {
	opts := app.Options{
		Config:  cfg,
		Logger:  logger,
		History: history,
	}
	if !online {
		opts.Fetcher = mangaplus.NewClient(cfg.API.BaseURL, "", cfg.FetchTimeout())
		return app.New(opts), nil
	}

	secret, err := credential.Lookup(credential.DeviceSecretKey)
	if err != nil {
		logger.Debug("device secret unavailable", zap.Error(err))
		secret = ""
	}
	opts.Fetcher = mangaplus.NewClient(cfg.API.BaseURL, secret, cfg.FetchTimeout())

	n, err := notify.New(cfg.Notify.Backend, logger.Named("notify"))
	if err != nil {
		return nil, err
	}
	opts.Notifier = n
	return app.New(opts), nil
}
