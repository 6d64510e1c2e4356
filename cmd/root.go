package cmd

import (
	"fmt"

	"github.com/chris-regnier/focusflow/internal/config"
	"github.com/chris-regnier/focusflow/internal/logging"
	"github.com/chris-regnier/focusflow/internal/storage"
	"github.com/chris-regnier/focusflow/internal/storage/appwrite"
	"github.com/chris-regnier/focusflow/internal/storage/markdown"
	"github.com/chris-regnier/focusflow/internal/storage/sqlite"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	cfgFile        string
	jsonOutput     bool
	storageBackend string
	verbose        bool
	appConfig      *config.Config
	store          storage.Storage
	logger         *zap.Logger
)

// setup loads config, the logger and storage before any command runs.
// Tests replace it to inject a prepared store.
var setup = loadEnvironment

func loadEnvironment() error {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	appConfig = cfg

	// Override storage backend from flag
	if storageBackend != "" {
		appConfig.Storage = storageBackend
	}

	logger, err = logging.New(logging.Options{
		Level:   appConfig.Log.Level,
		File:    appConfig.LogFile(),
		Verbose: verbose,
	})
	if err != nil {
		return err
	}

	store, err = openStorage(appConfig)
	if err != nil {
		return withCode(exitStorage, err)
	}
	logger.Debug("storage ready", zap.String("backend", appConfig.Storage), zap.String("data_dir", appConfig.DataDir))
	return nil
}

func openStorage(cfg *config.Config) (storage.Storage, error) {
	switch cfg.Storage {
	case "markdown":
		s, err := markdown.New(cfg.DataDir)
		if err != nil {
			return nil, fmt.Errorf("initializing markdown storage: %w", err)
		}
		return s, nil
	case "sqlite":
		s, err := sqlite.NewWithDriver(cfg.DataDir, cfg.SQLiteDriver)
		if err != nil {
			return nil, fmt.Errorf("initializing sqlite storage: %w", err)
		}
		return s, nil
	case "appwrite":
		s, err := appwrite.New(appwrite.Config{
			Endpoint:   cfg.Appwrite.Endpoint,
			ProjectID:  cfg.Appwrite.ProjectID,
			APIKey:     cfg.Appwrite.APIKey,
			DatabaseID: cfg.Appwrite.DatabaseID,
		})
		if err != nil {
			return nil, fmt.Errorf("initializing appwrite storage: %w", err)
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown storage backend: %s (use sqlite, markdown or appwrite)", cfg.Storage)
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "focusflow",
		Short: "Tasks, focus timer, notes and calendar in your terminal",
		Long: `focusflow is a personal productivity tool: tasks, a pomodoro focus timer,
notes filed in folders, and a calendar that syncs with Google Calendar.

Run it without arguments to see today's dashboard.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return setup()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInsights(cmd, 0)
		},
	}

	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file path")
	root.PersistentFlags().BoolVar(&jsonOutput, "json", false, "output in JSON format")
	root.PersistentFlags().StringVar(&storageBackend, "storage", "", "storage backend (sqlite|markdown|appwrite)")
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	// Silence Cobra's built-in error and usage printing so we control stderr output
	root.SilenceErrors = true
	root.SilenceUsage = true

	root.AddCommand(
		newTaskCmd(),
		newTimerCmd(),
		newNoteCmd(),
		newFolderCmd(),
		newCalCmd(),
		newInsightsCmd(),
		newSettingsCmd(),
		newStatusCmd(),
		newInitShellCmd(),
		newMCPServeCmd(),
		newSeedCmd(),
	)
	return root
}

// Execute runs the root command.
func Execute() error {
	defer func() {
		if store != nil {
			_ = store.Close()
		}
		if logger != nil {
			_ = logger.Sync()
		}
	}()
	return newRootCmd().Execute()
}
