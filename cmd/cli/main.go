package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/jakechorley/branch-cover/cmd/cli/commands"
	"github.com/jakechorley/branch-cover/internal/config"
	"github.com/jakechorley/branch-cover/pkg/clients/sheetsclient"
	"github.com/jakechorley/branch-cover/pkg/core/coverage"
	"github.com/jakechorley/branch-cover/pkg/core/services"
	"github.com/jakechorley/branch-cover/pkg/db"
	"github.com/jakechorley/branch-cover/pkg/directory"
	"github.com/jakechorley/branch-cover/pkg/postgres"
	"github.com/jakechorley/branch-cover/pkg/utils/logging"
)

// directorySource is the union of the three read-only directories
type directorySource interface {
	coverage.StaffDirectory
	coverage.BranchDirectory
	coverage.LeaveRegistry
}

var (
	env     string
	app     = &commands.AppContext{Ctx: context.Background()}
	closers []func()
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "branchcover",
		Short: "Branch Cover CLI - Manage temporary staff reassignments",
		Long:  `A CLI tool for temporarily reassigning staff between branches and viewing leave coverage.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initApp()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			shutdown()
		},
		SilenceUsage: true,
	}

	rootCmd.PersistentFlags().StringVarP(&env, "env", "e", "", "Environment (required: test, prod, etc.)")
	_ = rootCmd.MarkPersistentFlagRequired("env")

	rootCmd.AddCommand(commands.CreateAssignmentCmd(app))
	rootCmd.AddCommand(commands.CancelAssignmentCmd(app))
	rootCmd.AddCommand(commands.GetAssignmentCmd(app))
	rootCmd.AddCommand(commands.ListAssignmentsCmd(app))
	rootCmd.AddCommand(commands.DashboardCmd(app))
	rootCmd.AddCommand(commands.OutlookCmd(app))
	rootCmd.AddCommand(commands.ServeCmd(app))
	rootCmd.AddCommand(commands.InteractiveCmd(app))

	if err := rootCmd.Execute(); err != nil {
		shutdown()
		os.Exit(1)
	}
}

// initApp sets up logger, config, directory, store and service
func initApp() error {
	var err error

	app.Logger, err = logging.InitLogger(env)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	app.Logger.Info("Starting application", zap.String("environment", env))

	app.Logger.Info("Loading configuration")
	app.Cfg, err = config.LoadWithEnv(env)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}
	app.Logger.Debug("Configuration loaded successfully",
		zap.String("store_backend", app.Cfg.StoreBackend),
		zap.String("directory_source", app.Cfg.Directory.Source),
		zap.String("timezone", app.Cfg.Timezone))

	dir, err := initDirectory()
	if err != nil {
		return err
	}

	store, err := initStore()
	if err != nil {
		return err
	}

	app.Service = services.NewAssignmentService(store, dir, dir, dir, app.Logger,
		services.WithLocation(app.Cfg.Location()))
	app.Logger.Debug("Assignment service initialized")

	return nil
}

func initDirectory() (directorySource, error) {
	switch app.Cfg.Directory.Source {
	case config.DirectorySheets:
		app.Logger.Info("Initializing sheets client")
		client, err := sheetsclient.NewClient(app.Ctx, app.Cfg.Directory.CredentialsFile)
		if err != nil {
			return nil, fmt.Errorf("failed to create sheets client: %w", err)
		}
		app.Logger.Debug("Sheets client initialized successfully",
			zap.String("spreadsheet_id", app.Cfg.Directory.SpreadsheetID))
		return sheetsclient.NewDirectory(client, app.Cfg.Directory, app.Logger), nil

	default:
		app.Logger.Info("Loading directory file", zap.String("path", app.Cfg.Directory.File))
		snap, err := directory.LoadFile(app.Cfg.Directory.File)
		if err != nil {
			return nil, fmt.Errorf("failed to load directory: %w", err)
		}
		staff, branches, leaves := snap.Counts()
		app.Logger.Debug("Directory loaded",
			zap.Int("staff", staff),
			zap.Int("branches", branches),
			zap.Int("leaves", leaves))
		return snap, nil
	}
}

func initStore() (db.AssignmentStore, error) {
	switch app.Cfg.StoreBackend {
	case config.StorePostgres:
		app.Logger.Info("Connecting to database")
		pg, err := postgres.NewDB(app.Ctx, app.Cfg.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		closers = append(closers, pg.Close)

		app.Logger.Info("Running database migrations")
		if err := pg.RunMigrations(app.Ctx); err != nil {
			return nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		app.Logger.Info("Database initialized successfully")
		return pg, nil

	default:
		app.Logger.Warn("Using in-memory store; assignments are lost when the process exits")
		return db.NewMemoryStore(), nil
	}
}

func shutdown() {
	for i := len(closers) - 1; i >= 0; i-- {
		closers[i]()
	}
	closers = nil
	if app.Logger != nil {
		_ = app.Logger.Sync()
	}
}
