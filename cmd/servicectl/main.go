package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/roupadegala/servicecontrol/internal/config"
	"github.com/roupadegala/servicecontrol/internal/logging"
	"github.com/roupadegala/servicecontrol/internal/repository"
	"github.com/roupadegala/servicecontrol/internal/repository/postgres"
)

// app holds what every subcommand needs once the root pre-run has loaded it
type app struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
	repos  *repository.Repositories
}

func (a *app) connect() error {
	if a.cfg.Storage != config.StoragePostgres {
		return fmt.Errorf("servicectl needs STORAGE=postgres, got %q", a.cfg.Storage)
	}
	db, err := postgres.NewConnection(a.cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	a.db = db
	a.repos = postgres.NewRepositories(db, a.logger)
	return nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.logger != nil {
		_ = a.logger.Sync()
	}
}

func main() {
	a := &app{}
	defer a.close()

	rootCmd := &cobra.Command{
		Use:           "servicectl",
		Short:         "Administration tool for the service order backend",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			_ = godotenv.Load(".env")
			_ = godotenv.Load("../.env")

			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			logger, err := logging.New(cfg.Environment, cfg.LogLevel)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},
	}
	rootCmd.AddCommand(
		migrateCommand(a),
		createActorCommand(a),
		advancePhasesCommand(a),
		listOrdersCommand(a),
		seedPhasesCommand(a),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		a.close()
		os.Exit(1)
	}
}
