// Package cli wires the marketplace binary's subcommands: serve, migrate
// and worker.
package cli

import (
	"errors"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/iliyamo/mentor-marketplace/internal/config"
	"github.com/iliyamo/mentor-marketplace/internal/database"
	"github.com/iliyamo/mentor-marketplace/internal/logging"
)

type rootFlags struct {
	envFile  string
	logLevel string
}

// NewRootCommand returns the command tree.
func NewRootCommand() *cobra.Command {
	var f rootFlags
	root := &cobra.Command{
		Use:           "marketplace",
		Short:         "Mentor marketplace API, migrations and event worker",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			// A missing .env is normal outside development.
			if err := godotenv.Load(f.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return err
			}
			return nil
		},
	}
	root.PersistentFlags().StringVar(&f.envFile, "env-file", ".env", "dotenv file loaded before reading the environment")
	root.PersistentFlags().StringVar(&f.logLevel, "log-level", "", "override LOG_LEVEL")

	root.AddCommand(newServeCommand(&f), newMigrateCommand(&f), newWorkerCommand(&f))
	return root
}

// Execute runs the root command.
func Execute() error {
	return NewRootCommand().Execute()
}

// bootstrap loads configuration and builds the logger every subcommand
// starts from.
func bootstrap(f *rootFlags) (config.Config, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, zerolog.Nop(), err
	}
	if f.logLevel != "" {
		cfg.LogLevel = f.logLevel
	}
	return cfg, logging.New(cfg.LogLevel, cfg.Env), nil
}

func dbOptions(cfg config.Config) database.Options {
	return database.Options{User: cfg.DBUser, Pass: cfg.DBPass, Host: cfg.DBHost, Port: cfg.DBPort, Name: cfg.DBName}
}
