// Command server runs the ProjectHub messaging and notification backend.
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/welldanyogia/projecthub-backend/internal/config"
	"github.com/welldanyogia/projecthub-backend/internal/database"
	"gorm.io/gorm"
)

var version = "dev"

var rootCmd = &cobra.Command{
	Use:   "projecthub",
	Short: "ProjectHub messaging and notification backend",
	Long: `ProjectHub serves threaded mail, notifications and real-time
pushes for the project management frontend.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func main() {
	// A missing .env is fine; the environment may already be set
	_ = godotenv.Load(".env")

	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(serveCmd, migrateCmd, notifyProjectStartsCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// setup loads configuration, installs the JSON logger and opens the database
func setup() (*config.Config, *slog.Logger, *gorm.DB, error) {
	cfg, err := config.LoadWithValidation()
	if err != nil {
		return nil, nil, nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)
	cfg.LogConfig(logger)

	db, err := database.Connect(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		return nil, nil, nil, err
	}

	return cfg, logger, db, nil
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Create or update the database schema",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, _, db, err := setup()
		if err != nil {
			return err
		}
		defer database.Close(db)

		return database.Migrate(db)
	},
}
