package commands

import (
	"fmt"
	"log/slog"
	"os"

	"decantifume-api/internal/client"
	"decantifume-api/internal/config"
	"decantifume-api/internal/logger"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"gorm.io/gorm"
)

var rootCmd = &cobra.Command{
	Use:   "decantifume",
	Short: "Decantifume perfume decant store API",
	Long: `Decantifume serves the store's REST API.

Running the binary without a subcommand starts the HTTP server.`,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return runServe()
	},
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(createAdminCmd)
}

// loadConfig reads .env when present, then the process environment.
func loadConfig() (*config.Config, error) {
	if err := godotenv.Load(); err != nil {
		fmt.Println("No .env file found (ok in prod)")
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}

	logger.New(&cfg.Log)
	return cfg, nil
}

// openDB connects and brings the schema up to date.
func openDB(cfg *config.Config) (*gorm.DB, error) {
	db, err := client.NewDBClient(&cfg.Database)
	if err != nil {
		return nil, err
	}

	if err := client.Migrate(db); err != nil {
		closeDB(db)
		return nil, err
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		slog.Warn("close database", "error", err)
	}
}
