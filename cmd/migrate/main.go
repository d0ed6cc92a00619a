package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	migrate "github.com/rubenv/sql-migrate"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/johnquangdev/voice-guard/internal/infrastructure/database"
	"github.com/johnquangdev/voice-guard/pkg/config"
)

var (
	migrationsDir string
	maxSteps      int
)

var rootCmd = &cobra.Command{
	Use:           "migrate",
	Short:         "Apply or roll back the analyses schema",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return run(migrate.Up)
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations (one step unless --max is given)",
	RunE: func(cmd *cobra.Command, args []string) error {
		if maxSteps == 0 {
			maxSteps = 1
		}
		return run(migrate.Down)
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "List migrations and whether they are applied",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := connect()
		if err != nil {
			return err
		}
		defer database.CloseDB(db)

		records, err := database.MigrationStatus(db)
		if err != nil {
			return err
		}
		for _, r := range records {
			fmt.Printf("%s\tapplied %s\n", r.Id, r.AppliedAt.Format("2006-01-02 15:04:05"))
		}
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&migrationsDir, "dir", database.MigrationsDir, "migrations directory")
	rootCmd.PersistentFlags().IntVar(&maxSteps, "max", 0, "maximum number of migrations to apply (0 = all)")
	rootCmd.AddCommand(upCmd, downCmd, statusCmd)
}

func connect() (*gorm.DB, error) {
	// Only the database section is needed here
	cfg, err := config.LoadRaw()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	db, err := database.NewPostgresDB(ctx, cfg, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return db, nil
}

func run(direction migrate.MigrationDirection) error {
	db, err := connect()
	if err != nil {
		return err
	}
	defer database.CloseDB(db)

	log.Printf("🔄 Applying migrations from %s/ directory...", migrationsDir)

	n, err := database.ApplyMigrations(db, migrationsDir, direction, maxSteps)
	if err != nil {
		return err
	}

	log.Printf("✅ Successfully applied %d migration(s)!\n", n)
	return nil
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
