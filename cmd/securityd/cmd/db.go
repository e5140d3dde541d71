package cmd

import (
	"context"
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/bittyphp/bitty-security/internal/db/bunx"
	"github.com/bittyphp/bitty-security/pkg/security/provider"
	"github.com/bittyphp/bitty-security/pkg/security/session"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database management commands",
	Long:  `Commands for managing the database schema.`,
}

var dbInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize database tables",
	Long:  `Creates the user and session tables in the database. Run this once during initial setup.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		if cfg.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL must be set")
		}

		db, err := bunx.NewDB(cfg.DatabaseURL, cfg.MaxDBConnections)
		if err != nil {
			return fmt.Errorf("failed to connect to database: %w", err)
		}
		defer bunx.Close(db)

		ctx := context.Background()
		if err := provider.NewBun(db).CreateTable(ctx); err != nil {
			return fmt.Errorf("create users table: %w", err)
		}
		if err := session.CreateSessionTable(ctx, db); err != nil {
			return fmt.Errorf("create session table: %w", err)
		}

		log.Printf("Database tables initialized successfully")
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbInitCmd)
	rootCmd.AddCommand(dbCmd)
}
