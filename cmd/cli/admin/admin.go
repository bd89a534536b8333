// Package admin holds commands that talk to the database directly rather than
// through the API.
package admin

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/crucial707/microblog/internal/config"
	"github.com/crucial707/microblog/internal/db"
)

var databaseURL string

func InitAdmin(rootCmd *cobra.Command) {
	adminCmd := &cobra.Command{
		Use:   "admin",
		Short: "Database maintenance (migrations and sample data)",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if databaseURL == "" {
				databaseURL = config.Load().DatabaseURL()
			}
		},
	}
	adminCmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "postgres URL (defaults to DB_* environment variables)")

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply or roll back schema migrations",
	}
	migrateCmd.AddCommand(migrateUpCmd(), migrateDownCmd(), migrateVersionCmd())

	adminCmd.AddCommand(migrateCmd, seedCmd())
	rootCmd.AddCommand(adminCmd)
}

func migrateUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := db.Run(databaseURL); err != nil {
				return err
			}
			fmt.Println("Migrations applied.")
			return nil
		},
	}
}

func migrateDownCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "down [steps]",
		Short: "Roll back the given number of migrations (default 1)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			steps := 1
			if len(args) == 1 {
				n, err := strconv.Atoi(args[0])
				if err != nil || n < 1 {
					return fmt.Errorf("steps must be a positive integer")
				}
				steps = n
			}
			if err := db.Down(databaseURL, steps); err != nil {
				return err
			}
			fmt.Printf("Rolled back %d migration(s).\n", steps)
			return nil
		},
	}
}

func migrateVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			v, dirty, err := db.Version(databaseURL)
			if err != nil {
				return err
			}
			if dirty {
				fmt.Printf("version %d (dirty)\n", v)
				return nil
			}
			fmt.Printf("version %d\n", v)
			return nil
		},
	}
}
