package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/baechuer/expense-tracker/internal/config"
	"github.com/baechuer/expense-tracker/internal/infrastructure/db/postgres"
	"github.com/baechuer/expense-tracker/internal/infrastructure/security"
)

var (
	dsn        string
	bcryptCost int
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the embedded schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.NewDB(dbAddr())
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer db.Close()

		ctx, cancel := context.WithTimeout(cmd.Context(), time.Minute)
		defer cancel()
		if err := postgres.Migrate(ctx, db); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "migrations applied")
		return nil
	},
}

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Insert the demo admin, free and premium accounts",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := config.NewDB(dbAddr())
		if err != nil {
			return fmt.Errorf("connect: %w", err)
		}
		defer db.Close()

		lg := zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger()
		n := postgres.SeedUsers(cmd.Context(), postgres.NewUserRepo(db), security.NewBcryptHasher(bcryptCost), lg)
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d users\n", n)
		return nil
	},
}

func init() {
	for _, c := range []*cobra.Command{migrateCmd, seedCmd} {
		c.Flags().StringVar(&dsn, "dsn", "", "postgres URL (defaults to DB_ADDR)")
	}
	seedCmd.Flags().IntVar(&bcryptCost, "bcrypt-cost", 10, "bcrypt cost for seeded passwords")
}

func dbAddr() string {
	if dsn != "" {
		return dsn
	}
	return os.Getenv("DB_ADDR")
}
