package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"mailroom-simulator/internal/adapters/repositories"
	"mailroom-simulator/internal/config"
	"mailroom-simulator/internal/platform/db"
	"mailroom-simulator/internal/platform/logging"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	if err := godotenv.Load(); err != nil {
		fmt.Fprintln(os.Stderr, "No .env file found (using environment variables)")
	}
	slog.SetDefault(logging.New(os.Stderr, config.Get("LOG_LEVEL", "info"), "text"))

	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

type dbOptions struct {
	dialect     string
	sqlitePath  string
	databaseURL string
	seedPath    string
}

func newRootCmd() *cobra.Command {
	opts := &dbOptions{}

	root := &cobra.Command{
		Use:          "dbtool",
		Short:        "Manage the automail mail schedule and report database",
		SilenceUsage: true,
	}

	flags := root.PersistentFlags()
	flags.StringVar(&opts.dialect, "dialect", config.Get("DB_DIALECT", string(db.SQLite)), "database dialect: sqlite or postgres")
	flags.StringVar(&opts.sqlitePath, "sqlite-path", config.Get("DB_PATH", "data/automail.db"), "sqlite database file")
	flags.StringVar(&opts.databaseURL, "database-url", os.Getenv("DATABASE_URL"), "postgres connection string")

	initCmd := &cobra.Command{
		Use:   "init",
		Short: "Create the mail_items, runs and deliveries tables",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), opts, func(ctx context.Context, conn *sql.DB, dialect db.Dialect) error {
				return initSchema(ctx, conn)
			})
		},
	}

	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Create the schema and upsert a mail schedule from JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			return withDB(cmd.Context(), opts, func(ctx context.Context, conn *sql.DB, dialect db.Dialect) error {
				return initAndSeed(ctx, conn, dialect, opts.seedPath)
			})
		},
	}
	seedCmd.Flags().StringVar(&opts.seedPath, "file", config.Get("SEED_PATH", "data/seeds/mail.json"), "mail schedule JSON file")

	root.AddCommand(initCmd, seedCmd)
	return root
}

func withDB(ctx context.Context, opts *dbOptions, fn func(context.Context, *sql.DB, db.Dialect) error) error {
	var (
		conn *sql.DB
		err  error
	)

	dialect := db.Dialect(strings.ToLower(opts.dialect))
	switch dialect {
	case db.SQLite:
		conn, err = db.OpenSQLite(opts.sqlitePath)
	case db.Postgres:
		if strings.TrimSpace(opts.databaseURL) == "" {
			return errors.New("DATABASE_URL is required for the postgres dialect")
		}
		conn, err = db.Open(opts.databaseURL)
	default:
		return fmt.Errorf("unknown dialect %q", opts.dialect)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	return fn(ctx, conn, dialect)
}

func initSchema(ctx context.Context, conn *sql.DB) error {
	slog.Info("initializing database schema")
	if err := repositories.InitSchema(ctx, conn); err != nil {
		return fmt.Errorf("schema initialization failed: %w", err)
	}
	slog.Info("schema ready")
	return nil
}

func initAndSeed(ctx context.Context, conn *sql.DB, dialect db.Dialect, seedPath string) error {
	if err := initSchema(ctx, conn); err != nil {
		return err
	}

	slog.Info("seeding database", "file", seedPath)
	if err := repositories.SeedFromJSON(ctx, conn, dialect, seedPath); err != nil {
		return fmt.Errorf("seeding failed: %w", err)
	}
	slog.Info("seeding complete")
	return nil
}
