package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/dmitrymomot/mongokit"
	"github.com/dmitrymomot/mongokit/migrate"
)

var version = "dev"

// CLI flags
var (
	url      string
	host     string
	port     int
	database string
	username string
	password string
	verbose  bool
)

func main() {
	rootCmd := &cobra.Command{
		Use:           "mongokit",
		Short:         "MongoDB convenience tooling",
		Long:          "mongokit connects to a MongoDB database and runs administrative operations: connectivity checks, collection listing, JSON operation files, and versioned migrations.",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVar(&url, "url", "", "MongoDB connection string (or MONGODB_URL)")
	pf.StringVar(&host, "host", "", "database host (or MONGODB_HOST)")
	pf.IntVar(&port, "port", 0, "database port (or MONGODB_PORT)")
	pf.StringVar(&database, "database", "", "database name (or MONGODB_DATABASE)")
	pf.StringVar(&username, "username", "", "username (or MONGODB_USERNAME)")
	pf.StringVar(&password, "password", "", "password (or MONGODB_PASSWORD)")
	pf.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(pingCmd(), collectionsCmd(), execCmd(), migrateCmd())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}

// config merges environment configuration with CLI flag overrides.
func config() (mongokit.Config, error) {
	cfg, err := mongokit.LoadConfig()
	if err != nil {
		return mongokit.Config{}, err
	}

	if url != "" {
		cfg.ConnectionURL = url
	}
	if host != "" {
		cfg.Host = host
	}
	if port != 0 {
		cfg.Port = port
	}
	if database != "" {
		cfg.Database = database
	}
	if username != "" {
		cfg.Username = username
	}
	if password != "" {
		cfg.Password = password
	}

	cfg.Logger = newLogger()

	return cfg, cfg.Validate()
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func pingCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ping",
		Short: "Check database connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config()
			if err != nil {
				return err
			}
			return mongokit.WithConn(cmd.Context(), cfg, func(ctx context.Context, conn *mongokit.Conn) error {
				if err := mongokit.Healthcheck(conn)(ctx); err != nil {
					return err
				}
				fmt.Printf("OK: connected to %s\n", conn.Name())
				return nil
			})
		},
	}
}

func collectionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "collections",
		Short: "List collections in the database",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config()
			if err != nil {
				return err
			}
			return mongokit.WithConn(cmd.Context(), cfg, func(ctx context.Context, conn *mongokit.Conn) error {
				names, err := conn.ListCollectionNames(ctx)
				if err != nil {
					return err
				}
				for _, name := range names {
					fmt.Println(name)
				}
				return nil
			})
		},
	}
}

func execCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "exec <file.json>",
		Short: "Run a JSON operation file against the database",
		Long:  "Runs the operations of a migration-format JSON file without recording a version. Useful for ad-hoc administrative scripts.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			var script struct {
				Operations []migrate.Operation `json:"operations"`
			}
			if err := json.Unmarshal(data, &script); err != nil {
				return fmt.Errorf("parsing %s: %w", args[0], err)
			}

			cfg, err := config()
			if err != nil {
				return err
			}
			return mongokit.WithConn(cmd.Context(), cfg, func(ctx context.Context, conn *mongokit.Conn) error {
				if err := migrate.Run(ctx, conn, script.Operations); err != nil {
					return err
				}
				fmt.Printf("executed %d operation(s) from %s\n", len(script.Operations), args[0])
				return nil
			})
		},
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate <dir>",
		Short: "Apply pending migrations from a directory",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config()
			if err != nil {
				return err
			}
			return mongokit.WithConn(cmd.Context(), cfg, func(ctx context.Context, conn *mongokit.Conn) error {
				return migrate.New(conn, migrate.WithLogger(cfg.Logger)).ApplyDir(ctx, args[0])
			})
		},
	}
}
