package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/taskboard/internal/app"
	"github.com/fastygo/taskboard/internal/config"
	"github.com/fastygo/taskboard/internal/infrastructure/buffer"
	pgInfra "github.com/fastygo/taskboard/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/taskboard/internal/infrastructure/redis"
	"github.com/fastygo/taskboard/internal/locale"
	"github.com/fastygo/taskboard/internal/services"
	"github.com/fastygo/taskboard/pkg/logger"
	redisRepo "github.com/fastygo/taskboard/repository/redis"
)

var Version = "dev"

func main() {
	rootCmd := &cobra.Command{
		Use:           "boardctl",
		Short:         "Operations for the task board service",
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(migrateCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(drainCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// env loads the same configuration the server reads.
func env() (*config.Config, *zap.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("config: %w", err)
	}
	log, err := logger.New(logger.Config{
		Level:    cfg.Logger.Level,
		Encoding: cfg.Logger.Encoding,
		AppName:  "boardctl",
	})
	if err != nil {
		return nil, nil, fmt.Errorf("logger: %w", err)
	}
	return cfg, log, nil
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate [up|down|version]",
		Short: "Apply or inspect the postgres schema",
		Long: `Runs the embedded migrations against DATABASE_URL.

SQLite stores migrate themselves when opened, so this command only
applies to STORAGE_DRIVER=postgres.`,
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{"up", "down", "version"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := env()
			if err != nil {
				return err
			}
			defer log.Sync()

			if cfg.Storage.Driver == config.DriverSQLite {
				fmt.Fprintln(cmd.OutOrStdout(), "sqlite store migrates on open, nothing to do")
				return nil
			}

			action := "up"
			if len(args) == 1 {
				action = args[0]
			}

			var step func(*migrate.Migrate) error
			switch action {
			case "up":
				step = func(m *migrate.Migrate) error { return m.Up() }
			case "down":
				step = func(m *migrate.Migrate) error { return m.Steps(-1) }
			case "version":
				step = func(m *migrate.Migrate) error {
					version, dirty, err := m.Version()
					if err != nil {
						return err
					}
					fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", version, dirty)
					return nil
				}
			default:
				return fmt.Errorf("unknown migrate action %q", action)
			}
			return pgInfra.Migrate(cfg, log, step)
		},
	}
}

func sweepCmd() *cobra.Command {
	var at string

	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Run one deadline sweep and print what changed",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := env()
			if err != nil {
				return err
			}
			defer log.Sync()

			location := cfg.Board.Location()
			now := time.Now().In(location)
			if at != "" {
				now, err = time.ParseInLocation(time.RFC3339, at, location)
				if err != nil {
					return fmt.Errorf("--at: %w", err)
				}
			}

			ctx := cmd.Context()
			stores, err := app.OpenStores(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer stores.Close()

			client, err := redisInfra.NewClient(ctx, cfg.Redis, log)
			if err != nil {
				return err
			}
			defer client.Close()

			locales, err := locale.Load(cfg.Board.DefaultLanguage)
			if err != nil {
				return err
			}

			sweeper := services.NewDeadlineSweeper(
				stores.CachedTasks(client, cfg.Redis.TaskCacheTTL),
				stores.Users,
				redisRepo.NewNotificationRepository(client),
				locales,
				log,
				services.SweeperConfig{
					NotificationTTL: cfg.Board.NotificationTTL,
					Location:        location,
				},
			)
			result, err := sweeper.Sweep(ctx, now)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "expired=%d restored=%d notified=%d\n",
				result.Expired, result.Restored, result.Notified)
			return nil
		},
	}

	cmd.Flags().StringVar(&at, "at", "", "sweep as of this RFC3339 instant instead of now")
	return cmd
}

// online lets a manual drain skip the connection monitor.
type online struct{}

func (online) IsOnline() bool { return true }

func drainCmd() *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "drain",
		Short: "Replay buffered writes against the primary store once",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := env()
			if err != nil {
				return err
			}
			defer log.Sync()

			ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
			defer cancel()

			store, err := buffer.Open(cfg.Buffer.Path, buffer.Options{MaxSize: cfg.Buffer.MaxSize})
			if err != nil {
				return err
			}
			defer store.Close()

			stores, err := app.OpenStores(ctx, cfg, log)
			if err != nil {
				return err
			}
			defer stores.Close()

			tasks := stores.Tasks
			if cfg.Redis.TaskCacheTTL > 0 {
				client, err := redisInfra.NewClient(ctx, cfg.Redis, log)
				if err != nil {
					return fmt.Errorf("redis for board cache eviction: %w", err)
				}
				defer client.Close()
				tasks = stores.CachedTasks(client, cfg.Redis.TaskCacheTTL)
			}

			processor := services.NewBufferProcessor(store, online{}, stores.Users, tasks, log,
				services.ProcessorConfig{MaxRetries: cfg.Buffer.MaxRetry})

			before, err := processor.Size()
			if err != nil {
				return err
			}
			if err := processor.Drain(ctx); err != nil {
				return err
			}
			after, err := processor.Size()
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "buffered before=%d after=%d\n", before, after)
			return nil
		},
	}

	cmd.Flags().DurationVar(&timeout, "timeout", time.Minute, "give up after this long")
	return cmd
}
