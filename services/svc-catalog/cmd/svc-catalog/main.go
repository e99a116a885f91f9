package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/architeacher/storefront/pkg/logger"
	"github.com/architeacher/storefront/services/svc-catalog/internal/config"
	"github.com/architeacher/storefront/services/svc-catalog/internal/infrastructure/postgres"
	"github.com/architeacher/storefront/services/svc-catalog/internal/runtime"
)

var envFiles []string

var rootCmd = &cobra.Command{
	Use:           "svc-catalog",
	Short:         "Storefront product catalog service",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the catalog HTTP API",
	RunE: func(*cobra.Command, []string) error {
		return runtime.New(runtime.WithEnvFiles(envFiles...)).Run()
	},
}

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply or roll back the catalog schema",
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the build version",
	Run: func(cmd *cobra.Command, _ []string) {
		cmd.Printf("%s (%s)\n", config.ServiceVersion, config.CommitSHA)
	},
}

func migrateDirectionCmd(direction postgres.MigrationDirection, short string) *cobra.Command {
	return &cobra.Command{
		Use:   string(direction),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			cfg, err := config.Init(envFiles...)
			if err != nil {
				return fmt.Errorf("initializing configuration: %w", err)
			}

			log := logger.New(cfg.Logging.Level, cfg.Logging.Format)

			return postgres.Migrate(cfg.Database, direction, log)
		},
	}
}

func init() {
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env-file", nil, "env files to load before the environment (default .env)")

	migrateCmd.AddCommand(
		migrateDirectionCmd(postgres.MigrateUp, "Apply all pending migrations"),
		migrateDirectionCmd(postgres.MigrateDown, "Roll back every migration"),
	)

	rootCmd.AddCommand(serveCmd, migrateCmd, versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
