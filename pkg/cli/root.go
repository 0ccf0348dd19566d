// Package cli defines the harvester commands.
package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"recipe-harvest/pkg/config"
	"recipe-harvest/pkg/logging"
)

// app carries what every command needs once flags and config are resolved
type app struct {
	v       *viper.Viper
	cfgFile string
	cfg     config.Config
	logger  *zap.Logger
}

// NewRootCmd creates the harvester command tree.
func NewRootCmd() *cobra.Command {
	a := &app{v: config.NewViper()}

	cmd := &cobra.Command{
		Use:   "harvester",
		Short: "Harvests recipes from a catalog page",
		Long: `harvester reads a recipe catalog page, fetches every listed recipe under a
bounded number of concurrent requests and extracts a structured record from each.
Records can be stored in MongoDB, Postgres or Supabase and exported as JSON.`,
		SilenceUsage: true,

		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(a.v, a.cfgFile)
			if err != nil {
				return err
			}
			logger, err := logging.New(cfg.Logging)
			if err != nil {
				return err
			}
			a.cfg = cfg
			a.logger = logger
			return nil
		},

		PersistentPostRun: func(_ *cobra.Command, _ []string) {
			if a.logger != nil {
				_ = a.logger.Sync()
			}
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgFile, "config", "", "config file (default is ./harvester.yaml or $HOME/.harvester/harvester.yaml)")
	flags.String("catalog-url", "", "catalog page to harvest")
	flags.String("base-url", "", "prefix for relative links")
	flags.String("log-level", "", "log level (debug, info, warn, error)")
	flags.String("mongo-uri", "", "MongoDB connection string")
	flags.String("postgres-dsn", "", "Postgres connection string")
	bindFlags(a.v, flags.Lookup, map[string]string{
		"catalog.url":      "catalog-url",
		"catalog.base_url": "base-url",
		"logging.level":    "log-level",
		"mongo.uri":        "mongo-uri",
		"postgres.dsn":     "postgres-dsn",
	})

	cmd.AddCommand(
		newHarvestCmd(a),
		newReportCmd(a),
		newReplicateCmd(a),
		newServeCmd(a),
	)
	return cmd
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := NewRootCmd().ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}

func bindFlags(v *viper.Viper, lookup func(string) *pflag.Flag, keys map[string]string) {
	for key, name := range keys {
		if err := v.BindPFlag(key, lookup(name)); err != nil {
			panic(fmt.Sprintf("bind flag %s: %v", name, err))
		}
	}
}
