package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipe-harvest/pkg/export"
)

func newHarvestCmd(a *app) *cobra.Command {
	var store string

	cmd := &cobra.Command{
		Use:   "harvest",
		Short: "Harvest the catalog and store the recipes",
		Long: `Fetches the catalog page, then every recipe it lists with at most
fetch.concurrency requests in flight. Pages that fail to download or lack a
title are reported and skipped; the rest are stored and optionally exported.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			recipeStore, collection, closeStore, err := a.openStore(ctx, store)
			if err != nil {
				return err
			}
			defer closeStore()

			coord, err := a.newCoordinator()
			if err != nil {
				return err
			}

			start := time.Now()
			result, err := coord.HarvestURL(ctx, a.cfg.Catalog.URL)
			if err != nil {
				return err
			}

			for _, f := range result.Failures {
				a.logger.Warn("Recipe skipped", zap.String("url", f.URL), zap.String("stage", string(f.Stage)), zap.Error(f.Cause))
			}

			if recipeStore != nil && len(result.Records) > 0 {
				ids, err := recipeStore.InsertMany(ctx, collection, result.Records)
				if err != nil {
					return fmt.Errorf("store recipes: %w", err)
				}
				a.logger.Info("Stored recipes", zap.String("store", store), zap.Int("count", len(ids)))
			}

			switch {
			case a.cfg.Output.JSON != "":
				if err := export.WriteFile(a.cfg.Output.JSON, result.Records); err != nil {
					return err
				}
			case recipeStore == nil:
				out, err := export.ToJSON(result.Records)
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), out)
			}

			cmd.PrintErrf("Harvested %d recipes, %d failed, run %s in %s\n",
				len(result.Records), len(result.Failures), result.RunID, time.Since(start).Round(time.Millisecond))
			return nil
		},
	}

	cmd.Flags().StringVar(&store, "store", storeMongo, "where to store recipes: mongo, postgres, supabase or none")
	cmd.Flags().String("out", "", "write the harvested recipes as JSON to this file")
	cmd.Flags().Int("concurrency", 0, "maximum detail page requests in flight")
	cmd.Flags().String("engine", "", "fetch engine: http or colly")
	bindFlags(a.v, cmd.Flags().Lookup, map[string]string{
		"output.json":       "out",
		"fetch.concurrency": "concurrency",
		"fetch.engine":      "engine",
	})

	return cmd
}
