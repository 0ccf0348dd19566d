package cli

import (
	"context"

	"github.com/spf13/cobra"

	"recipe-harvest/pkg/replication"
)

func newReplicateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "replicate",
		Short: "Copy recipes from MongoDB to Postgres",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			mongo, err := a.openMongo(ctx)
			if err != nil {
				return err
			}
			defer mongo.Close(context.Background())

			pg, err := a.openPostgres(ctx)
			if err != nil {
				return err
			}
			defer pg.Close()

			r, err := replication.NewReplicator(replication.Config{
				Source: mongo,
				Target: pg,
				Logger: a.logger.Named("replication"),
			})
			if err != nil {
				return err
			}

			stats, err := r.ReplicateRecipes(ctx)
			if err != nil {
				return err
			}
			cmd.PrintErrf("Replicated %d recipes, inserted %d\n", stats.Processed, stats.Inserted)
			return nil
		},
	}
}
