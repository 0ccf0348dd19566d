package cli

import (
	"context"
	"encoding/json"

	"github.com/spf13/cobra"

	"recipe-harvest/pkg/api"
	"recipe-harvest/pkg/db"
)

func newReportCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "report",
		Short: "Print the recipe reports computed over MongoDB",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			client, err := a.openMongo(ctx)
			if err != nil {
				return err
			}
			defer client.Close(context.Background())

			queries, err := db.NewQueries(client)
			if err != nil {
				return err
			}

			summary, err := api.BuildSummary(ctx, queries)
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			enc.SetIndent("", "    ")
			return enc.Encode(summary)
		},
	}
}
