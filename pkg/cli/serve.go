package cli

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"recipe-harvest/pkg/api"
	"recipe-harvest/pkg/db"
)

func newServeCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the recipe reports and metrics over HTTP",
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

			srv := &http.Server{
				Addr:              a.cfg.Server.Addr,
				Handler:           api.NewServer(queries, a.logger.Named("api")).Handler(),
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				a.logger.Info("Listening", zap.String("addr", srv.Addr))
				errCh <- srv.ListenAndServe()
			}()

			select {
			case err := <-errCh:
				if errors.Is(err, http.ErrServerClosed) {
					return nil
				}
				return err
			case <-ctx.Done():
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			a.logger.Info("Shutting down")
			return srv.Shutdown(shutdownCtx)
		},
	}

	cmd.Flags().String("addr", "", "listen address")
	bindFlags(a.v, cmd.Flags().Lookup, map[string]string{"server.addr": "addr"})
	return cmd
}
