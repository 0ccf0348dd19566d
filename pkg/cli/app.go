package cli

import (
	"context"
	"fmt"

	"recipe-harvest/pkg/catalog"
	"recipe-harvest/pkg/db"
	"recipe-harvest/pkg/fetch"
	"recipe-harvest/pkg/harvest"
	"recipe-harvest/pkg/httpclient"
)

// Store kinds accepted by --store
const (
	storeMongo    = "mongo"
	storePostgres = "postgres"
	storeSupabase = "supabase"
	storeNone     = "none"
)

// newGetter builds the transport selected by fetch.engine
func (a *app) newGetter() (fetch.Getter, error) {
	switch a.cfg.Fetch.Engine {
	case "colly":
		return fetch.NewCollyGetter(a.cfg.Fetch.UserAgent, a.cfg.Fetch.Timeout), nil
	case "", "http":
		clientType, err := httpclient.ParseClientType(a.cfg.Fetch.Client)
		if err != nil {
			return nil, err
		}
		return fetch.NewHTTPGetter(httpclient.NewClientWithTimeout(clientType, a.cfg.Fetch.Timeout)), nil
	default:
		return nil, fmt.Errorf("unknown fetch engine: %s", a.cfg.Fetch.Engine)
	}
}

func (a *app) newCoordinator() (*harvest.Coordinator, error) {
	getter, err := a.newGetter()
	if err != nil {
		return nil, err
	}
	parser, err := catalog.NewParser(a.cfg.Catalog.Format, a.cfg.Catalog.BaseURL, a.cfg.Catalog.Selector)
	if err != nil {
		return nil, err
	}

	return harvest.New(
		parser,
		fetch.New(getter, a.logger.Named("fetch")),
		a.cfg.Catalog.BaseURL,
		a.cfg.Fetch.Concurrency,
		harvest.WithLogger(a.logger.Named("harvest")),
	), nil
}

func (a *app) openMongo(ctx context.Context) (*db.Client, error) {
	client := db.NewClient(a.cfg.Mongo.URI, a.cfg.Mongo.Database, a.cfg.Mongo.Collection)
	if err := client.Connect(ctx); err != nil {
		return nil, fmt.Errorf("failed to connect to mongo: %w", err)
	}
	return client, nil
}

func (a *app) openPostgres(ctx context.Context) (*db.PostgresStore, error) {
	store, err := db.NewPostgresStore(ctx, db.PostgresConfig{
		DSN:   a.cfg.Postgres.DSN,
		Table: a.cfg.Postgres.Table,
	})
	if err != nil {
		return nil, err
	}
	if err := store.EnsureSchema(ctx); err != nil {
		store.Close()
		return nil, err
	}
	return store, nil
}

// openStore connects the backend named by kind. The returned close func is never nil.
func (a *app) openStore(ctx context.Context, kind string) (db.RecipeStore, string, func(), error) {
	switch kind {
	case storeMongo:
		client, err := a.openMongo(ctx)
		if err != nil {
			return nil, "", nil, err
		}
		return client, a.cfg.Mongo.Collection, func() { _ = client.Close(context.Background()) }, nil
	case storePostgres:
		store, err := a.openPostgres(ctx)
		if err != nil {
			return nil, "", nil, err
		}
		return store, a.cfg.Postgres.Table, store.Close, nil
	case storeSupabase:
		client := db.NewSupabaseClient(db.SupabaseConfig{
			ConnectionString: a.cfg.Supabase.ConnectionString,
			SupabaseURL:      a.cfg.Supabase.URL,
			SupabaseKey:      a.cfg.Supabase.Key,
			Password:         a.cfg.Supabase.Password,
			Table:            a.cfg.Supabase.Table,
		})
		if err := client.Connect(ctx); err != nil {
			return nil, "", nil, fmt.Errorf("failed to connect to supabase: %w", err)
		}
		if store := client.Store(); store != nil {
			if err := store.EnsureSchema(ctx); err != nil {
				client.Close()
				return nil, "", nil, err
			}
		}
		return client, a.cfg.Supabase.Table, client.Close, nil
	case storeNone:
		return nil, "", func() {}, nil
	default:
		return nil, "", nil, fmt.Errorf("unknown store %q (want mongo, postgres, supabase or none)", kind)
	}
}
