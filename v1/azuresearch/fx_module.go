package azuresearch

import (
	"context"
	"log"

	"github.com/Aleph-Alpha/vectorstore/v1/observability"
	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"go.uber.org/fx"
)

// FXModule defines the Fx module for the Azure AI Search backend.
//
// The module:
//  1. Provides the SearchClient built from a *Config.
//  2. Provides NewCollectionManager, also exposed as vectordb.CollectionManager
//     under the name "azuresearch".
//  3. Invokes RegisterSearchLifecycle to check the service on start and
//     release connections on stop.
//
// Usage:
//
//	app := fx.New(
//	    fx.Supply(azuresearch.FromEndpoint(endpoint).WithAPIKey(key)),
//	    azuresearch.FXModule,
//	)
var FXModule = fx.Module("azuresearch",
	fx.Provide(
		NewSearchClientWithDI,
		NewCollectionManager,
		fx.Annotate(
			NewCollectionManager,
			fx.As(new(vectordb.CollectionManager)),
			fx.ResultTags(`name:"azuresearch"`),
		),
	),
	fx.Invoke(RegisterSearchLifecycle),
)

// SearchParams defines dependencies needed to construct the client.
type SearchParams struct {
	fx.In

	Config   *Config
	Observer observability.Observer `optional:"true"`
}

// NewSearchClientWithDI builds the client and attaches the optional observer.
func NewSearchClientWithDI(p SearchParams) (*SearchClient, error) {
	client, err := NewSearchClient(p.Config)
	if err != nil {
		return nil, err
	}
	return client.WithObserver(p.Observer), nil
}

// RegisterSearchLifecycle pings the service on start and closes idle
// connections on stop.
func RegisterSearchLifecycle(lc fx.Lifecycle, client *SearchClient) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx); err != nil {
				log.Printf("[AzureSearch] service check failed: %v", err)
				return err
			}
			log.Println("[AzureSearch] client initialized successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			log.Println("[AzureSearch] closing client")
			return client.Close()
		},
	})
}
