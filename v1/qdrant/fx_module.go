package qdrant

import (
	"context"
	"log"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"go.uber.org/fx"
)

// FXModule defines the Fx module for the Qdrant backend.
//
// The module:
//  1. Provides the NewQdrantClient factory, making the client available to
//     other components.
//  2. Provides NewCollectionManager, also exposed as vectordb.CollectionManager
//     under the name "qdrant".
//  3. Invokes RegisterQdrantLifecycle to close the client on shutdown.
//
// Stores are generic over the key type and are therefore built by the
// application with NewStore.
//
// Usage:
//
//	app := fx.New(
//	    fx.Supply(qdrant.DefaultConfig()),
//	    qdrant.FXModule,
//	)
//
// Dependencies required by this module:
// - A *qdrant.Config instance must be available in the dependency injection container.
var FXModule = fx.Module("qdrant",
	fx.Provide(
		NewQdrantClient,
		NewCollectionManager,
		fx.Annotate(
			NewCollectionManager,
			fx.As(new(vectordb.CollectionManager)),
			fx.ResultTags(`name:"qdrant"`),
		),
	),
	fx.Invoke(RegisterQdrantLifecycle),
)

// QdrantParams defines dependencies needed to construct the Qdrant client.
type QdrantParams struct {
	fx.In
	Config *Config
}

// RegisterQdrantLifecycle closes the client when the application stops.
func RegisterQdrantLifecycle(lc fx.Lifecycle, client *QdrantClient) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Println("[Qdrant] client initialized successfully")
			return nil
		},
		OnStop: func(ctx context.Context) error {
			if err := client.Close(); err != nil {
				log.Printf("[Qdrant] error closing client: %v", err)
				return err
			}
			log.Println("[Qdrant] client connection closed")
			return nil
		},
	})
}
