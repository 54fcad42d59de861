package pgvector

import (
	"context"
	"log"
	"sync"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"go.uber.org/fx"
)

// FXModule defines the Fx module for the pgvector backend.
//
// The module:
//  1. Provides the *Postgres client built from a *Config.
//  2. Provides NewCollectionManager, also exposed as vectordb.CollectionManager
//     under the name "pgvector".
//  3. Invokes RegisterPostgresLifecycle to run connection monitoring while the
//     application is up and to close the pool on stop.
//
// Usage:
//
//	app := fx.New(
//	    fx.Supply(cfg),
//	    pgvector.FXModule,
//	)
var FXModule = fx.Module("pgvector",
	fx.Provide(
		NewPostgresClientWithDI,
		NewCollectionManager,
		fx.Annotate(
			NewCollectionManager,
			fx.As(new(vectordb.CollectionManager)),
			fx.ResultTags(`name:"pgvector"`),
		),
	),
	fx.Invoke(RegisterPostgresLifecycle),
)

// PostgresParams defines dependencies needed to construct the client.
type PostgresParams struct {
	fx.In

	Config *Config
}

// NewPostgresClientWithDI connects using the injected config.
func NewPostgresClientWithDI(params PostgresParams) (*Postgres, error) {
	return NewPostgres(params.Config)
}

// PostgresLifeCycleParams groups the dependencies of RegisterPostgresLifecycle.
type PostgresLifeCycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Postgres  *Postgres
}

// RegisterPostgresLifecycle starts MonitorConnection and RetryConnection on
// start and waits for them before closing the pool on stop.
func RegisterPostgresLifecycle(params PostgresLifeCycleParams) {
	wg := &sync.WaitGroup{}
	ctx, cancel := context.WithCancel(context.Background())

	params.Lifecycle.Append(fx.Hook{
		OnStart: func(startCtx context.Context) error {
			if err := params.Postgres.Ping(startCtx); err != nil {
				cancel()
				return err
			}

			wg.Add(2)
			go func() {
				defer wg.Done()
				params.Postgres.MonitorConnection(ctx)
			}()
			go func() {
				defer wg.Done()
				params.Postgres.RetryConnection(ctx)
			}()
			return nil
		},
		OnStop: func(context.Context) error {
			log.Println("[PgVector] closing client")
			cancel()
			wg.Wait()
			return params.Postgres.GracefulShutdown()
		},
	})
}
