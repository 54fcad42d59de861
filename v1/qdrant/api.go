package qdrant

import (
	"context"

	qdrant "github.com/qdrant/go-client/qdrant"
)

// API is the subset of the official Qdrant client used by this package.
// *qdrant.Client satisfies it; tests use MockAPI.
//
//go:generate mockgen -source=api.go -destination=mock_api.go -package=qdrant
type API interface {
	HealthCheck(ctx context.Context) (*qdrant.HealthCheckReply, error)
	Close() error

	CreateCollection(ctx context.Context, request *qdrant.CreateCollection) error
	CollectionExists(ctx context.Context, collectionName string) (bool, error)
	DeleteCollection(ctx context.Context, collectionName string) error
	ListCollections(ctx context.Context) ([]string, error)
	CreateFieldIndex(ctx context.Context, request *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error)

	Upsert(ctx context.Context, request *qdrant.UpsertPoints) (*qdrant.UpdateResult, error)
	Get(ctx context.Context, request *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error)
	Delete(ctx context.Context, request *qdrant.DeletePoints) (*qdrant.UpdateResult, error)
}

var _ API = (*qdrant.Client)(nil)
