package qdrant

import (
	"context"
	"errors"
	"testing"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestCollectionManager_CreateCollection(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig())
	m := NewCollectionManager(client)
	schema := hotelSchema(t, vectordb.TypeUint64, 1)

	var indexed []string
	gomock.InOrder(
		api.EXPECT().
			CreateCollection(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req *qdrant.CreateCollection) error {
				assert.Equal(t, "hotels", req.GetCollectionName())
				assert.Equal(t, uint64(4), req.GetVectorsConfig().GetParams().GetSize())
				return nil
			}),
		api.EXPECT().
			CreateFieldIndex(gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, req *qdrant.CreateFieldIndexCollection) (*qdrant.UpdateResult, error) {
				indexed = append(indexed, req.GetFieldName())
				return &qdrant.UpdateResult{}, nil
			}).
			Times(4),
	)

	require.NoError(t, m.CreateCollection(context.Background(), "hotels", schema))
	assert.Equal(t, []string{"name", "description", "rating", "tags"}, indexed)
}

func TestCollectionManager_CreateCollectionRejectsBeforeAnyRequest(t *testing.T) {
	client, _ := newMockClient(t, DefaultConfig())
	m := NewCollectionManager(client)

	flat, err := vectordb.NewSchemaBuilder().
		Key("id", vectordb.TypeUint64).
		Vector("v", 3, vectordb.WithIndexKind(vectordb.IndexFlat)).
		Build()
	require.NoError(t, err)

	err = m.CreateCollection(context.Background(), "c", flat)
	assert.ErrorIs(t, err, vectordb.ErrUnsupportedConfiguration)

	err = m.CreateCollection(context.Background(), "c", nil)
	assert.ErrorIs(t, err, vectordb.ErrArgument)

	err = m.CreateCollection(context.Background(), "c", hotelSchema(t, vectordb.TypeUint64, 2))
	assert.ErrorIs(t, err, vectordb.ErrSchema, "two vectors need named vectors")
}

func TestCollectionManager_NamedVectors(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig().WithNamedVectors(true))
	m := NewCollectionManager(client)

	api.EXPECT().
		CreateCollection(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *qdrant.CreateCollection) error {
			assert.Len(t, req.GetVectorsConfig().GetParamsMap().GetMap(), 2)
			return nil
		})
	api.EXPECT().CreateFieldIndex(gomock.Any(), gomock.Any()).Return(&qdrant.UpdateResult{}, nil).AnyTimes()

	require.NoError(t, m.CreateCollection(context.Background(), "hotels", hotelSchema(t, vectordb.TypeUUID, 2)))
}

func TestCollectionManager_CreateCollectionClientFailure(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig())
	m := NewCollectionManager(client)

	api.EXPECT().CreateCollection(gomock.Any(), gomock.Any()).Return(errors.New("already exists"))

	err := m.CreateCollection(context.Background(), "hotels", hotelSchema(t, vectordb.TypeUint64, 1))
	assert.ErrorIs(t, err, vectordb.ErrBackendOperation)
}

func TestCollectionManager_ExistsDeleteList(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig())
	m := NewCollectionManager(client)
	ctx := context.Background()

	api.EXPECT().CollectionExists(gomock.Any(), "hotels").Return(true, nil)
	api.EXPECT().CollectionExists(gomock.Any(), "broken").Return(false, errors.New("boom"))
	api.EXPECT().DeleteCollection(gomock.Any(), "hotels").Return(nil)
	api.EXPECT().ListCollections(gomock.Any()).Return([]string{"a", "b"}, nil)

	ok, err := m.CollectionExists(ctx, "hotels")
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = m.CollectionExists(ctx, "broken")
	assert.ErrorIs(t, err, vectordb.ErrBackendOperation)

	require.NoError(t, m.DeleteCollection(ctx, "hotels"))

	names, err := vectordb.CollectNames(m.ListCollections(ctx))
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)
}

func TestQdrantClient_CloseOnce(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig())
	api.EXPECT().Close().Return(nil).Times(1)

	require.NoError(t, client.Close())
	require.NoError(t, client.Close())
}

func TestQdrantClient_HealthCheck(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig())
	api.EXPECT().HealthCheck(gomock.Any()).Return(&qdrant.HealthCheckReply{Title: "qdrant", Version: "1.16.0"}, nil)
	api.EXPECT().HealthCheck(gomock.Any()).Return(nil, errors.New("down"))

	assert.NoError(t, client.healthCheck())
	assert.Error(t, client.healthCheck())
}
