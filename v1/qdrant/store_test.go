package qdrant

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type taggedHotel struct {
	ID        uint64    `vectordb:"key"`
	Name      string    `vectordb:"data,filterable"`
	Embedding []float32 `vectordb:"vector,dims=2"`
}

func newMockClient(t *testing.T, cfg *Config) (*QdrantClient, *MockAPI) {
	t.Helper()
	ctrl := gomock.NewController(t)
	api := NewMockAPI(ctrl)
	return NewQdrantClientWithAPI(api, cfg), api
}

func newHotelStore(t *testing.T, client *QdrantClient) *vectordb.RecordStore[uint64, *qdrant.PointStruct] {
	t.Helper()
	store, err := NewStore[uint64](client, StoreOptions[uint64]{RecordType: reflect.TypeFor[taggedHotel]()})
	require.NoError(t, err)
	return store
}

func TestNewStore_Validation(t *testing.T) {
	client, _ := newMockClient(t, nil)

	_, err := NewStore[uint64](nil, StoreOptions[uint64]{RecordType: reflect.TypeFor[taggedHotel]()})
	assert.ErrorIs(t, err, vectordb.ErrArgument)

	_, err = NewStore[uint64](client, StoreOptions[uint64]{})
	assert.ErrorIs(t, err, vectordb.ErrArgument)

	_, err = NewStore[uuid.UUID](client, StoreOptions[uuid.UUID]{RecordType: reflect.TypeFor[taggedHotel]()})
	assert.ErrorIs(t, err, vectordb.ErrSchema, "key type must match the store key type")

	_, err = NewStore[uint64](client, StoreOptions[uint64]{
		RecordType: reflect.TypeFor[taggedHotel](),
		Mapping:    vectordb.CustomMapping[uint64, *qdrant.PointStruct](nil),
	})
	assert.ErrorIs(t, err, vectordb.ErrArgument)
}

func TestStore_UpsertSendsOneRequestPerBatch(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig().WithDefaultCollection("hotels"))
	store := newHotelStore(t, client)

	api.EXPECT().
		Upsert(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *qdrant.UpsertPoints) (*qdrant.UpdateResult, error) {
			assert.Equal(t, "hotels", req.GetCollectionName())
			assert.True(t, req.GetWait())
			require.Len(t, req.GetPoints(), 2)
			assert.Equal(t, uint64(1), req.GetPoints()[0].GetId().GetNum())
			assert.Equal(t, "a", req.GetPoints()[0].GetPayload()["Name"].GetStringValue())
			return &qdrant.UpdateResult{}, nil
		})

	keys, err := store.UpsertBatch(context.Background(), []vectordb.Record[uint64]{
		{Key: 1, Data: map[string]any{"Name": "a"}, Vectors: map[string][]float32{"Embedding": {1, 2}}},
		{Key: 2, Data: map[string]any{"Name": "b"}, Vectors: map[string][]float32{"Embedding": {3, 4}}},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{1, 2}, keys)
}

func TestStore_GetUsesCallCollectionAndVectorFlag(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig().WithDefaultCollection("hotels"))
	store := newHotelStore(t, client)

	api.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error) {
			assert.Equal(t, "archive", req.GetCollectionName())
			assert.True(t, req.GetWithVectors().GetEnable())
			require.Len(t, req.GetIds(), 1)
			return []*qdrant.RetrievedPoint{{
				Id:      req.GetIds()[0],
				Payload: map[string]*qdrant.Value{"Name": {Kind: &qdrant.Value_StringValue{StringValue: "a"}}},
				Vectors: &qdrant.VectorsOutput{
					VectorsOptions: &qdrant.VectorsOutput_Vector{Vector: &qdrant.VectorOutput{Data: []float32{1, 2}}},
				},
			}}, nil
		})

	rec, err := store.Get(context.Background(), 7, vectordb.WithCollection("archive"), vectordb.WithVectors(true))
	require.NoError(t, err)
	assert.Equal(t, uint64(7), rec.Key)
	assert.Equal(t, "a", rec.Data["Name"])
	assert.Equal(t, []float32{1, 2}, rec.Vectors["Embedding"])
}

func TestStore_GetMissingPoint(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig().WithDefaultCollection("hotels"))
	store := newHotelStore(t, client)

	api.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, nil)

	_, err := store.Get(context.Background(), 1)
	assert.True(t, vectordb.IsNotFound(err))
}

func TestStore_GetBatchFetchesEveryKey(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig().WithDefaultCollection("hotels").WithMaxParallelism(2))
	store := newHotelStore(t, client)

	api.EXPECT().
		Get(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *qdrant.GetPoints) ([]*qdrant.RetrievedPoint, error) {
			assert.False(t, req.GetWithVectors().GetEnable())
			return []*qdrant.RetrievedPoint{{Id: req.GetIds()[0]}}, nil
		}).
		Times(4)

	recs, err := store.GetBatch(context.Background(), []uint64{4, 3, 2, 1})
	require.NoError(t, err)
	require.Len(t, recs, 4)
	for i, want := range []uint64{4, 3, 2, 1} {
		assert.Equal(t, want, recs[i].Key)
		assert.Nil(t, recs[i].Vectors)
	}
}

func TestStore_DeleteBatch(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig().WithDefaultCollection("hotels"))
	store := newHotelStore(t, client)

	api.EXPECT().
		Delete(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, req *qdrant.DeletePoints) (*qdrant.UpdateResult, error) {
			ids := req.GetPoints().GetPoints().GetIds()
			require.Len(t, ids, 2)
			assert.Equal(t, uint64(5), ids[0].GetNum())
			assert.Equal(t, uint64(6), ids[1].GetNum())
			return &qdrant.UpdateResult{}, nil
		})

	require.NoError(t, store.DeleteBatch(context.Background(), []uint64{5, 6}))
	require.NoError(t, store.DeleteBatch(context.Background(), nil), "empty batch performs no request")
}

func TestStore_WrapsClientErrors(t *testing.T) {
	client, api := newMockClient(t, DefaultConfig().WithDefaultCollection("hotels"))
	store := newHotelStore(t, client)
	boom := errors.New("unavailable")

	api.EXPECT().Upsert(gomock.Any(), gomock.Any()).Return(nil, boom)
	api.EXPECT().Get(gomock.Any(), gomock.Any()).Return(nil, boom)
	api.EXPECT().Delete(gomock.Any(), gomock.Any()).Return(nil, boom)

	_, err := store.Upsert(context.Background(), vectordb.Record[uint64]{Key: 1, Vectors: map[string][]float32{"Embedding": {1, 2}}})
	assert.ErrorIs(t, err, vectordb.ErrBackendOperation)
	assert.ErrorIs(t, err, boom)

	_, err = store.Get(context.Background(), 1)
	assert.ErrorIs(t, err, vectordb.ErrBackendOperation)

	err = store.Delete(context.Background(), 1)
	assert.ErrorIs(t, err, vectordb.ErrBackendOperation)
}

func TestStore_MappingErrorSkipsRequest(t *testing.T) {
	client, _ := newMockClient(t, DefaultConfig().WithDefaultCollection("hotels"))
	store := newHotelStore(t, client)

	_, err := store.Upsert(context.Background(), vectordb.Record[uint64]{Key: 1, Vectors: map[string][]float32{"Embedding": {1, 2, 3}}})
	assert.ErrorIs(t, err, vectordb.ErrMapping)
}
