package redis

import (
	"context"
	"errors"
	"reflect"
	"testing"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type taggedHotel struct {
	HotelID   string    `vectordb:"key"`
	Name      string    `vectordb:"data,filterable"`
	Rating    float64   `vectordb:"data,filterable"`
	Tags      []string  `vectordb:"data"`
	Embedding []float32 `vectordb:"vector,dims=2"`
}

func hotelRecord(key string, rating float64) vectordb.Record[string] {
	return vectordb.Record[string]{
		Key:     key,
		Data:    map[string]any{"Name": "hotel " + key, "Rating": rating, "Tags": []string{"pool"}},
		Vectors: map[string][]float32{"Embedding": {float32(rating), 1}},
	}
}

func newTestStore(t *testing.T, layout Layout) (vectordb.Store[string], *fakeRedis) {
	t.Helper()
	fake := newFakeRedis(layout)
	store, err := NewStore(fake, nil, reflect.TypeFor[taggedHotel]())
	require.NoError(t, err)
	return store, fake
}

func TestStore_RoundTripBothStorageTypes(t *testing.T) {
	for _, storage := range []StorageType{StorageHash, StorageJSON} {
		t.Run(string(storage), func(t *testing.T) {
			layout := DefaultLayout()
			layout.Storage = storage
			layout.DefaultCollection = "hotels"
			store, fake := newTestStore(t, layout)
			ctx := context.Background()

			keys, err := store.UpsertBatch(ctx, []vectordb.Record[string]{hotelRecord("1", 4.5), hotelRecord("2", 3)})
			require.NoError(t, err)
			assert.Equal(t, []string{"1", "2"}, keys)

			if storage == StorageHash {
				assert.Contains(t, fake.hashes, "hotels:1")
			} else {
				assert.Contains(t, fake.docs, "hotels:1")
			}

			got, err := store.Get(ctx, "1", vectordb.WithVectors(true))
			require.NoError(t, err)
			assert.Equal(t, hotelRecord("1", 4.5), got)

			got, err = store.Get(ctx, "2")
			require.NoError(t, err)
			assert.Nil(t, got.Vectors)
			assert.Equal(t, 3.0, got.Data["Rating"])

			require.NoError(t, store.Delete(ctx, "1"))
			_, err = store.Get(ctx, "1")
			assert.True(t, vectordb.IsNotFound(err))
		})
	}
}

func TestStore_UpsertReplacesWholeRecord(t *testing.T) {
	layout := DefaultLayout()
	layout.DefaultCollection = "hotels"
	store, _ := newTestStore(t, layout)
	ctx := context.Background()

	_, err := store.Upsert(ctx, hotelRecord("1", 4))
	require.NoError(t, err)
	_, err = store.Upsert(ctx, vectordb.Record[string]{Key: "1", Data: map[string]any{"Name": "renamed"}})
	require.NoError(t, err)

	got, err := store.Get(ctx, "1", vectordb.WithVectors(true))
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"Name": "renamed"}, got.Data)
	assert.Empty(t, got.Vectors)
}

func TestStore_GetBatchOrderAndMissingKey(t *testing.T) {
	layout := DefaultLayout()
	layout.DefaultCollection = "hotels"
	layout.MaxParallelism = 2
	store, _ := newTestStore(t, layout)
	ctx := context.Background()

	var recs []vectordb.Record[string]
	for _, k := range []string{"a", "b", "c", "d", "e"} {
		recs = append(recs, hotelRecord(k, 1))
	}
	_, err := store.UpsertBatch(ctx, recs)
	require.NoError(t, err)

	got, err := store.GetBatch(ctx, []string{"e", "c", "a", "d"})
	require.NoError(t, err)
	require.Len(t, got, 4)
	for i, k := range []string{"e", "c", "a", "d"} {
		assert.Equal(t, k, got[i].Key)
	}

	got, err = store.GetBatch(ctx, []string{"a", "missing"})
	assert.Nil(t, got, "no partial results")
	assert.True(t, vectordb.IsNotFound(err))
}

func TestStore_CollectionOverrideAndUnprefixedLayout(t *testing.T) {
	layout := Layout{Storage: StorageHash}
	store, fake := newTestStore(t, layout)
	ctx := context.Background()

	_, err := store.Upsert(ctx, hotelRecord("1", 1))
	assert.ErrorIs(t, err, vectordb.ErrArgument, "no default collection and no override")

	_, err = store.Upsert(ctx, hotelRecord("1", 1), vectordb.WithCollection("archive"))
	require.NoError(t, err)
	assert.Contains(t, fake.hashes, "1", "keys are not prefixed")
}

func TestStore_WrapsCommandErrors(t *testing.T) {
	layout := DefaultLayout()
	layout.DefaultCollection = "hotels"
	store, fake := newTestStore(t, layout)
	boom := errors.New("LOADING")
	fake.err = boom
	ctx := context.Background()

	_, err := store.Upsert(ctx, hotelRecord("1", 1))
	assert.ErrorIs(t, err, vectordb.ErrBackendOperation)
	assert.ErrorIs(t, err, boom)

	_, err = store.Get(ctx, "1")
	assert.ErrorIs(t, err, vectordb.ErrBackendOperation)

	err = store.DeleteBatch(ctx, []string{"1", "2"})
	var opErr *vectordb.BackendOperationError
	require.ErrorAs(t, err, &opErr)
}

func TestStore_MappingErrorSendsNothing(t *testing.T) {
	layout := DefaultLayout()
	layout.DefaultCollection = "hotels"
	store, fake := newTestStore(t, layout)

	_, err := store.Upsert(context.Background(), vectordb.Record[string]{Key: "1", Vectors: map[string][]float32{"Embedding": {1, 2, 3}}})
	assert.ErrorIs(t, err, vectordb.ErrMapping)
	assert.Empty(t, fake.calls)
}

func TestStore_KeyOnlyRecordRoundTrips(t *testing.T) {
	for _, storage := range []StorageType{StorageHash, StorageJSON} {
		t.Run(string(storage), func(t *testing.T) {
			layout := DefaultLayout()
			layout.Storage = storage
			layout.DefaultCollection = "hotels"
			store, _ := newTestStore(t, layout)
			ctx := context.Background()

			key, err := store.Upsert(ctx, vectordb.Record[string]{Key: "k1"})
			require.NoError(t, err)
			assert.Equal(t, "k1", key)

			got, err := store.Get(ctx, "k1", vectordb.WithVectors(true))
			require.NoError(t, err)
			assert.Equal(t, "k1", got.Key)
			assert.Empty(t, got.Data)
			assert.Empty(t, got.Vectors)
		})
	}
}

// emptyHashMapper maps every record to a hash without fields.
type emptyHashMapper struct{ *HashMapper }

func (m emptyHashMapper) ToStorage(r vectordb.Record[string]) (HashRecord, error) {
	return HashRecord{Key: r.Key}, nil
}

func TestStore_EmptyHashIsRejected(t *testing.T) {
	layout := DefaultLayout()
	layout.DefaultCollection = "hotels"
	fake := newFakeRedis(layout)
	schema, err := vectordb.Discover(nil, reflect.TypeFor[taggedHotel](), DiscoveryOptions())
	require.NoError(t, err)

	store, err := NewHashStore(fake, StoreOptions[HashRecord]{
		Schema:  schema,
		Mapping: vectordb.CustomMapping[string, HashRecord](emptyHashMapper{NewHashMapper(schema)}),
	})
	require.NoError(t, err)

	_, err = store.UpsertBatch(context.Background(), []vectordb.Record[string]{hotelRecord("1", 1), {Key: "2"}})
	assert.ErrorIs(t, err, vectordb.ErrMapping)
	assert.Empty(t, fake.calls, "nothing is written")
}

func TestStore_CorruptJSONDocument(t *testing.T) {
	layout := DefaultLayout()
	layout.Storage = StorageJSON
	layout.DefaultCollection = "hotels"
	store, fake := newTestStore(t, layout)
	fake.docs["hotels:1"] = "{not json"

	_, err := store.Get(context.Background(), "1")
	assert.ErrorIs(t, err, vectordb.ErrMapping)
}

func TestNewStore_Validation(t *testing.T) {
	_, err := NewStore(nil, nil, reflect.TypeFor[taggedHotel]())
	assert.ErrorIs(t, err, vectordb.ErrArgument)

	fake := newFakeRedis(DefaultLayout())
	_, err = NewStore(fake, nil, nil)
	assert.ErrorIs(t, err, vectordb.ErrArgument)

	_, err = NewJSONStore(fake, StoreOptions[JSONRecord]{RecordType: reflect.TypeFor[taggedHotel]()})
	assert.ErrorIs(t, err, vectordb.ErrArgument, "layout uses hash storage")

	_, err = NewHashStore(fake, StoreOptions[HashRecord]{
		RecordType: reflect.TypeFor[taggedHotel](),
		Mapping:    vectordb.CustomMapping[string, HashRecord](nil),
	})
	assert.ErrorIs(t, err, vectordb.ErrArgument)

	type numericKey struct {
		ID uint64 `vectordb:"key"`
	}
	_, err = NewHashStore(fake, StoreOptions[HashRecord]{RecordType: reflect.TypeFor[numericKey]()})
	assert.ErrorIs(t, err, vectordb.ErrSchema)
}

// upperMapper is a custom mapper that stores names upper-cased.
type upperMapper struct{ *HashMapper }

func (m upperMapper) ToStorage(r vectordb.Record[string]) (HashRecord, error) {
	h, err := m.HashMapper.ToStorage(r)
	if err == nil {
		h.Fields["Name"] = "UPPER"
	}
	return h, err
}

func TestNewHashStore_CustomMapping(t *testing.T) {
	layout := DefaultLayout()
	layout.DefaultCollection = "hotels"
	fake := newFakeRedis(layout)
	schema, err := vectordb.Discover(nil, reflect.TypeFor[taggedHotel](), DiscoveryOptions())
	require.NoError(t, err)

	store, err := NewHashStore(fake, StoreOptions[HashRecord]{
		Schema:  schema,
		Mapping: vectordb.CustomMapping[string, HashRecord](upperMapper{NewHashMapper(schema)}),
	})
	require.NoError(t, err)

	_, err = store.Upsert(context.Background(), hotelRecord("1", 1))
	require.NoError(t, err)
	assert.Equal(t, "UPPER", fake.hashes["hotels:1"]["Name"])
}
