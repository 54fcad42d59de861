//go:build integration

package pgvector

import (
	"context"
	"database/sql"
	"fmt"
	"reflect"
	"testing"
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	_ "github.com/lib/pq"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
	"go.uber.org/fx"
	"go.uber.org/fx/fxtest"
)

type integrationHotel struct {
	HotelID     string    `vectordb:"key"`
	Name        string    `vectordb:"data,filterable"`
	Description string    `vectordb:"data,fulltext,name=description"`
	Rating      float64   `vectordb:"data,filterable"`
	Opened      time.Time `vectordb:"data"`
	Tags        []string  `vectordb:"data,filterable"`
	Embedding   []float32 `vectordb:"vector,dims=4,distance=cosine"`
}

func integrationRecord(key string, rating float64) vectordb.Record[string] {
	return vectordb.Record[string]{
		Key: key,
		Data: map[string]any{
			"Name":        "Hotel " + key,
			"Description": "A quiet place near the lake",
			"Rating":      rating,
			"Opened":      time.Date(2020, 1, 2, 3, 4, 5, 6000, time.UTC),
			"Tags":        []string{"lake", "quiet"},
		},
		Vectors: map[string][]float32{"Embedding": {0.1, 0.2, 0.3, float32(rating)}},
	}
}

// startPostgresApp starts the fx module against the container.
func startPostgresApp(t *testing.T, cfg *Config) (*Postgres, vectordb.CollectionManager) {
	t.Helper()

	var (
		client  *Postgres
		manager vectordb.CollectionManager
	)
	app := fxtest.New(t,
		FXModule,
		fx.Supply(cfg),
		fx.Populate(&client),
		fx.Invoke(fx.Annotate(func(m vectordb.CollectionManager) { manager = m }, fx.ParamTags(`name:"pgvector"`))),
	)
	app.RequireStart()
	t.Cleanup(app.RequireStop)
	return client, manager
}

// TestPgVectorStore verifies stores and table management against PostgreSQL
// with the vector extension.
func TestPgVectorStore(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping integration test in short mode")
	}

	ctx := context.Background()
	cfg, containerInstance := initializePostgres(ctx, t)
	defer func() {
		if err := containerInstance.Terminate(ctx); err != nil {
			t.Logf("failed to terminate container: %v", err)
		}
	}()

	client, manager := startPostgresApp(t, cfg)
	schema, err := vectordb.Discover(nil, reflect.TypeFor[integrationHotel](), DiscoveryOptions())
	require.NoError(t, err)
	const collection = "hotels"

	t.Run("Create collection", func(t *testing.T) {
		require.NoError(t, manager.CreateCollection(ctx, collection, schema))

		exists, err := manager.CollectionExists(ctx, collection)
		require.NoError(t, err)
		assert.True(t, exists)

		err = manager.CreateCollection(ctx, collection, schema)
		assert.ErrorIs(t, err, vectordb.ErrBackendOperation)
		assert.True(t, IsDuplicateTableError(err))
	})

	store, err := NewStore(client, StoreOptions{Schema: schema})
	require.NoError(t, err)

	t.Run("Upsert and Get", func(t *testing.T) {
		want := integrationRecord("1", 4.5)
		key, err := store.Upsert(ctx, want, vectordb.WithCollection(collection))
		require.NoError(t, err)
		assert.Equal(t, "1", key)

		got, err := store.Get(ctx, "1", vectordb.WithCollection(collection), vectordb.WithVectors(true))
		require.NoError(t, err)
		assert.Equal(t, want, got)

		got, err = store.Get(ctx, "1", vectordb.WithCollection(collection))
		require.NoError(t, err)
		assert.Nil(t, got.Vectors)

		_, err = store.Upsert(ctx, vectordb.Record[string]{Key: "1", Data: map[string]any{"Name": "renamed"}}, vectordb.WithCollection(collection))
		require.NoError(t, err)
		got, err = store.Get(ctx, "1", vectordb.WithCollection(collection), vectordb.WithVectors(true))
		require.NoError(t, err)
		assert.Equal(t, map[string]any{"Name": "renamed"}, got.Data, "an upsert replaces the whole row")
		assert.Empty(t, got.Vectors)
	})

	t.Run("Batch operations", func(t *testing.T) {
		var recs []vectordb.Record[string]
		var keys []string
		for i := 0; i < 20; i++ {
			key := fmt.Sprintf("batch-%02d", i)
			recs = append(recs, integrationRecord(key, float64(i)))
			keys = append(keys, key)
		}
		got, err := store.UpsertBatch(ctx, recs, vectordb.WithCollection(collection))
		require.NoError(t, err)
		assert.Equal(t, keys, got)

		fetched, err := store.GetBatch(ctx, keys, vectordb.WithCollection(collection))
		require.NoError(t, err)
		require.Len(t, fetched, len(keys))
		for i, rec := range fetched {
			assert.Equal(t, keys[i], rec.Key)
			assert.Equal(t, float64(i), rec.Data["Rating"])
		}

		_, err = store.GetBatch(ctx, []string{"batch-00", "nope"}, vectordb.WithCollection(collection))
		assert.True(t, vectordb.IsNotFound(err))

		require.NoError(t, store.DeleteBatch(ctx, keys[:10], vectordb.WithCollection(collection)))
		_, err = store.Get(ctx, keys[0], vectordb.WithCollection(collection))
		assert.True(t, vectordb.IsNotFound(err))
	})

	t.Run("Key normalization", func(t *testing.T) {
		normalized, err := vectordb.NewKeyNormalizingStore(store, vectordb.Base64URLKeyEncoding(), collection)
		require.NoError(t, err)

		_, err = normalized.Upsert(ctx, integrationRecord("a/b c", 1))
		require.NoError(t, err)
		got, err := normalized.Get(ctx, "a/b c")
		require.NoError(t, err)
		assert.Equal(t, "a/b c", got.Key)
	})

	t.Run("List and delete collections", func(t *testing.T) {
		for i := 0; i < listPageSize+5; i++ {
			require.NoError(t, manager.CreateCollection(ctx, fmt.Sprintf("extra_%03d", i), schema))
		}
		names, err := vectordb.CollectNames(manager.ListCollections(ctx))
		require.NoError(t, err)
		assert.Len(t, names, listPageSize+6)
		assert.Equal(t, "extra_000", names[0])
		assert.Equal(t, collection, names[len(names)-1])

		require.NoError(t, manager.DeleteCollection(ctx, collection))
		require.NoError(t, manager.DeleteCollection(ctx, collection), "dropping a missing table is a no-op")

		exists, err := manager.CollectionExists(ctx, collection)
		require.NoError(t, err)
		assert.False(t, exists)

		_, err = store.Get(ctx, "1", vectordb.WithCollection(collection))
		assert.True(t, vectordb.IsNotFound(err), "a lookup in a missing table reads as a missing row")

		_, err = store.Upsert(ctx, integrationRecord("1", 1), vectordb.WithCollection(collection))
		assert.ErrorIs(t, err, vectordb.ErrBackendOperation)
		assert.True(t, IsUndefinedTableError(err))
	})
}

// Helper functions

func initializePostgres(ctx context.Context, t *testing.T) (*Config, testcontainers.Container) {
	req := testcontainers.ContainerRequest{
		Image: "pgvector/pgvector:pg16",
		Env: map[string]string{
			"POSTGRES_USER":     "testuser",
			"POSTGRES_PASSWORD": "testpass",
			"POSTGRES_DB":       "testdb",
		},
		ExposedPorts: []string{"5432/tcp"},
		WaitingFor: wait.ForLog("database system is ready to accept connections").
			WithOccurrence(2).
			WithStartupTimeout(60 * time.Second),
	}

	containerInstance, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	require.NoError(t, err)

	host, err := containerInstance.Host(ctx)
	require.NoError(t, err)
	port, err := containerInstance.MappedPort(ctx, "5432")
	require.NoError(t, err)

	cfg := DefaultConfig()
	cfg.Connection = Connection{
		Host:     host,
		Port:     port.Port(),
		User:     "testuser",
		Password: "testpass",
		DbName:   "testdb",
		SSLMode:  "disable",
	}

	require.NoError(t, waitForPostgresReady(cfg.DSN(), 30*time.Second))
	return cfg, containerInstance
}

// waitForPostgresReady polls until the server answers queries.
func waitForPostgresReady(dsn string, timeout time.Duration) error {
	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return err
	}
	defer db.Close()

	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		if err := db.Ping(); err == nil {
			return nil
		}
		time.Sleep(500 * time.Millisecond)
	}
	return fmt.Errorf("postgres not ready after %s", timeout)
}
