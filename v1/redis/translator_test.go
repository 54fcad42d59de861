package redis

import (
	"testing"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func hotelSchema(t *testing.T, opts ...vectordb.VectorOption) *vectordb.Schema {
	t.Helper()
	s, err := vectordb.NewSchemaBuilder().
		Key("HotelID", vectordb.TypeString).
		Data("Name", vectordb.TypeString, vectordb.Filterable()).
		Data("Description", vectordb.TypeString, vectordb.FullTextSearchable(), vectordb.DataStorageAs("description")).
		Data("Rating", vectordb.TypeFloat64, vectordb.Filterable()).
		Data("Open", vectordb.TypeBool, vectordb.Filterable()).
		Data("Rooms", vectordb.TypeInt32).
		Vector("Embedding", 4, opts...).
		Build()
	require.NoError(t, err)
	return s
}

func TestBuildIndexSchema_Hash(t *testing.T) {
	def, err := BuildIndexSchema("hotels", hotelSchema(t), StorageHash, true)
	require.NoError(t, err)

	assert.Equal(t, "hotels", def.Name)
	assert.True(t, def.Options.OnHash)
	assert.False(t, def.Options.OnJSON)
	assert.Equal(t, []interface{}{"hotels:"}, def.Options.Prefix)

	require.Len(t, def.Fields, 5, "Rooms is neither filterable nor full text searchable")
	assert.Equal(t, &redis.FieldSchema{FieldName: "Name", FieldType: redis.SearchFieldTypeTag}, def.Fields[0])
	assert.Equal(t, &redis.FieldSchema{FieldName: "description", FieldType: redis.SearchFieldTypeText}, def.Fields[1])
	assert.Equal(t, &redis.FieldSchema{FieldName: "Rating", FieldType: redis.SearchFieldTypeNumeric}, def.Fields[2])
	assert.Equal(t, &redis.FieldSchema{FieldName: "Open", FieldType: redis.SearchFieldTypeTag}, def.Fields[3])

	vec := def.Fields[4]
	assert.Equal(t, "Embedding", vec.FieldName)
	assert.Equal(t, redis.SearchFieldTypeVector, vec.FieldType)
	require.NotNil(t, vec.VectorArgs.HNSWOptions, "HNSW is the default index kind")
	assert.Nil(t, vec.VectorArgs.FlatOptions)
	assert.Equal(t, redis.FTHNSWOptions{Type: "FLOAT32", Dim: 4, DistanceMetric: "COSINE"}, *vec.VectorArgs.HNSWOptions)
}

func TestBuildIndexSchema_JSONUsesPathsAndAliases(t *testing.T) {
	s, err := vectordb.NewSchemaBuilder().
		Key("ID", vectordb.TypeString).
		Data("Tags", vectordb.TypeStringList, vectordb.Filterable()).
		Data("Title", vectordb.TypeString, vectordb.FullTextSearchable(), vectordb.DataStorageAs("title")).
		Vector("Embedding", 3, vectordb.VectorStorageAs("embedding")).
		Build()
	require.NoError(t, err)

	def, err := BuildIndexSchema("docs", s, StorageJSON, false)
	require.NoError(t, err)

	assert.True(t, def.Options.OnJSON)
	assert.Nil(t, def.Options.Prefix)
	require.Len(t, def.Fields, 3)
	assert.Equal(t, "$.Tags[*]", def.Fields[0].FieldName)
	assert.Equal(t, "Tags", def.Fields[0].As)
	assert.Equal(t, redis.SearchFieldTypeTag, def.Fields[0].FieldType)
	assert.Equal(t, "$.title", def.Fields[1].FieldName)
	assert.Equal(t, "title", def.Fields[1].As)
	assert.Equal(t, "$.embedding", def.Fields[2].FieldName)
	assert.Equal(t, "embedding", def.Fields[2].As)
}

func TestBuildIndexSchema_VectorSettings(t *testing.T) {
	tests := []struct {
		name   string
		opts   []vectordb.VectorOption
		metric string
		flat   bool
	}{
		{"dot product", []vectordb.VectorOption{vectordb.WithDistance(vectordb.DistanceDotProduct)}, "IP", false},
		{"euclidean", []vectordb.VectorOption{vectordb.WithDistance(vectordb.DistanceEuclidean)}, "L2", false},
		{"euclidean squared", []vectordb.VectorOption{vectordb.WithDistance(vectordb.DistanceEuclideanSquared)}, "L2", false},
		{"flat", []vectordb.VectorOption{vectordb.WithIndexKind(vectordb.IndexFlat)}, "COSINE", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			def, err := BuildIndexSchema("hotels", hotelSchema(t, tt.opts...), StorageHash, true)
			require.NoError(t, err)
			args := def.Fields[len(def.Fields)-1].VectorArgs
			if tt.flat {
				require.NotNil(t, args.FlatOptions)
				assert.Nil(t, args.HNSWOptions)
				assert.Equal(t, tt.metric, args.FlatOptions.DistanceMetric)
				return
			}
			require.NotNil(t, args.HNSWOptions)
			assert.Equal(t, tt.metric, args.HNSWOptions.DistanceMetric)
		})
	}
}

func TestBuildIndexSchema_Errors(t *testing.T) {
	_, err := BuildIndexSchema("hotels", hotelSchema(t, vectordb.WithDistance(vectordb.DistanceManhattan)), StorageHash, true)
	assert.ErrorIs(t, err, vectordb.ErrUnsupportedConfiguration)
	var cfgErr *vectordb.UnsupportedConfigurationError
	require.ErrorAs(t, err, &cfgErr)
	assert.Equal(t, "Embedding", cfgErr.Property)

	_, err = BuildIndexSchema("", hotelSchema(t), StorageHash, true)
	assert.ErrorIs(t, err, vectordb.ErrArgument)

	_, err = BuildIndexSchema("hotels", hotelSchema(t), StorageType("xml"), true)
	assert.ErrorIs(t, err, vectordb.ErrArgument)

	lists, err := vectordb.NewSchemaBuilder().
		Key("ID", vectordb.TypeString).
		Data("Tags", vectordb.TypeStringList, vectordb.Filterable()).
		Build()
	require.NoError(t, err)
	_, err = BuildIndexSchema("docs", lists, StorageHash, true)
	assert.ErrorIs(t, err, vectordb.ErrUnsupportedType, "hash fields cannot index lists")

	fulltextNumber, err := vectordb.NewSchemaBuilder().
		Key("ID", vectordb.TypeString).
		Data("Count", vectordb.TypeInt64, vectordb.FullTextSearchable()).
		Build()
	require.NoError(t, err)
	_, err = BuildIndexSchema("docs", fulltextNumber, StorageJSON, true)
	assert.ErrorIs(t, err, vectordb.ErrUnsupportedType)

	nothing, err := vectordb.NewSchemaBuilder().
		Key("ID", vectordb.TypeString).
		Data("Note", vectordb.TypeString).
		Build()
	require.NoError(t, err)
	_, err = BuildIndexSchema("docs", nothing, StorageHash, true)
	assert.ErrorIs(t, err, vectordb.ErrSchema)
}

func TestBuildIndexSchema_Deterministic(t *testing.T) {
	a, err := BuildIndexSchema("hotels", hotelSchema(t), StorageJSON, true)
	require.NoError(t, err)
	b, err := BuildIndexSchema("hotels", hotelSchema(t), StorageJSON, true)
	require.NoError(t, err)
	assert.Equal(t, a, b)
}

func TestLayoutKeys(t *testing.T) {
	prefixed := Layout{PrefixCollectionName: true}
	assert.Equal(t, "hotels:1", prefixed.key("hotels", "1"))
	assert.Equal(t, []string{"hotels:a", "hotels:b"}, prefixed.keys("hotels", []string{"a", "b"}))

	flat := Layout{}
	assert.Equal(t, "1", flat.key("hotels", "1"))
	assert.Equal(t, StorageHash, flat.storage())

	assert.ErrorIs(t, Layout{Storage: "xml"}.validate(), vectordb.ErrArgument)
	assert.ErrorIs(t, Layout{MaxParallelism: -1}.validate(), vectordb.ErrArgument)
	assert.NoError(t, DefaultLayout().validate())
}

func TestConfigBuilders(t *testing.T) {
	cfg := FromEndpoint("redis.internal", 6380).
		WithPassword("secret").
		WithStorage(StorageJSON).
		WithPrefixCollectionName(false).
		WithDefaultCollection("docs").
		WithMaxParallelism(8)

	assert.Equal(t, "redis.internal", cfg.Host)
	assert.Equal(t, 6380, cfg.Port)
	assert.Equal(t, "secret", cfg.Password)
	assert.Equal(t, StorageJSON, cfg.Storage)
	assert.False(t, cfg.PrefixCollectionName)
	assert.Equal(t, vectordb.StoreConfig{DefaultCollection: "docs", MaxParallelism: 8}, cfg.StoreConfig())

	assert.True(t, DefaultConfig().PrefixCollectionName)
}

func TestNewClientRejectsInvalidLayout(t *testing.T) {
	_, err := NewClient(DefaultConfig().WithStorage("xml"))
	assert.ErrorIs(t, err, vectordb.ErrArgument)

	_, err = NewFailoverClient(FailoverConfig{})
	assert.Error(t, err)
}
