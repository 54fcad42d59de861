package qdrant

import (
	"testing"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	qdrant "github.com/qdrant/go-client/qdrant"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/proto"
)

func hotelSchema(t *testing.T, keyType vectordb.PropertyType, vectors int) *vectordb.Schema {
	t.Helper()
	b := vectordb.NewSchemaBuilder().
		Key("id", keyType).
		Data("name", vectordb.TypeString, vectordb.Filterable()).
		Data("description", vectordb.TypeString, vectordb.FullTextSearchable()).
		Data("rating", vectordb.TypeFloat64, vectordb.Filterable()).
		Data("rooms", vectordb.TypeInt32).
		Data("tags", vectordb.TypeStringList, vectordb.Filterable()).
		Vector("embedding", 4, vectordb.WithDistance(vectordb.DistanceDotProduct))
	if vectors > 1 {
		b = b.Vector("summary", 2, vectordb.VectorStorageAs("summary_vec"), vectordb.WithDistance(vectordb.DistanceEuclidean))
	}
	s, err := b.Build()
	require.NoError(t, err)
	return s
}

func TestBuildCreateCollection_SingleVector(t *testing.T) {
	req, err := BuildCreateCollection("hotels", hotelSchema(t, vectordb.TypeUint64, 1), false)
	require.NoError(t, err)

	assert.Equal(t, "hotels", req.GetCollectionName())
	params := req.GetVectorsConfig().GetParams()
	require.NotNil(t, params)
	assert.Equal(t, uint64(4), params.GetSize())
	assert.Equal(t, qdrant.Distance_Dot, params.GetDistance())
}

func TestBuildCreateCollection_NamedVectors(t *testing.T) {
	req, err := BuildCreateCollection("hotels", hotelSchema(t, vectordb.TypeUUID, 2), true)
	require.NoError(t, err)

	named := req.GetVectorsConfig().GetParamsMap().GetMap()
	require.Len(t, named, 2)
	assert.Equal(t, uint64(4), named["embedding"].GetSize())
	assert.Equal(t, qdrant.Distance_Dot, named["embedding"].GetDistance())
	assert.Equal(t, uint64(2), named["summary_vec"].GetSize())
	assert.Equal(t, qdrant.Distance_Euclid, named["summary_vec"].GetDistance())
}

func TestBuildCreateCollection_IsDeterministic(t *testing.T) {
	schema := hotelSchema(t, vectordb.TypeUint64, 2)

	first, err := BuildCreateCollection("hotels", schema, true)
	require.NoError(t, err)
	second, err := BuildCreateCollection("hotels", schema, true)
	require.NoError(t, err)
	assert.True(t, proto.Equal(first, second))

	idx1, err := BuildPayloadIndexes("hotels", schema)
	require.NoError(t, err)
	idx2, err := BuildPayloadIndexes("hotels", schema)
	require.NoError(t, err)
	require.Len(t, idx2, len(idx1))
	for i := range idx1 {
		assert.True(t, proto.Equal(idx1[i], idx2[i]))
	}
}

func TestBuildCreateCollection_DefaultDistanceIsCosine(t *testing.T) {
	s, err := vectordb.NewSchemaBuilder().Key("id", vectordb.TypeUint64).Vector("v", 3).Build()
	require.NoError(t, err)

	req, err := BuildCreateCollection("c", s, false)
	require.NoError(t, err)
	assert.Equal(t, qdrant.Distance_Cosine, req.GetVectorsConfig().GetParams().GetDistance())
}

func TestBuildCreateCollection_Errors(t *testing.T) {
	single := hotelSchema(t, vectordb.TypeUint64, 1)

	tests := []struct {
		name   string
		schema *vectordb.Schema
		coll   string
		named  bool
		target error
	}{
		{
			name:   "empty collection name",
			schema: single,
			coll:   "",
			target: vectordb.ErrArgument,
		},
		{
			name:   "multiple vectors without named vectors",
			schema: hotelSchema(t, vectordb.TypeUint64, 2),
			coll:   "c",
			target: vectordb.ErrSchema,
		},
		{
			name: "flat index",
			schema: func() *vectordb.Schema {
				s, err := vectordb.NewSchemaBuilder().Key("id", vectordb.TypeUint64).
					Vector("v", 3, vectordb.WithIndexKind(vectordb.IndexFlat)).Build()
				require.NoError(t, err)
				return s
			}(),
			coll:   "c",
			target: vectordb.ErrUnsupportedConfiguration,
		},
		{
			name: "squared euclidean distance",
			schema: func() *vectordb.Schema {
				s, err := vectordb.NewSchemaBuilder().Key("id", vectordb.TypeUint64).
					Vector("v", 3, vectordb.WithDistance(vectordb.DistanceEuclideanSquared)).Build()
				require.NoError(t, err)
				return s
			}(),
			coll:   "c",
			target: vectordb.ErrUnsupportedConfiguration,
		},
		{
			name: "no vectors",
			schema: func() *vectordb.Schema {
				s, err := vectordb.NewSchemaBuilder().Key("id", vectordb.TypeUint64).Build()
				require.NoError(t, err)
				return s
			}(),
			coll:   "c",
			target: vectordb.ErrSchema,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := BuildCreateCollection(tt.coll, tt.schema, tt.named)
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.target)
		})
	}
}

func TestBuildPayloadIndexes_FieldTypes(t *testing.T) {
	s, err := vectordb.NewSchemaBuilder().
		Key("id", vectordb.TypeUint64).
		Data("keyword", vectordb.TypeString, vectordb.Filterable()).
		Data("text", vectordb.TypeString, vectordb.FullTextSearchable()).
		Data("count", vectordb.TypeInt64, vectordb.Filterable()).
		Data("big", vectordb.TypeUint64, vectordb.Filterable()).
		Data("score", vectordb.TypeFloat32, vectordb.Filterable()).
		Data("flag", vectordb.TypeBool, vectordb.Filterable()).
		Data("at", vectordb.TypeTime, vectordb.Filterable()).
		Data("ref", vectordb.TypeUUID, vectordb.Filterable()).
		Data("labels", vectordb.TypeStringList, vectordb.Filterable()).
		Data("plain", vectordb.TypeString).
		Vector("v", 2).
		Build()
	require.NoError(t, err)

	reqs, err := BuildPayloadIndexes("c", s)
	require.NoError(t, err)

	got := map[string]qdrant.FieldType{}
	for _, r := range reqs {
		assert.Equal(t, "c", r.GetCollectionName())
		assert.True(t, r.GetWait())
		got[r.GetFieldName()] = r.GetFieldType()
	}

	assert.Equal(t, map[string]qdrant.FieldType{
		"keyword": qdrant.FieldType_FieldTypeKeyword,
		"text":    qdrant.FieldType_FieldTypeText,
		"count":   qdrant.FieldType_FieldTypeInteger,
		"big":     qdrant.FieldType_FieldTypeInteger,
		"score":   qdrant.FieldType_FieldTypeFloat,
		"flag":    qdrant.FieldType_FieldTypeBool,
		"at":      qdrant.FieldType_FieldTypeDatetime,
		"ref":     qdrant.FieldType_FieldTypeUuid,
		"labels":  qdrant.FieldType_FieldTypeKeyword,
	}, got)
}

func TestBuildPayloadIndexes_FilterableFullTextGetsOneTextIndex(t *testing.T) {
	s, err := vectordb.NewSchemaBuilder().
		Key("id", vectordb.TypeUint64).
		Data("title", vectordb.TypeString, vectordb.Filterable(), vectordb.FullTextSearchable()).
		Data("tags", vectordb.TypeStringList, vectordb.Filterable(), vectordb.FullTextSearchable()).
		Vector("v", 2).
		Build()
	require.NoError(t, err)

	reqs, err := BuildPayloadIndexes("c", s)
	require.NoError(t, err)
	require.Len(t, reqs, 2, "one index per field, no extra keyword index")
	assert.Equal(t, "title", reqs[0].GetFieldName())
	assert.Equal(t, qdrant.FieldType_FieldTypeText, reqs[0].GetFieldType())
	assert.Equal(t, "tags", reqs[1].GetFieldName())
	assert.Equal(t, qdrant.FieldType_FieldTypeText, reqs[1].GetFieldType())
}

func TestBuildPayloadIndexes_UsesStorageNames(t *testing.T) {
	s, err := vectordb.NewSchemaBuilder().
		Key("id", vectordb.TypeUint64).
		Data("title", vectordb.TypeString, vectordb.Filterable(), vectordb.DataStorageAs("hotel_title")).
		Vector("v", 2).
		Build()
	require.NoError(t, err)

	reqs, err := BuildPayloadIndexes("c", s)
	require.NoError(t, err)
	require.Len(t, reqs, 1)
	assert.Equal(t, "hotel_title", reqs[0].GetFieldName())
}

func TestDiscoveryOptions(t *testing.T) {
	stringKey, err := vectordb.NewSchemaBuilder().Key("id", vectordb.TypeString).Vector("v", 2).Build()
	require.NoError(t, err)
	_, err = vectordb.Discover(stringKey, nil, DiscoveryOptions(false))
	assert.ErrorIs(t, err, vectordb.ErrSchema)

	two := hotelSchema(t, vectordb.TypeUint64, 2)
	_, err = vectordb.Discover(two, nil, DiscoveryOptions(false))
	assert.ErrorIs(t, err, vectordb.ErrSchema)
	_, err = vectordb.Discover(two, nil, DiscoveryOptions(true))
	assert.NoError(t, err)
}
