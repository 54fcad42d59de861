package azuresearch

import (
	"encoding/json"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func allTypesSchema(t *testing.T) *vectordb.Schema {
	t.Helper()
	s, err := vectordb.NewSchemaBuilder().
		KeyStorageAs("ID", "id", vectordb.TypeString).
		Data("S", vectordb.TypeString, vectordb.DataStorageAs("s")).
		Data("B", vectordb.TypeBool).
		Data("I32", vectordb.TypeInt32).
		Data("I64", vectordb.TypeInt64).
		Data("F32", vectordb.TypeFloat32).
		Data("F64", vectordb.TypeFloat64).
		Data("T", vectordb.TypeTime).
		Data("U", vectordb.TypeUUID).
		Data("Tags", vectordb.TypeStringList).
		Data("Flags", vectordb.TypeBoolList).
		Data("Scores", vectordb.TypeFloat64List).
		Data("Counts", vectordb.TypeInt64List).
		Vector("Embedding", 3, vectordb.VectorStorageAs("embedding")).
		Vector("Title", 2).
		Build()
	require.NoError(t, err)
	return s
}

func allTypesRecord() vectordb.Record[string] {
	return vectordb.Record[string]{
		Key: "doc-1",
		Data: map[string]any{
			"S":      "hello",
			"B":      true,
			"I32":    int32(-7),
			"I64":    int64(math.MaxInt64),
			"F32":    float32(1.5),
			"F64":    0.1,
			"T":      time.Date(2024, 5, 1, 12, 30, 0, 123000000, time.UTC),
			"U":      uuid.MustParse("6ba7b810-9dad-11d1-80b4-00c04fd430c8"),
			"Tags":   []string{"a", "b"},
			"Flags":  []bool{true, false},
			"Scores": []float64{0.5, 2},
			"Counts": []int64{1, math.MinInt64},
		},
		Vectors: map[string][]float32{
			"Embedding": {0.1, -0.2, 3.5},
			"Title":     {1, 2},
		},
	}
}

// viaJSON passes a document through JSON text the way the client does.
func viaJSON(t *testing.T, doc Document) Document {
	t.Helper()
	b, err := json.Marshal(doc)
	require.NoError(t, err)
	dec := json.NewDecoder(strings.NewReader(string(b)))
	dec.UseNumber()
	var out Document
	require.NoError(t, dec.Decode(&out))
	return out
}

func TestDocumentMapper_RoundTrip(t *testing.T) {
	schema := allTypesSchema(t)
	m := NewDocumentMapper(schema)
	want := allTypesRecord()

	doc, err := m.ToStorage(want)
	require.NoError(t, err)
	assert.Equal(t, "doc-1", doc["id"], "the key is stored under its field name")
	assert.Equal(t, "hello", doc["s"])
	assert.Equal(t, "2024-05-01T12:30:00.123Z", doc["T"])
	assert.Equal(t, "6ba7b810-9dad-11d1-80b4-00c04fd430c8", doc["U"])
	assert.Equal(t, []float32{0.1, -0.2, 3.5}, doc["embedding"])

	got, err := m.FromStorage(viaJSON(t, doc), vectordb.MappingContext{IncludeVectors: true, Schema: schema})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestDocumentMapper_MissingPropertiesAreSentAsNull(t *testing.T) {
	schema := allTypesSchema(t)
	m := NewDocumentMapper(schema)

	doc, err := m.ToStorage(vectordb.Record[string]{Key: "k", Data: map[string]any{"S": "x"}})
	require.NoError(t, err)
	assert.Len(t, doc, 1+len(schema.Data)+len(schema.Vectors))
	assert.Contains(t, doc, "I32")
	assert.Nil(t, doc["I32"])
	assert.Contains(t, doc, "embedding")
	assert.Nil(t, doc["embedding"])

	got, err := m.FromStorage(viaJSON(t, doc), vectordb.MappingContext{IncludeVectors: true, Schema: schema})
	require.NoError(t, err)
	assert.Equal(t, map[string]any{"S": "x"}, got.Data, "nulls read back as absent")
	assert.Empty(t, got.Vectors)
}

func TestDocumentMapper_VectorOmission(t *testing.T) {
	schema := allTypesSchema(t)
	m := NewDocumentMapper(schema)

	doc, err := m.ToStorage(allTypesRecord())
	require.NoError(t, err)

	got, err := m.FromStorage(viaJSON(t, doc), vectordb.MappingContext{Schema: schema})
	require.NoError(t, err)
	assert.Nil(t, got.Vectors)
	assert.Equal(t, "hello", got.Data["S"])
}

func TestDocumentMapper_IgnoresServiceAnnotations(t *testing.T) {
	schema := allTypesSchema(t)
	m := NewDocumentMapper(schema)

	got, err := m.FromStorage(Document{"id": "k", "@search.score": json.Number("1"), "@odata.context": "x", "Other": 1}, vectordb.MappingContext{Schema: schema})
	require.NoError(t, err)
	assert.Equal(t, "k", got.Key)
	assert.Empty(t, got.Data)
}

func TestDocumentMapper_Errors(t *testing.T) {
	schema := allTypesSchema(t)
	m := NewDocumentMapper(schema)

	_, err := m.ToStorage(vectordb.Record[string]{})
	assert.ErrorIs(t, err, vectordb.ErrMapping, "empty key")

	_, err = m.ToStorage(vectordb.Record[string]{Key: "k", Data: map[string]any{"I32": int64(math.MaxInt64)}})
	assert.ErrorIs(t, err, vectordb.ErrMapping)

	_, err = m.ToStorage(vectordb.Record[string]{Key: "k", Vectors: map[string][]float32{"Title": {1}}})
	assert.ErrorIs(t, err, vectordb.ErrMapping)

	_, err = m.FromStorage(Document{"id": json.Number("1")}, vectordb.MappingContext{})
	assert.ErrorIs(t, err, vectordb.ErrMapping, "non-string key")

	_, err = m.FromStorage(Document{"id": "k", "I32": json.Number("1.5")}, vectordb.MappingContext{})
	assert.ErrorIs(t, err, vectordb.ErrMapping, "fractional value for an integer")

	_, err = m.FromStorage(Document{"id": "k", "Tags": []any{"a", json.Number("1")}}, vectordb.MappingContext{})
	assert.ErrorIs(t, err, vectordb.ErrMapping, "mixed list")

	_, err = m.FromStorage(Document{"id": "k", "Title": "not a vector"}, vectordb.MappingContext{IncludeVectors: true})
	assert.ErrorIs(t, err, vectordb.ErrMapping)
}
