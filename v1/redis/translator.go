package redis

import (
	"fmt"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/redis/go-redis/v9"
)

// BackendName identifies this backend in errors and metrics.
const BackendName = "redis"

// StorageType selects how records are stored.
type StorageType string

const (
	// StorageHash stores each record as a hash; vectors are raw float32 bytes.
	StorageHash StorageType = "hash"

	// StorageJSON stores each record as a RedisJSON document.
	StorageJSON StorageType = "json"
)

// vectorElementType is the only vector element type written by the mappers.
const vectorElementType = "FLOAT32"

func (l Layout) validate() error {
	switch l.storage() {
	case StorageHash, StorageJSON:
	default:
		return vectordb.NewArgumentError("storage", "unknown storage type %q", l.Storage)
	}
	if l.MaxParallelism < 0 {
		return vectordb.NewArgumentError("max_parallelism", "must not be negative")
	}
	return nil
}

// DiscoveryOptions returns the schema restrictions of Redis. Keys are strings;
// any number of vectors is allowed, including none.
func DiscoveryOptions() vectordb.DiscoveryOptions {
	return vectordb.DiscoveryOptions{
		SupportedKeyTypes: []vectordb.PropertyType{vectordb.TypeString},
		SupportedDataTypes: []vectordb.PropertyType{
			vectordb.TypeString, vectordb.TypeBool,
			vectordb.TypeInt32, vectordb.TypeInt64, vectordb.TypeUint64,
			vectordb.TypeFloat32, vectordb.TypeFloat64,
			vectordb.TypeTime, vectordb.TypeUUID,
			vectordb.TypeStringList, vectordb.TypeBoolList,
			vectordb.TypeInt32List, vectordb.TypeInt64List,
			vectordb.TypeFloat32List, vectordb.TypeFloat64List,
		},
		SupportsMultipleVectors: true,
	}
}

// IndexDefinition is the translated form of a schema: the arguments of one
// FT.CREATE call.
type IndexDefinition struct {
	Name    string
	Options *redis.FTCreateOptions
	Fields  []*redis.FieldSchema
}

// BuildIndexSchema translates a schema into an FT.CREATE definition over
// hashes or JSON documents. With prefix the index only covers keys starting
// with "{name}:".
//
// Full-text strings become TEXT fields; other filterable strings, booleans,
// times and UUIDs become TAG fields; numbers become NUMERIC fields. Properties
// that are neither filterable nor full-text searchable are not indexed. Hash
// storage keeps lists as encoded strings, so a filterable list requires JSON
// storage.
//
// The function is pure: the same input always yields an equal definition.
func BuildIndexSchema(name string, schema *vectordb.Schema, storage StorageType, prefix bool) (*IndexDefinition, error) {
	if name == "" {
		return nil, vectordb.NewArgumentError("name", "collection name must not be empty")
	}
	if schema == nil {
		return nil, vectordb.NewArgumentError("schema", "must not be nil")
	}

	opts := &redis.FTCreateOptions{}
	switch storage {
	case StorageHash:
		opts.OnHash = true
	case StorageJSON:
		opts.OnJSON = true
	default:
		return nil, vectordb.NewArgumentError("storage", "unknown storage type %q", storage)
	}
	if prefix {
		opts.Prefix = []interface{}{name + ":"}
	}

	fields := make([]*redis.FieldSchema, 0, len(schema.Data)+len(schema.Vectors))
	for _, p := range schema.FilterableData() {
		f, err := dataField(p, storage)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	for _, v := range schema.Vectors {
		f, err := vectorField(v, storage)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}
	if len(fields) == 0 {
		return nil, vectordb.NewSchemaError("", "nothing to index: the schema has no vectors and no filterable data")
	}

	return &IndexDefinition{Name: name, Options: opts, Fields: fields}, nil
}

func dataField(p vectordb.DataProperty, storage StorageType) (*redis.FieldSchema, error) {
	if p.Type.IsList() && storage == StorageHash {
		return nil, &vectordb.UnsupportedTypeError{Backend: BackendName, Property: p.Name, Type: p.Type}
	}

	var ft redis.SearchFieldType
	switch elem := p.Type.Elem(); {
	case p.IsFullTextSearchable:
		if elem != vectordb.TypeString {
			return nil, &vectordb.UnsupportedTypeError{Backend: BackendName, Property: p.Name, Type: p.Type}
		}
		ft = redis.SearchFieldTypeText
	case elem == vectordb.TypeString, elem == vectordb.TypeBool, elem == vectordb.TypeTime, elem == vectordb.TypeUUID:
		ft = redis.SearchFieldTypeTag
	case elem.IsInteger(), elem.IsFloat():
		ft = redis.SearchFieldTypeNumeric
	default:
		return nil, &vectordb.UnsupportedTypeError{Backend: BackendName, Property: p.Name, Type: p.Type}
	}

	f := &redis.FieldSchema{FieldName: p.FieldName(), FieldType: ft}
	if storage == StorageJSON {
		f.FieldName = jsonPath(p.FieldName(), p.Type.IsList())
		f.As = p.FieldName()
	}
	return f, nil
}

func vectorField(v vectordb.VectorProperty, storage StorageType) (*redis.FieldSchema, error) {
	metric, err := distanceMetric(v)
	if err != nil {
		return nil, err
	}

	args := &redis.FTVectorArgs{}
	switch v.IndexKind {
	case vectordb.IndexUnset, vectordb.IndexHNSW:
		args.HNSWOptions = &redis.FTHNSWOptions{Type: vectorElementType, Dim: v.Dimensions, DistanceMetric: metric}
	case vectordb.IndexFlat:
		args.FlatOptions = &redis.FTFlatOptions{Type: vectorElementType, Dim: v.Dimensions, DistanceMetric: metric}
	default:
		return nil, &vectordb.UnsupportedConfigurationError{
			Backend: BackendName, Property: v.Name, Setting: "index kind", Value: string(v.IndexKind),
		}
	}

	f := &redis.FieldSchema{FieldName: v.FieldName(), FieldType: redis.SearchFieldTypeVector, VectorArgs: args}
	if storage == StorageJSON {
		f.FieldName = jsonPath(v.FieldName(), false)
		f.As = v.FieldName()
	}
	return f, nil
}

// distanceMetric maps a distance function to DISTANCE_METRIC. RediSearch has a
// single L2 metric for both Euclidean variants.
func distanceMetric(v vectordb.VectorProperty) (string, error) {
	switch v.DistanceFunction {
	case vectordb.DistanceUnset, vectordb.DistanceCosine:
		return "COSINE", nil
	case vectordb.DistanceDotProduct:
		return "IP", nil
	case vectordb.DistanceEuclidean, vectordb.DistanceEuclideanSquared:
		return "L2", nil
	}
	return "", &vectordb.UnsupportedConfigurationError{
		Backend: BackendName, Property: v.Name, Setting: "distance function", Value: string(v.DistanceFunction),
	}
}

func jsonPath(field string, list bool) string {
	if list {
		return fmt.Sprintf("$.%s[*]", field)
	}
	return "$." + field
}
