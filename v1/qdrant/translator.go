package qdrant

import (
	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// BackendName identifies this backend in errors and metrics.
const BackendName = "qdrant"

// DiscoveryOptions returns the schema restrictions of Qdrant. Keys are unsigned
// 64-bit integers or UUIDs; more than one vector requires named vectors.
func DiscoveryOptions(namedVectors bool) vectordb.DiscoveryOptions {
	return vectordb.DiscoveryOptions{
		SupportedKeyTypes: []vectordb.PropertyType{vectordb.TypeUint64, vectordb.TypeUUID},
		SupportedDataTypes: []vectordb.PropertyType{
			vectordb.TypeString, vectordb.TypeBool,
			vectordb.TypeInt32, vectordb.TypeInt64, vectordb.TypeUint64,
			vectordb.TypeFloat32, vectordb.TypeFloat64,
			vectordb.TypeTime, vectordb.TypeUUID,
			vectordb.TypeStringList, vectordb.TypeBoolList,
			vectordb.TypeInt32List, vectordb.TypeInt64List,
			vectordb.TypeFloat32List, vectordb.TypeFloat64List,
		},
		SupportsMultipleVectors: namedVectors,
		RequireVectors:          true,
	}
}

// BuildCreateCollection translates a schema into a CreateCollection request.
// With namedVectors every vector property becomes an entry keyed by its field
// name; otherwise the schema must hold exactly one vector, stored unnamed.
//
// Only HNSW indexes exist in Qdrant, so IndexFlat is rejected. The function is
// pure: the same input always yields an equal request.
func BuildCreateCollection(name string, schema *vectordb.Schema, namedVectors bool) (*qdrant.CreateCollection, error) {
	if name == "" {
		return nil, vectordb.NewArgumentError("name", "collection name must not be empty")
	}
	if len(schema.Vectors) == 0 {
		return nil, vectordb.NewSchemaError("", "at least one vector property is required")
	}
	if !namedVectors && len(schema.Vectors) > 1 {
		return nil, vectordb.NewSchemaError(schema.Vectors[1].Name, "multiple vectors require named vectors")
	}

	params := make(map[string]*qdrant.VectorParams, len(schema.Vectors))
	for _, v := range schema.Vectors {
		p, err := vectorParams(v)
		if err != nil {
			return nil, err
		}
		params[v.FieldName()] = p
	}

	req := &qdrant.CreateCollection{CollectionName: name}
	if namedVectors {
		req.VectorsConfig = qdrant.NewVectorsConfigMap(params)
	} else {
		req.VectorsConfig = qdrant.NewVectorsConfig(params[schema.Vectors[0].FieldName()])
	}
	return req, nil
}

func vectorParams(v vectordb.VectorProperty) (*qdrant.VectorParams, error) {
	switch v.IndexKind {
	case vectordb.IndexUnset, vectordb.IndexHNSW:
	default:
		return nil, &vectordb.UnsupportedConfigurationError{
			Backend: BackendName, Property: v.Name, Setting: "index kind", Value: string(v.IndexKind),
		}
	}

	distance, err := distanceFor(v)
	if err != nil {
		return nil, err
	}
	return &qdrant.VectorParams{
		Size:     uint64(v.Dimensions),
		Distance: distance,
	}, nil
}

func distanceFor(v vectordb.VectorProperty) (qdrant.Distance, error) {
	switch v.DistanceFunction {
	case vectordb.DistanceUnset, vectordb.DistanceCosine:
		return qdrant.Distance_Cosine, nil
	case vectordb.DistanceDotProduct:
		return qdrant.Distance_Dot, nil
	case vectordb.DistanceEuclidean:
		return qdrant.Distance_Euclid, nil
	case vectordb.DistanceManhattan:
		return qdrant.Distance_Manhattan, nil
	}
	return 0, &vectordb.UnsupportedConfigurationError{
		Backend: BackendName, Property: v.Name, Setting: "distance function", Value: string(v.DistanceFunction),
	}
}

// BuildPayloadIndexes returns one payload index request per filterable or
// full-text searchable data property, in schema order.
func BuildPayloadIndexes(name string, schema *vectordb.Schema) ([]*qdrant.CreateFieldIndexCollection, error) {
	props := schema.FilterableData()
	reqs := make([]*qdrant.CreateFieldIndexCollection, 0, len(props))
	for _, p := range props {
		ft, err := fieldTypeFor(p)
		if err != nil {
			return nil, err
		}
		wait := true
		reqs = append(reqs, &qdrant.CreateFieldIndexCollection{
			CollectionName: name,
			Wait:           &wait,
			FieldName:      p.FieldName(),
			FieldType:      ft.Enum(),
		})
	}
	return reqs, nil
}

// fieldTypeFor maps a data property (or its list element) to a payload index type.
func fieldTypeFor(p vectordb.DataProperty) (qdrant.FieldType, error) {
	switch p.Type.Elem() {
	case vectordb.TypeString:
		// Qdrant keeps one payload index per field, so a second keyword request
		// would replace the text index. Full text wins when both are asked for.
		if p.IsFullTextSearchable {
			return qdrant.FieldType_FieldTypeText, nil
		}
		return qdrant.FieldType_FieldTypeKeyword, nil
	case vectordb.TypeInt32, vectordb.TypeInt64, vectordb.TypeUint64:
		return qdrant.FieldType_FieldTypeInteger, nil
	case vectordb.TypeFloat32, vectordb.TypeFloat64:
		return qdrant.FieldType_FieldTypeFloat, nil
	case vectordb.TypeBool:
		return qdrant.FieldType_FieldTypeBool, nil
	case vectordb.TypeTime:
		return qdrant.FieldType_FieldTypeDatetime, nil
	case vectordb.TypeUUID:
		return qdrant.FieldType_FieldTypeUuid, nil
	}
	return 0, &vectordb.UnsupportedTypeError{Backend: BackendName, Property: p.Name, Type: p.Type}
}
