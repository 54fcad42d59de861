package azuresearch

import (
	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
)

// BackendName identifies Azure AI Search in errors, logs and metrics.
const BackendName = "azuresearch"

// Entity data model type names used in index definitions.
const (
	edmString         = "Edm.String"
	edmBoolean        = "Edm.Boolean"
	edmInt32          = "Edm.Int32"
	edmInt64          = "Edm.Int64"
	edmDouble         = "Edm.Double"
	edmDateTimeOffset = "Edm.DateTimeOffset"
	edmVector         = "Collection(Edm.Single)"
)

// Vector search algorithm kinds and metrics.
const (
	algorithmHNSW       = "hnsw"
	algorithmExhaustive = "exhaustiveKnn"

	metricCosine     = "cosine"
	metricDotProduct = "dotProduct"
	metricEuclidean  = "euclidean"
)

// Index is the index definition sent to PUT/POST /indexes.
type Index struct {
	Name         string        `json:"name"`
	Fields       []Field       `json:"fields"`
	VectorSearch *VectorSearch `json:"vectorSearch,omitempty"`
}

// Field is one field of an index definition.
type Field struct {
	Name                string `json:"name"`
	Type                string `json:"type"`
	Key                 bool   `json:"key,omitempty"`
	Filterable          bool   `json:"filterable"`
	Searchable          bool   `json:"searchable"`
	Dimensions          int    `json:"dimensions,omitempty"`
	VectorSearchProfile string `json:"vectorSearchProfile,omitempty"`
}

// VectorSearch holds the algorithm configurations and the profiles that bind
// vector fields to them.
type VectorSearch struct {
	Algorithms []Algorithm `json:"algorithms"`
	Profiles   []Profile   `json:"profiles"`
}

// Algorithm is one vector search algorithm configuration. Exactly one of the
// parameter blocks is set, matching Kind.
type Algorithm struct {
	Name                    string               `json:"name"`
	Kind                    string               `json:"kind"`
	HNSWParameters          *AlgorithmParameters `json:"hnswParameters,omitempty"`
	ExhaustiveKnnParameters *AlgorithmParameters `json:"exhaustiveKnnParameters,omitempty"`
}

// AlgorithmParameters carries the similarity metric.
type AlgorithmParameters struct {
	Metric string `json:"metric"`
}

// Profile binds a vector field to an algorithm configuration.
type Profile struct {
	Name      string `json:"name"`
	Algorithm string `json:"algorithm"`
}

// DiscoveryOptions returns the schema restrictions of Azure AI Search: string
// keys, any number of vectors, no unsigned integers.
func DiscoveryOptions() vectordb.DiscoveryOptions {
	return vectordb.DiscoveryOptions{
		SupportedKeyTypes: []vectordb.PropertyType{vectordb.TypeString},
		SupportedDataTypes: []vectordb.PropertyType{
			vectordb.TypeString, vectordb.TypeBool, vectordb.TypeInt32, vectordb.TypeInt64,
			vectordb.TypeFloat32, vectordb.TypeFloat64, vectordb.TypeTime, vectordb.TypeUUID,
			vectordb.TypeStringList, vectordb.TypeBoolList, vectordb.TypeInt32List,
			vectordb.TypeInt64List, vectordb.TypeFloat32List, vectordb.TypeFloat64List,
		},
		SupportsMultipleVectors: true,
	}
}

// AlgorithmName is the algorithm configuration name of a vector property.
func AlgorithmName(p vectordb.VectorProperty) string { return p.FieldName() + "AlgoConfig" }

// ProfileName is the vector search profile name of a vector property.
func ProfileName(p vectordb.VectorProperty) string { return p.FieldName() + "Profile" }

// BuildIndex translates schema into an index definition. It is pure, so the
// same schema always yields a deep-equal definition.
//
// Every vector property gets its own algorithm configuration and profile,
// named after the property. Unset index kinds become HNSW and unset distances
// cosine.
func BuildIndex(name string, schema *vectordb.Schema) (*Index, error) {
	if name == "" {
		return nil, vectordb.NewArgumentError("name", "index name must not be empty")
	}
	if schema == nil {
		return nil, vectordb.NewArgumentError("schema", "must not be nil")
	}

	fields := make([]Field, 0, 1+len(schema.Data)+len(schema.Vectors))
	fields = append(fields, Field{
		Name:       schema.Key.FieldName(),
		Type:       edmString,
		Key:        true,
		Filterable: true,
	})

	for _, p := range schema.Data {
		f, err := dataField(p)
		if err != nil {
			return nil, err
		}
		fields = append(fields, f)
	}

	idx := &Index{Name: name}
	if len(schema.Vectors) > 0 {
		idx.VectorSearch = &VectorSearch{
			Algorithms: make([]Algorithm, 0, len(schema.Vectors)),
			Profiles:   make([]Profile, 0, len(schema.Vectors)),
		}
	}
	for _, p := range schema.Vectors {
		algo, err := algorithm(p)
		if err != nil {
			return nil, err
		}
		profile := Profile{Name: ProfileName(p), Algorithm: algo.Name}
		idx.VectorSearch.Algorithms = append(idx.VectorSearch.Algorithms, algo)
		idx.VectorSearch.Profiles = append(idx.VectorSearch.Profiles, profile)
		fields = append(fields, Field{
			Name:                p.FieldName(),
			Type:                edmVector,
			Searchable:          true,
			Dimensions:          p.Dimensions,
			VectorSearchProfile: profile.Name,
		})
	}

	idx.Fields = fields
	return idx, nil
}

func dataField(p vectordb.DataProperty) (Field, error) {
	edm, err := edmType(p)
	if err != nil {
		return Field{}, err
	}
	if p.IsFullTextSearchable && p.Type.Elem() != vectordb.TypeString {
		return Field{}, &vectordb.UnsupportedTypeError{Property: p.Name, Type: p.Type, Backend: BackendName}
	}
	return Field{
		Name:       p.FieldName(),
		Type:       edm,
		Filterable: p.IsFilterable,
		Searchable: p.IsFullTextSearchable,
	}, nil
}

func edmType(p vectordb.DataProperty) (string, error) {
	var edm string
	switch p.Type.Elem() {
	case vectordb.TypeString, vectordb.TypeUUID:
		edm = edmString
	case vectordb.TypeBool:
		edm = edmBoolean
	case vectordb.TypeInt32:
		edm = edmInt32
	case vectordb.TypeInt64:
		edm = edmInt64
	case vectordb.TypeFloat32, vectordb.TypeFloat64:
		edm = edmDouble
	case vectordb.TypeTime:
		edm = edmDateTimeOffset
	default:
		return "", &vectordb.UnsupportedTypeError{Property: p.Name, Type: p.Type, Backend: BackendName}
	}
	if p.Type.IsList() {
		return "Collection(" + edm + ")", nil
	}
	return edm, nil
}

func algorithm(p vectordb.VectorProperty) (Algorithm, error) {
	var metric string
	switch p.DistanceFunction {
	case vectordb.DistanceUnset, vectordb.DistanceCosine:
		metric = metricCosine
	case vectordb.DistanceDotProduct:
		metric = metricDotProduct
	case vectordb.DistanceEuclidean:
		metric = metricEuclidean
	default:
		return Algorithm{}, &vectordb.UnsupportedConfigurationError{
			Property: p.Name,
			Setting:  "distance",
			Value:    string(p.DistanceFunction),
			Backend:  BackendName,
		}
	}

	algo := Algorithm{Name: AlgorithmName(p)}
	params := &AlgorithmParameters{Metric: metric}
	switch p.IndexKind {
	case vectordb.IndexUnset, vectordb.IndexHNSW:
		algo.Kind = algorithmHNSW
		algo.HNSWParameters = params
	case vectordb.IndexFlat:
		algo.Kind = algorithmExhaustive
		algo.ExhaustiveKnnParameters = params
	default:
		return Algorithm{}, &vectordb.UnsupportedConfigurationError{
			Property: p.Name,
			Setting:  "index kind",
			Value:    string(p.IndexKind),
			Backend:  BackendName,
		}
	}
	return algo, nil
}
