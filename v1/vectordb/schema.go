package vectordb

import "slices"

// PropertyType is the vendor-neutral type of a record property.
type PropertyType int

const (
	TypeUnknown PropertyType = iota
	TypeString
	TypeBool
	TypeInt32
	TypeInt64
	TypeUint64
	TypeFloat32
	TypeFloat64
	TypeTime
	TypeUUID
	TypeStringList
	TypeBoolList
	TypeInt32List
	TypeInt64List
	TypeFloat32List
	TypeFloat64List
	// TypeFloat32Vector is the embedding type for vector properties.
	TypeFloat32Vector
)

var propertyTypeNames = map[PropertyType]string{
	TypeUnknown:       "unknown",
	TypeString:        "string",
	TypeBool:          "bool",
	TypeInt32:         "int32",
	TypeInt64:         "int64",
	TypeUint64:        "uint64",
	TypeFloat32:       "float32",
	TypeFloat64:       "float64",
	TypeTime:          "time",
	TypeUUID:          "uuid",
	TypeStringList:    "[]string",
	TypeBoolList:      "[]bool",
	TypeInt32List:     "[]int32",
	TypeInt64List:     "[]int64",
	TypeFloat32List:   "[]float32",
	TypeFloat64List:   "[]float64",
	TypeFloat32Vector: "vector<float32>",
}

func (t PropertyType) String() string {
	if s, ok := propertyTypeNames[t]; ok {
		return s
	}
	return "unknown"
}

// IsList reports whether t is one of the homogeneous list types.
func (t PropertyType) IsList() bool {
	switch t {
	case TypeStringList, TypeBoolList, TypeInt32List, TypeInt64List, TypeFloat32List, TypeFloat64List:
		return true
	}
	return false
}

// Elem returns the element type of a list type, or t itself for scalars.
func (t PropertyType) Elem() PropertyType {
	switch t {
	case TypeStringList:
		return TypeString
	case TypeBoolList:
		return TypeBool
	case TypeInt32List:
		return TypeInt32
	case TypeInt64List:
		return TypeInt64
	case TypeFloat32List, TypeFloat32Vector:
		return TypeFloat32
	case TypeFloat64List:
		return TypeFloat64
	}
	return t
}

// IsInteger reports whether t (or its list element) is an integer type.
func (t PropertyType) IsInteger() bool {
	switch t.Elem() {
	case TypeInt32, TypeInt64, TypeUint64:
		return true
	}
	return false
}

// IsFloat reports whether t (or its list element) is a floating point type.
func (t PropertyType) IsFloat() bool {
	switch t.Elem() {
	case TypeFloat32, TypeFloat64:
		return true
	}
	return false
}

// DistanceFunction is the similarity metric used to compare vectors.
// The zero value means "backend default", which is cosine for every backend.
type DistanceFunction string

const (
	DistanceUnset            DistanceFunction = ""
	DistanceCosine           DistanceFunction = "cosine"
	DistanceDotProduct       DistanceFunction = "dot_product"
	DistanceEuclidean        DistanceFunction = "euclidean"
	DistanceEuclideanSquared DistanceFunction = "euclidean_squared"
	DistanceManhattan        DistanceFunction = "manhattan"
)

// IndexKind is the algorithm backing vector search.
// The zero value means "backend default", which is HNSW for every backend.
type IndexKind string

const (
	IndexUnset IndexKind = ""
	IndexHNSW  IndexKind = "hnsw"
	IndexFlat  IndexKind = "flat"
)

// KeyProperty describes the record key.
type KeyProperty struct {
	Name        string
	StorageName string
	Type        PropertyType
}

// DataProperty describes a non-key, non-vector field.
type DataProperty struct {
	Name                 string
	StorageName          string
	Type                 PropertyType
	IsFilterable         bool
	IsFullTextSearchable bool
}

// VectorProperty describes an embedding field.
type VectorProperty struct {
	Name             string
	StorageName      string
	Type             PropertyType
	Dimensions       int
	DistanceFunction DistanceFunction
	IndexKind        IndexKind
}

// Schema is the vendor-neutral description of a record type. Build it with
// SchemaBuilder, SchemaFromStruct or Discover; it must not be modified afterwards
// and is safe for concurrent read access.
type Schema struct {
	Key     KeyProperty
	Data    []DataProperty
	Vectors []VectorProperty
}

// FieldName returns the backend field name of the key.
func (k KeyProperty) FieldName() string { return orName(k.StorageName, k.Name) }

// FieldName returns the backend field name of the data property.
func (d DataProperty) FieldName() string { return orName(d.StorageName, d.Name) }

// FieldName returns the backend field name of the vector property.
func (v VectorProperty) FieldName() string { return orName(v.StorageName, v.Name) }

func orName(storage, name string) string {
	if storage != "" {
		return storage
	}
	return name
}

// DataProperty returns the data property with the given logical name.
func (s *Schema) DataProperty(name string) (DataProperty, bool) {
	for _, p := range s.Data {
		if p.Name == name {
			return p, true
		}
	}
	return DataProperty{}, false
}

// VectorProperty returns the vector property with the given logical name.
func (s *Schema) VectorProperty(name string) (VectorProperty, bool) {
	for _, p := range s.Vectors {
		if p.Name == name {
			return p, true
		}
	}
	return VectorProperty{}, false
}

// VectorNames returns the logical names of all vector properties in declaration order.
func (s *Schema) VectorNames() []string {
	names := make([]string, 0, len(s.Vectors))
	for _, v := range s.Vectors {
		names = append(names, v.Name)
	}
	return names
}

// FilterableData returns the data properties with IsFilterable or IsFullTextSearchable set.
func (s *Schema) FilterableData() []DataProperty {
	var out []DataProperty
	for _, p := range s.Data {
		if p.IsFilterable || p.IsFullTextSearchable {
			out = append(out, p)
		}
	}
	return out
}

// Clone returns a deep copy of s.
func (s *Schema) Clone() *Schema {
	return &Schema{
		Key:     s.Key,
		Data:    slices.Clone(s.Data),
		Vectors: slices.Clone(s.Vectors),
	}
}

// SchemaBuilder assembles a Schema without reflection.
//
// Example:
//
//	schema, err := vectordb.NewSchemaBuilder().
//	    Key("id", vectordb.TypeString).
//	    Data("title", vectordb.TypeString, vectordb.Filterable(), vectordb.FullTextSearchable()).
//	    Data("tags", vectordb.TypeStringList, vectordb.Filterable()).
//	    Vector("embedding", 1536, vectordb.WithDistance(vectordb.DistanceCosine)).
//	    Build()
type SchemaBuilder struct {
	keys    []KeyProperty
	data    []DataProperty
	vectors []VectorProperty
}

// NewSchemaBuilder returns an empty builder.
func NewSchemaBuilder() *SchemaBuilder {
	return &SchemaBuilder{}
}

// DataOption customizes a data property.
type DataOption func(*DataProperty)

// VectorOption customizes a vector property.
type VectorOption func(*VectorProperty)

// Filterable marks a data property as filterable.
func Filterable() DataOption {
	return func(p *DataProperty) { p.IsFilterable = true }
}

// FullTextSearchable marks a data property as full-text searchable.
func FullTextSearchable() DataOption {
	return func(p *DataProperty) { p.IsFullTextSearchable = true }
}

// DataStorageAs overrides the backend field name of a data property.
func DataStorageAs(name string) DataOption {
	return func(p *DataProperty) { p.StorageName = name }
}

// WithDistance sets the vector distance function.
func WithDistance(d DistanceFunction) VectorOption {
	return func(p *VectorProperty) { p.DistanceFunction = d }
}

// WithIndexKind sets the vector index kind.
func WithIndexKind(k IndexKind) VectorOption {
	return func(p *VectorProperty) { p.IndexKind = k }
}

// VectorStorageAs overrides the backend field name of a vector property.
func VectorStorageAs(name string) VectorOption {
	return func(p *VectorProperty) { p.StorageName = name }
}

// Key adds a key property. Build fails if called zero or more than once.
func (b *SchemaBuilder) Key(name string, t PropertyType) *SchemaBuilder {
	b.keys = append(b.keys, KeyProperty{Name: name, Type: t})
	return b
}

// KeyStorageAs adds a key property stored under a different backend name.
func (b *SchemaBuilder) KeyStorageAs(name, storageName string, t PropertyType) *SchemaBuilder {
	b.keys = append(b.keys, KeyProperty{Name: name, StorageName: storageName, Type: t})
	return b
}

// Data adds a data property.
func (b *SchemaBuilder) Data(name string, t PropertyType, opts ...DataOption) *SchemaBuilder {
	p := DataProperty{Name: name, Type: t}
	for _, opt := range opts {
		opt(&p)
	}
	b.data = append(b.data, p)
	return b
}

// Vector adds a float32 vector property with the given dimensionality.
func (b *SchemaBuilder) Vector(name string, dimensions int, opts ...VectorOption) *SchemaBuilder {
	p := VectorProperty{Name: name, Type: TypeFloat32Vector, Dimensions: dimensions}
	for _, opt := range opts {
		opt(&p)
	}
	b.vectors = append(b.vectors, p)
	return b
}

// Build validates the structural invariants (exactly one key, positive vector
// dimensions, unique names) and returns the schema. Backend-specific type
// restrictions are checked by Discover.
func (b *SchemaBuilder) Build() (*Schema, error) {
	switch len(b.keys) {
	case 0:
		return nil, NewSchemaError("", "no key property defined")
	case 1:
	default:
		return nil, NewSchemaError(b.keys[1].Name, "multiple key properties defined")
	}
	s := &Schema{
		Key:     b.keys[0],
		Data:    slices.Clone(b.data),
		Vectors: slices.Clone(b.vectors),
	}
	if err := validateStructure(s); err != nil {
		return nil, err
	}
	return s, nil
}
