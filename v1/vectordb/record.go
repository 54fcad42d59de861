package vectordb

import "maps"

// Record is the vendor-neutral record exchanged with every store.
//
// Data is keyed by the logical property name and holds canonical Go values:
// string, bool, int32, int64, uint64, float32, float64, time.Time, uuid.UUID or
// a slice of one of the scalar types. A nil value means the property is absent.
// Vectors is keyed by the logical vector property name.
type Record[K comparable] struct {
	Key     K
	Data    map[string]any
	Vectors map[string][]float32
}

// Clone returns a shallow copy of r with fresh Data and Vectors maps, so the
// copy can be modified without touching r.
func (r Record[K]) Clone() Record[K] {
	out := Record[K]{Key: r.Key}
	if r.Data != nil {
		out.Data = maps.Clone(r.Data)
	}
	if r.Vectors != nil {
		out.Vectors = maps.Clone(r.Vectors)
	}
	return out
}

// MappingContext is created per call and passed to RecordMapper.FromStorage.
type MappingContext struct {
	// IncludeVectors controls whether vector properties are read back. When false
	// Record.Vectors is left nil.
	IncludeVectors bool

	// Schema is the schema the store was constructed with.
	Schema *Schema
}
