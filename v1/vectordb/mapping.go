package vectordb

// RecordMapper converts between Record and a backend-native representation N.
// Implementations capture the schema at construction and must be safe for
// concurrent use.
type RecordMapper[K comparable, N any] interface {
	ToStorage(record Record[K]) (N, error)
	FromStorage(native N, mctx MappingContext) (Record[K], error)
}

// Mapping selects the mapper used by a store. It has exactly two variants,
// built with DefaultMapping or CustomMapping; the zero value is DefaultMapping.
type Mapping[K comparable, N any] struct {
	custom   RecordMapper[K, N]
	isCustom bool
}

// DefaultMapping uses the backend's schema-driven mapper.
func DefaultMapping[K comparable, N any]() Mapping[K, N] {
	return Mapping[K, N]{}
}

// CustomMapping replaces the backend mapper with m, for data models that need
// their own serialization into the native document. A nil m is rejected when
// the store is constructed.
func CustomMapping[K comparable, N any](m RecordMapper[K, N]) Mapping[K, N] {
	return Mapping[K, N]{custom: m, isCustom: true}
}

// IsCustom reports whether the custom variant is selected.
func (m Mapping[K, N]) IsCustom() bool { return m.isCustom }

// Resolve returns the mapper to use, falling back to def for DefaultMapping.
func (m Mapping[K, N]) Resolve(def RecordMapper[K, N]) (RecordMapper[K, N], error) {
	if !m.isCustom {
		if def == nil {
			return nil, NewArgumentError("mapping", "no default mapper available")
		}
		return def, nil
	}
	if m.custom == nil {
		return nil, NewArgumentError("mapping", "custom mapping selected but no mapper supplied")
	}
	return m.custom, nil
}
