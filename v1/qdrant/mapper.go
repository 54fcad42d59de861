package qdrant

import (
	"fmt"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// Key is the set of point id types Qdrant accepts.
type Key interface {
	uint64 | uuid.UUID
}

// keyType returns the schema key type matching K.
func keyType[K Key]() vectordb.PropertyType {
	var zero K
	if _, ok := any(zero).(uint64); ok {
		return vectordb.TypeUint64
	}
	return vectordb.TypeUUID
}

func pointID[K Key](key K) *qdrant.PointId {
	switch k := any(key).(type) {
	case uint64:
		return &qdrant.PointId{PointIdOptions: &qdrant.PointId_Num{Num: k}}
	case uuid.UUID:
		return &qdrant.PointId{PointIdOptions: &qdrant.PointId_Uuid{Uuid: k.String()}}
	}
	panic(fmt.Sprintf("qdrant: unsupported key type %T", key))
}

func keyFromPointID[K Key](id *qdrant.PointId, property string) (K, error) {
	var zero K
	if id == nil {
		return zero, vectordb.NewMappingError(property, nil, "point has no id")
	}

	switch any(zero).(type) {
	case uint64:
		num, ok := id.PointIdOptions.(*qdrant.PointId_Num)
		if !ok {
			return zero, vectordb.NewMappingError(property, nil, "expected numeric point id, got %T", id.PointIdOptions)
		}
		return any(num.Num).(K), nil
	default:
		u, ok := id.PointIdOptions.(*qdrant.PointId_Uuid)
		if !ok {
			return zero, vectordb.NewMappingError(property, nil, "expected UUID point id, got %T", id.PointIdOptions)
		}
		parsed, err := uuid.Parse(u.Uuid)
		if err != nil {
			return zero, vectordb.NewMappingError(property, err, "invalid UUID point id %q", u.Uuid)
		}
		return any(parsed).(K), nil
	}
}

// PointMapper converts records to Qdrant points and back. Data properties go
// into the payload under their field names; vectors go into the single unnamed
// slot or, with named vectors, into a map keyed by field name.
type PointMapper[K Key] struct {
	schema       *vectordb.Schema
	namedVectors bool
}

var _ vectordb.RecordMapper[uint64, *qdrant.PointStruct] = (*PointMapper[uint64])(nil)

// NewPointMapper builds a mapper for a validated schema.
func NewPointMapper[K Key](schema *vectordb.Schema, namedVectors bool) *PointMapper[K] {
	return &PointMapper[K]{schema: schema, namedVectors: namedVectors}
}

func (m *PointMapper[K]) ToStorage(record vectordb.Record[K]) (*qdrant.PointStruct, error) {
	payload := make(map[string]*qdrant.Value, len(m.schema.Data))
	for _, p := range m.schema.Data {
		v, ok := record.Data[p.Name]
		if !ok || v == nil {
			continue
		}
		qv, err := toQdrantValue(p, v)
		if err != nil {
			return nil, err
		}
		payload[p.FieldName()] = qv
	}

	vectors, err := m.vectorsToStorage(record.Vectors)
	if err != nil {
		return nil, err
	}

	return &qdrant.PointStruct{
		Id:      pointID(record.Key),
		Payload: payload,
		Vectors: vectors,
	}, nil
}

func (m *PointMapper[K]) vectorsToStorage(in map[string][]float32) (*qdrant.Vectors, error) {
	if !m.namedVectors {
		if len(m.schema.Vectors) == 0 {
			return nil, nil
		}
		p := m.schema.Vectors[0]
		v := in[p.Name]
		if v == nil {
			return nil, nil
		}
		if err := vectordb.CheckVector(p, v); err != nil {
			return nil, err
		}
		return qdrant.NewVectors(v...), nil
	}

	named := make(map[string]*qdrant.Vector, len(m.schema.Vectors))
	for _, p := range m.schema.Vectors {
		v := in[p.Name]
		if v == nil {
			continue
		}
		if err := vectordb.CheckVector(p, v); err != nil {
			return nil, err
		}
		named[p.FieldName()] = qdrant.NewVector(v...)
	}
	if len(named) == 0 {
		return nil, nil
	}
	return qdrant.NewVectorsMap(named), nil
}

func (m *PointMapper[K]) FromStorage(point *qdrant.PointStruct, mctx vectordb.MappingContext) (vectordb.Record[K], error) {
	var rec vectordb.Record[K]
	if point == nil {
		return rec, vectordb.NewMappingError(m.schema.Key.Name, nil, "nil point")
	}

	key, err := keyFromPointID[K](point.GetId(), m.schema.Key.Name)
	if err != nil {
		return rec, err
	}
	rec.Key = key

	rec.Data = make(map[string]any, len(m.schema.Data))
	for _, p := range m.schema.Data {
		qv, ok := point.GetPayload()[p.FieldName()]
		if !ok {
			continue
		}
		v, err := fromQdrantValue(p, qv)
		if err != nil {
			return rec, err
		}
		if v != nil {
			rec.Data[p.Name] = v
		}
	}

	if mctx.IncludeVectors {
		rec.Vectors = m.vectorsFromStorage(point.GetVectors())
	}
	return rec, nil
}

func (m *PointMapper[K]) vectorsFromStorage(vs *qdrant.Vectors) map[string][]float32 {
	out := make(map[string][]float32, len(m.schema.Vectors))
	if vs == nil {
		return out
	}
	if single := vs.GetVector(); single != nil {
		if len(m.schema.Vectors) > 0 {
			out[m.schema.Vectors[0].Name] = denseData(single)
		}
		return out
	}
	named := vs.GetVectors().GetVectors()
	for _, p := range m.schema.Vectors {
		if v, ok := named[p.FieldName()]; ok {
			out[p.Name] = denseData(v)
		}
	}
	return out
}
