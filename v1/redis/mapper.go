package redis

import (
	"encoding/binary"
	"math"
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/google/uuid"
)

// HashRecord is a record in hash storage. Key is the logical key; the
// collection prefix is added when the record is written.
type HashRecord struct {
	Key    string
	Fields map[string]string
}

// JSONRecord is a record in JSON storage. Key is the logical key; the
// collection prefix is added when the record is written.
type JSONRecord struct {
	Key      string
	Document map[string]any
}

// HashMapper converts records to hashes and back. Data values are formatted
// as strings (lists as JSON arrays); vectors are little-endian float32 bytes.
// The key is always written under its field name so that a record without
// data or vectors still leaves a hash behind. It is ignored on read.
type HashMapper struct {
	schema *vectordb.Schema
}

var _ vectordb.RecordMapper[string, HashRecord] = (*HashMapper)(nil)

// NewHashMapper builds a mapper for a validated schema.
func NewHashMapper(schema *vectordb.Schema) *HashMapper {
	return &HashMapper{schema: schema}
}

func (m *HashMapper) ToStorage(record vectordb.Record[string]) (HashRecord, error) {
	if record.Key == "" {
		return HashRecord{}, vectordb.NewMappingError(m.schema.Key.Name, nil, "key must not be empty")
	}
	fields := make(map[string]string, 1+len(m.schema.Data)+len(m.schema.Vectors))
	fields[m.schema.Key.FieldName()] = record.Key
	for _, p := range m.schema.Data {
		v, ok := record.Data[p.Name]
		if !ok || v == nil {
			continue
		}
		s, err := vectordb.FormatValue(p.Name, p.Type, v)
		if err != nil {
			return HashRecord{}, err
		}
		fields[p.FieldName()] = s
	}

	for _, p := range m.schema.Vectors {
		v := record.Vectors[p.Name]
		if v == nil {
			continue
		}
		if err := vectordb.CheckVector(p, v); err != nil {
			return HashRecord{}, err
		}
		fields[p.FieldName()] = string(encodeVector(v))
	}

	return HashRecord{Key: record.Key, Fields: fields}, nil
}

func (m *HashMapper) FromStorage(h HashRecord, mctx vectordb.MappingContext) (vectordb.Record[string], error) {
	rec := vectordb.Record[string]{Key: h.Key, Data: make(map[string]any, len(m.schema.Data))}
	for _, p := range m.schema.Data {
		s, ok := h.Fields[p.FieldName()]
		if !ok {
			continue
		}
		v, err := vectordb.ParseValue(p.Name, p.Type, s)
		if err != nil {
			return rec, err
		}
		if v != nil {
			rec.Data[p.Name] = v
		}
	}

	if !mctx.IncludeVectors {
		return rec, nil
	}
	rec.Vectors = make(map[string][]float32, len(m.schema.Vectors))
	for _, p := range m.schema.Vectors {
		s, ok := h.Fields[p.FieldName()]
		if !ok {
			continue
		}
		v, err := decodeVector(p.Name, []byte(s))
		if err != nil {
			return rec, err
		}
		rec.Vectors[p.Name] = v
	}
	return rec, nil
}

// encodeVector returns the FLOAT32 blob layout RediSearch expects in hashes.
func encodeVector(v []float32) []byte {
	b := make([]byte, 4*len(v))
	for i, f := range v {
		binary.LittleEndian.PutUint32(b[4*i:], math.Float32bits(f))
	}
	return b
}

func decodeVector(property string, b []byte) ([]float32, error) {
	if len(b)%4 != 0 {
		return nil, vectordb.NewMappingError(property, nil, "vector blob of %d bytes is not a multiple of 4", len(b))
	}
	v := make([]float32, len(b)/4)
	for i := range v {
		v[i] = math.Float32frombits(binary.LittleEndian.Uint32(b[4*i:]))
	}
	return v, nil
}

// JSONMapper converts records to JSON documents and back. Times are stored as
// RFC 3339 strings, UUIDs in their canonical form and vectors as float arrays.
// The key is not stored in the document.
type JSONMapper struct {
	schema *vectordb.Schema
}

var _ vectordb.RecordMapper[string, JSONRecord] = (*JSONMapper)(nil)

// NewJSONMapper builds a mapper for a validated schema.
func NewJSONMapper(schema *vectordb.Schema) *JSONMapper {
	return &JSONMapper{schema: schema}
}

func (m *JSONMapper) ToStorage(record vectordb.Record[string]) (JSONRecord, error) {
	doc := make(map[string]any, len(m.schema.Data)+len(m.schema.Vectors))
	for _, p := range m.schema.Data {
		v, ok := record.Data[p.Name]
		if !ok || v == nil {
			continue
		}
		c, err := vectordb.ConvertValue(p.Name, p.Type, v)
		if err != nil {
			return JSONRecord{}, err
		}
		doc[p.FieldName()] = jsonValue(c)
	}

	for _, p := range m.schema.Vectors {
		v := record.Vectors[p.Name]
		if v == nil {
			continue
		}
		if err := vectordb.CheckVector(p, v); err != nil {
			return JSONRecord{}, err
		}
		doc[p.FieldName()] = v
	}

	return JSONRecord{Key: record.Key, Document: doc}, nil
}

func jsonValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case uuid.UUID:
		return x.String()
	}
	return v
}

func (m *JSONMapper) FromStorage(j JSONRecord, mctx vectordb.MappingContext) (vectordb.Record[string], error) {
	rec := vectordb.Record[string]{Key: j.Key, Data: make(map[string]any, len(m.schema.Data))}
	for _, p := range m.schema.Data {
		raw, ok := j.Document[p.FieldName()]
		if !ok {
			continue
		}
		v, err := vectordb.ConvertValue(p.Name, p.Type, raw)
		if err != nil {
			return rec, err
		}
		if v != nil {
			rec.Data[p.Name] = v
		}
	}

	if !mctx.IncludeVectors {
		return rec, nil
	}
	rec.Vectors = make(map[string][]float32, len(m.schema.Vectors))
	for _, p := range m.schema.Vectors {
		raw, ok := j.Document[p.FieldName()]
		if !ok {
			continue
		}
		v, err := vectordb.ConvertVector(p.Name, raw)
		if err != nil {
			return rec, err
		}
		if v != nil {
			rec.Vectors[p.Name] = v
		}
	}
	return rec, nil
}
