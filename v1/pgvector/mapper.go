package pgvector

import (
	"bytes"
	"database/sql/driver"
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/google/uuid"
)

// Row is one table row keyed by column name.
type Row map[string]any

// Vector is an embedding in the text form pgvector accepts, "[1,2.5,3]".
type Vector []float32

// Value implements driver.Valuer.
func (v Vector) Value() (driver.Value, error) {
	return v.String(), nil
}

func (v Vector) String() string {
	var b strings.Builder
	b.WriteByte('[')
	for i, f := range v {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.FormatFloat(float64(f), 'g', -1, 32))
	}
	b.WriteByte(']')
	return b.String()
}

// ParseVector parses the text form of a vector.
func ParseVector(s string) (Vector, error) {
	var v Vector
	if err := json.Unmarshal([]byte(s), (*[]float32)(&v)); err != nil {
		return nil, err
	}
	return v, nil
}

// RowMapper converts records to rows and back.
//
// Every data and vector column is written; a property missing from the record
// is written as NULL, so an upsert replaces the whole row. Lists are stored as
// jsonb arrays and times keep microsecond precision in UTC.
type RowMapper struct {
	schema *vectordb.Schema
}

var _ vectordb.RecordMapper[string, Row] = (*RowMapper)(nil)

// NewRowMapper builds a mapper for a validated schema.
func NewRowMapper(schema *vectordb.Schema) *RowMapper {
	return &RowMapper{schema: schema}
}

func (m *RowMapper) ToStorage(record vectordb.Record[string]) (Row, error) {
	if record.Key == "" {
		return nil, vectordb.NewMappingError(m.schema.Key.Name, nil, "key must not be empty")
	}

	row := make(Row, 1+len(m.schema.Data)+len(m.schema.Vectors))
	row[m.schema.Key.FieldName()] = record.Key

	for _, p := range m.schema.Data {
		c, err := vectordb.ConvertValue(p.Name, p.Type, record.Data[p.Name])
		if err != nil {
			return nil, err
		}
		v, err := columnValue(p, c)
		if err != nil {
			return nil, err
		}
		row[p.FieldName()] = v
	}

	for _, p := range m.schema.Vectors {
		v := record.Vectors[p.Name]
		if v == nil {
			row[p.FieldName()] = nil
			continue
		}
		if err := vectordb.CheckVector(p, v); err != nil {
			return nil, err
		}
		row[p.FieldName()] = Vector(v)
	}

	return row, nil
}

func columnValue(p vectordb.DataProperty, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if p.Type.IsList() {
		b, err := json.Marshal(v)
		if err != nil {
			return nil, vectordb.NewMappingError(p.Name, err, "cannot encode list")
		}
		return string(b), nil
	}
	switch x := v.(type) {
	case time.Time:
		return x.UTC(), nil
	case uuid.UUID:
		return x.String(), nil
	}
	return v, nil
}

func (m *RowMapper) FromStorage(row Row, mctx vectordb.MappingContext) (vectordb.Record[string], error) {
	var rec vectordb.Record[string]

	key, ok := textValue(row[m.schema.Key.FieldName()])
	if !ok {
		return rec, vectordb.NewMappingError(m.schema.Key.Name, nil, "row key is %T, expected text", row[m.schema.Key.FieldName()])
	}
	rec.Key = key

	rec.Data = make(map[string]any, len(m.schema.Data))
	for _, p := range m.schema.Data {
		raw := row[p.FieldName()]
		if raw == nil {
			continue
		}
		if p.Type.IsList() {
			decoded, err := decodeJSON(raw)
			if err != nil {
				return rec, vectordb.NewMappingError(p.Name, err, "invalid jsonb list")
			}
			raw = decoded
		} else if s, ok := raw.([]byte); ok {
			raw = string(s)
		}
		c, err := vectordb.ConvertValue(p.Name, p.Type, raw)
		if err != nil {
			return rec, err
		}
		if t, ok := c.(time.Time); ok {
			c = t.UTC()
		}
		rec.Data[p.Name] = c
	}

	if !mctx.IncludeVectors {
		return rec, nil
	}
	rec.Vectors = make(map[string][]float32, len(m.schema.Vectors))
	for _, p := range m.schema.Vectors {
		raw := row[p.FieldName()]
		if raw == nil {
			continue
		}
		s, ok := textValue(raw)
		if !ok {
			return rec, vectordb.NewMappingError(p.Name, nil, "vector column is %T, expected text", raw)
		}
		v, err := ParseVector(s)
		if err != nil {
			return rec, vectordb.NewMappingError(p.Name, err, "invalid vector text")
		}
		rec.Vectors[p.Name] = v
	}
	return rec, nil
}

func textValue(v any) (string, bool) {
	switch x := v.(type) {
	case string:
		return x, true
	case []byte:
		return string(x), true
	}
	return "", false
}

// decodeJSON turns jsonb text into Go values, keeping numbers exact. Values
// already decoded by the driver are returned unchanged.
func decodeJSON(v any) (any, error) {
	s, ok := textValue(v)
	if !ok {
		return v, nil
	}
	dec := json.NewDecoder(bytes.NewReader([]byte(s)))
	dec.UseNumber()
	var out any
	if err := dec.Decode(&out); err != nil {
		return nil, err
	}
	return out, nil
}
