package azuresearch

import (
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/google/uuid"
)

// Document is the flat JSON document the service stores, keyed by field name.
type Document map[string]any

// DocumentMapper converts records to flat documents and back.
//
// The key is stored under the key field. Every data and vector property of the
// schema is written; a property missing from the record is sent as null so
// that mergeOrUpload replaces the whole document. Times are RFC 3339 strings
// and UUIDs canonical strings.
type DocumentMapper struct {
	schema *vectordb.Schema
}

var _ vectordb.RecordMapper[string, Document] = (*DocumentMapper)(nil)

// NewDocumentMapper builds a mapper for a validated schema.
func NewDocumentMapper(schema *vectordb.Schema) *DocumentMapper {
	return &DocumentMapper{schema: schema}
}

func (m *DocumentMapper) ToStorage(record vectordb.Record[string]) (Document, error) {
	if record.Key == "" {
		return nil, vectordb.NewMappingError(m.schema.Key.Name, nil, "key must not be empty")
	}

	doc := make(Document, 1+len(m.schema.Data)+len(m.schema.Vectors))
	doc[m.schema.Key.FieldName()] = record.Key

	for _, p := range m.schema.Data {
		c, err := vectordb.ConvertValue(p.Name, p.Type, record.Data[p.Name])
		if err != nil {
			return nil, err
		}
		doc[p.FieldName()] = documentValue(c)
	}

	for _, p := range m.schema.Vectors {
		v := record.Vectors[p.Name]
		if v == nil {
			doc[p.FieldName()] = nil
			continue
		}
		if err := vectordb.CheckVector(p, v); err != nil {
			return nil, err
		}
		doc[p.FieldName()] = v
	}

	return doc, nil
}

func documentValue(v any) any {
	switch x := v.(type) {
	case time.Time:
		return x.Format(time.RFC3339Nano)
	case uuid.UUID:
		return x.String()
	}
	return v
}

func (m *DocumentMapper) FromStorage(doc Document, mctx vectordb.MappingContext) (vectordb.Record[string], error) {
	var rec vectordb.Record[string]

	key, ok := doc[m.schema.Key.FieldName()].(string)
	if !ok {
		return rec, vectordb.NewMappingError(m.schema.Key.Name, nil, "document key is %T, expected string", doc[m.schema.Key.FieldName()])
	}
	rec.Key = key

	rec.Data = make(map[string]any, len(m.schema.Data))
	for _, p := range m.schema.Data {
		v, err := vectordb.ConvertValue(p.Name, p.Type, doc[p.FieldName()])
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
		v, err := vectordb.ConvertVector(p.Name, doc[p.FieldName()])
		if err != nil {
			return rec, err
		}
		if v != nil {
			rec.Vectors[p.Name] = v
		}
	}
	return rec, nil
}
