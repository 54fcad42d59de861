package vectordb

import (
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// TagName is the struct tag read by SchemaFromStruct.
const TagName = "vectordb"

// SchemaFromStruct builds a schema from the `vectordb` struct tags of T.
// Reflection happens once per call, so call it at construction time and reuse
// the result.
//
// Tag format:
//
//	type Hotel struct {
//	    ID          string    `vectordb:"key"`
//	    Name        string    `vectordb:"data,filterable"`
//	    Description string    `vectordb:"data,fulltext,name=description"`
//	    Tags        []string  `vectordb:"data,filterable"`
//	    Embedding   []float32 `vectordb:"vector,dims=1536,distance=cosine,index=hnsw"`
//	    Internal    string    // untagged fields are ignored
//	}
//
// The logical property name is the Go field name; `name=` sets the storage name.
func SchemaFromStruct[T any]() (*Schema, error) {
	return schemaFromType(reflect.TypeFor[T]())
}

func schemaFromType(t reflect.Type) (*Schema, error) {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, NewArgumentError("recordType", "expected a struct type, got %s", t.Kind())
	}

	b := NewSchemaBuilder()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		if field.PkgPath != "" { // skip unexported fields
			continue
		}
		tag, ok := field.Tag.Lookup(TagName)
		if !ok || tag == "-" {
			continue
		}
		if err := addTaggedField(b, field, tag); err != nil {
			return nil, err
		}
	}
	return b.Build()
}

func addTaggedField(b *SchemaBuilder, field reflect.StructField, tag string) error {
	parts := strings.Split(tag, ",")
	kind := strings.TrimSpace(parts[0])
	attrs := parseTagAttrs(parts[1:])
	storage := attrs["name"]

	switch kind {
	case "key":
		pt := propertyTypeOf(field.Type, false)
		b.keys = append(b.keys, KeyProperty{Name: field.Name, StorageName: storage, Type: pt})

	case "data":
		pt := propertyTypeOf(field.Type, false)
		if pt == TypeUnknown {
			return NewSchemaError(field.Name, "unsupported Go type %s for a data property", field.Type)
		}
		_, filterable := attrs["filterable"]
		_, fulltext := attrs["fulltext"]
		b.data = append(b.data, DataProperty{
			Name:                 field.Name,
			StorageName:          storage,
			Type:                 pt,
			IsFilterable:         filterable,
			IsFullTextSearchable: fulltext,
		})

	case "vector":
		pt := propertyTypeOf(field.Type, true)
		if pt != TypeFloat32Vector {
			return NewSchemaError(field.Name, "vector property must be []float32, got %s", field.Type)
		}
		dims := 0
		if raw, ok := attrs["dims"]; ok {
			n, err := strconv.Atoi(raw)
			if err != nil {
				return NewSchemaError(field.Name, "invalid dims %q", raw)
			}
			dims = n
		}
		b.vectors = append(b.vectors, VectorProperty{
			Name:             field.Name,
			StorageName:      storage,
			Type:             pt,
			Dimensions:       dims,
			DistanceFunction: DistanceFunction(attrs["distance"]),
			IndexKind:        IndexKind(attrs["index"]),
		})

	default:
		return NewSchemaError(field.Name, "unknown tag kind %q, expected key, data or vector", kind)
	}
	return nil
}

func parseTagAttrs(parts []string) map[string]string {
	attrs := make(map[string]string, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		k, v, _ := strings.Cut(p, "=")
		attrs[k] = v
	}
	return attrs
}

var (
	timeType = reflect.TypeFor[time.Time]()
	uuidType = reflect.TypeFor[uuid.UUID]()
)

// propertyTypeOf maps a Go type to a PropertyType. []float32 is a vector when
// vector is true and a list otherwise.
func propertyTypeOf(t reflect.Type, vector bool) PropertyType {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t {
	case timeType:
		return TypeTime
	case uuidType:
		return TypeUUID
	}

	switch t.Kind() {
	case reflect.String:
		return TypeString
	case reflect.Bool:
		return TypeBool
	case reflect.Int32:
		return TypeInt32
	case reflect.Int, reflect.Int64:
		return TypeInt64
	case reflect.Uint64:
		return TypeUint64
	case reflect.Float32:
		return TypeFloat32
	case reflect.Float64:
		return TypeFloat64
	case reflect.Slice:
		switch t.Elem().Kind() {
		case reflect.String:
			return TypeStringList
		case reflect.Bool:
			return TypeBoolList
		case reflect.Int32:
			return TypeInt32List
		case reflect.Int, reflect.Int64:
			return TypeInt64List
		case reflect.Float32:
			if vector {
				return TypeFloat32Vector
			}
			return TypeFloat32List
		case reflect.Float64:
			return TypeFloat64List
		}
	}
	return TypeUnknown
}
