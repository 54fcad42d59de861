package vectordb

import (
	"reflect"
	"slices"
)

// DiscoveryOptions carries the backend-specific restrictions checked by Discover.
// Each backend package exports its own value (e.g. qdrant.DiscoveryOptions).
type DiscoveryOptions struct {
	// SupportedKeyTypes lists the allowed key property types.
	SupportedKeyTypes []PropertyType

	// SupportedDataTypes lists the allowed data property types. Empty means all
	// non-vector types.
	SupportedDataTypes []PropertyType

	// SupportedVectorTypes lists the allowed vector property types. Empty means
	// TypeFloat32Vector only.
	SupportedVectorTypes []PropertyType

	// SupportsMultipleVectors is false for backends with a single unnamed vector
	// per record; more than one vector property is then a SchemaError.
	SupportsMultipleVectors bool

	// RequireVectors makes a schema without vector properties a SchemaError.
	RequireVectors bool
}

// Discover produces a validated schema for a backend.
//
// An explicit definition takes precedence. Otherwise recordType, a struct type
// (or pointer to one) carrying `vectordb` struct tags, is inspected once; see
// SchemaFromStruct for the tag format. No I/O is performed, so every schema
// problem surfaces at construction time rather than on the first request.
func Discover(definition *Schema, recordType reflect.Type, opts DiscoveryOptions) (*Schema, error) {
	var schema *Schema
	switch {
	case definition != nil:
		schema = definition.Clone()
	case recordType != nil:
		s, err := schemaFromType(recordType)
		if err != nil {
			return nil, err
		}
		schema = s
	default:
		return nil, NewArgumentError("definition", "either a schema definition or a record type is required")
	}

	if err := validateStructure(schema); err != nil {
		return nil, err
	}
	if err := validateForBackend(schema, opts); err != nil {
		return nil, err
	}
	return schema, nil
}

// validateStructure checks the backend-independent invariants.
func validateStructure(s *Schema) error {
	if s.Key.Name == "" {
		return NewSchemaError("", "no key property defined")
	}
	if s.Key.Type == TypeUnknown {
		return NewSchemaError(s.Key.Name, "key type is not set")
	}

	names := map[string]bool{s.Key.Name: true}
	fields := map[string]bool{s.Key.FieldName(): true}
	claim := func(name, field string) error {
		if name == "" {
			return NewSchemaError("", "property name must not be empty")
		}
		if names[name] {
			return NewSchemaError(name, "duplicate property name")
		}
		if fields[field] {
			return NewSchemaError(name, "storage name %q is already used by another property", field)
		}
		names[name] = true
		fields[field] = true
		return nil
	}

	for _, p := range s.Data {
		if err := claim(p.Name, p.FieldName()); err != nil {
			return err
		}
		if p.Type == TypeUnknown || p.Type == TypeFloat32Vector {
			return NewSchemaError(p.Name, "data property has unsupported type %s", p.Type)
		}
	}
	for _, v := range s.Vectors {
		if err := claim(v.Name, v.FieldName()); err != nil {
			return err
		}
		if v.Dimensions <= 0 {
			return NewSchemaError(v.Name, "vector dimensions must be positive, got %d", v.Dimensions)
		}
	}
	return nil
}

func validateForBackend(s *Schema, opts DiscoveryOptions) error {
	if len(opts.SupportedKeyTypes) > 0 && !slices.Contains(opts.SupportedKeyTypes, s.Key.Type) {
		return NewSchemaError(s.Key.Name, "key type %s is not supported, supported types: %v", s.Key.Type, opts.SupportedKeyTypes)
	}

	for _, p := range s.Data {
		if len(opts.SupportedDataTypes) > 0 && !slices.Contains(opts.SupportedDataTypes, p.Type) {
			return NewSchemaError(p.Name, "data type %s is not supported, supported types: %v", p.Type, opts.SupportedDataTypes)
		}
	}

	vectorTypes := opts.SupportedVectorTypes
	if len(vectorTypes) == 0 {
		vectorTypes = []PropertyType{TypeFloat32Vector}
	}
	for _, v := range s.Vectors {
		if !slices.Contains(vectorTypes, v.Type) {
			return NewSchemaError(v.Name, "vector type %s is not supported, supported types: %v", v.Type, vectorTypes)
		}
	}

	if !opts.SupportsMultipleVectors && len(s.Vectors) > 1 {
		return NewSchemaError(s.Vectors[1].Name, "backend supports a single unnamed vector, found %d vector properties", len(s.Vectors))
	}
	if opts.RequireVectors && len(s.Vectors) == 0 {
		return NewSchemaError("", "at least one vector property is required")
	}
	return nil
}
