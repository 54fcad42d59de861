package vectordb

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every error returned by this module and the backend packages
// matches exactly one of them via errors.Is.
var (
	// ErrSchema marks an invalid or contradictory schema. Not retryable.
	ErrSchema = errors.New("vectordb: invalid schema")

	// ErrUnsupportedConfiguration marks an index, distance or storage choice the
	// backend cannot represent. Not retryable.
	ErrUnsupportedConfiguration = errors.New("vectordb: unsupported configuration")

	// ErrUnsupportedType marks a property type the backend cannot index or store.
	ErrUnsupportedType = errors.New("vectordb: unsupported type")

	// ErrMapping marks a value that could not be converted to or from its
	// native representation.
	ErrMapping = errors.New("vectordb: mapping failed")

	// ErrNotFound marks one or more requested keys that do not exist.
	ErrNotFound = errors.New("vectordb: not found")

	// ErrBackendOperation wraps any transport or protocol failure of a backend client.
	ErrBackendOperation = errors.New("vectordb: backend operation failed")

	// ErrArgument marks an invalid argument or construction parameter.
	ErrArgument = errors.New("vectordb: invalid argument")
)

// SchemaError reports an invalid schema. Property is empty when the problem is
// not tied to a single property (e.g. a missing key).
type SchemaError struct {
	Property string
	Reason   string
}

// NewSchemaError builds a SchemaError.
func NewSchemaError(property, format string, args ...any) *SchemaError {
	return &SchemaError{Property: property, Reason: fmt.Sprintf(format, args...)}
}

func (e *SchemaError) Error() string {
	if e.Property == "" {
		return fmt.Sprintf("vectordb: invalid schema: %s", e.Reason)
	}
	return fmt.Sprintf("vectordb: invalid schema: property %q: %s", e.Property, e.Reason)
}

func (e *SchemaError) Is(target error) bool { return target == ErrSchema }

// UnsupportedConfigurationError names the property and setting a backend
// cannot represent.
type UnsupportedConfigurationError struct {
	Backend  string
	Property string
	Setting  string
	Value    string
}

func (e *UnsupportedConfigurationError) Error() string {
	return fmt.Sprintf("vectordb: %s does not support %s %q on property %q", e.Backend, e.Setting, e.Value, e.Property)
}

func (e *UnsupportedConfigurationError) Is(target error) bool {
	return target == ErrUnsupportedConfiguration
}

// UnsupportedTypeError names a property whose type a backend cannot index or store.
type UnsupportedTypeError struct {
	Backend  string
	Property string
	Type     PropertyType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("vectordb: %s does not support type %s on property %q", e.Backend, e.Type, e.Property)
}

func (e *UnsupportedTypeError) Is(target error) bool { return target == ErrUnsupportedType }

// MappingError reports a value that could not be converted.
type MappingError struct {
	Property string
	Reason   string
	cause    error
}

// NewMappingError builds a MappingError. cause may be nil.
func NewMappingError(property string, cause error, format string, args ...any) *MappingError {
	return &MappingError{Property: property, Reason: fmt.Sprintf(format, args...), cause: cause}
}

func (e *MappingError) Error() string {
	msg := fmt.Sprintf("vectordb: mapping property %q: %s", e.Property, e.Reason)
	if e.cause != nil {
		msg += ": " + e.cause.Error()
	}
	return msg
}

func (e *MappingError) Is(target error) bool { return target == ErrMapping }

func (e *MappingError) Unwrap() error { return e.cause }

// NotFoundError reports missing records. Collection is always set; Key is only
// set for single-key lookups, batch lookups deliberately do not say which keys
// were missing.
type NotFoundError struct {
	Collection string
	Key        string
}

func (e *NotFoundError) Error() string {
	if e.Key == "" {
		return fmt.Sprintf("vectordb: one or more records not found in collection %q", e.Collection)
	}
	return fmt.Sprintf("vectordb: record %q not found in collection %q", e.Key, e.Collection)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

// BackendOperationError wraps a failure of the native client.
type BackendOperationError struct {
	Backend    string
	Operation  string
	Collection string
	cause      error
}

// NewBackendOperationError wraps cause. A nil cause yields nil so callers can
// write `return NewBackendOperationError(..., err)` unconditionally.
func NewBackendOperationError(backend, operation, collection string, cause error) error {
	if cause == nil {
		return nil
	}
	return &BackendOperationError{Backend: backend, Operation: operation, Collection: collection, cause: cause}
}

func (e *BackendOperationError) Error() string {
	return fmt.Sprintf("[%s] %s failed (collection=%s): %v", e.Backend, e.Operation, e.Collection, e.cause)
}

func (e *BackendOperationError) Is(target error) bool { return target == ErrBackendOperation }

func (e *BackendOperationError) Unwrap() error { return e.cause }

// ArgumentError reports an invalid argument.
type ArgumentError struct {
	Argument string
	Reason   string
}

// NewArgumentError builds an ArgumentError.
func NewArgumentError(argument, format string, args ...any) *ArgumentError {
	return &ArgumentError{Argument: argument, Reason: fmt.Sprintf(format, args...)}
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("vectordb: invalid argument %q: %s", e.Argument, e.Reason)
}

func (e *ArgumentError) Is(target error) bool { return target == ErrArgument }

// IsNotFound reports whether err is a not-found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
