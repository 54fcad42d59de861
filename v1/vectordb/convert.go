package vectordb

import (
	"encoding/json"
	"errors"
	"math"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Value conversion shared by the backend mappers. Every mapper funnels its
// values through ConvertValue so narrowing and list rules are identical across
// backends:
//   - integers narrow exactly; an out of range value fails
//   - a float converts to an integer only when it has no fractional part
//   - lists must be homogeneous; mixing element types fails
//   - json.Number is accepted wherever a number is
//   - time values are RFC 3339 (nanosecond precision) when carried as strings

var (
	errNotNumber  = errors.New("not a number")
	errFractional = errors.New("value has a fractional part")
	errOutOfRange = errors.New("value out of range")
)

var elemGoTypes = map[PropertyType]reflect.Type{
	TypeString:  reflect.TypeFor[string](),
	TypeBool:    reflect.TypeFor[bool](),
	TypeInt32:   reflect.TypeFor[int32](),
	TypeInt64:   reflect.TypeFor[int64](),
	TypeFloat32: reflect.TypeFor[float32](),
	TypeFloat64: reflect.TypeFor[float64](),
}

// ConvertValue coerces v into the canonical Go type of t. A nil v stays nil.
func ConvertValue(property string, t PropertyType, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if t.IsList() {
		return convertList(property, t, v)
	}
	return convertScalar(property, t, v)
}

func convertScalar(property string, t PropertyType, v any) (any, error) {
	switch t {
	case TypeString:
		if s, ok := v.(string); ok {
			return s, nil
		}

	case TypeBool:
		if b, ok := v.(bool); ok {
			return b, nil
		}

	case TypeInt32:
		n, err := toInt64(v)
		if err != nil {
			return nil, NewMappingError(property, err, "cannot convert %T to %s", v, t)
		}
		if n < math.MinInt32 || n > math.MaxInt32 {
			return nil, NewMappingError(property, errOutOfRange, "value %d does not fit in int32", n)
		}
		return int32(n), nil

	case TypeInt64:
		n, err := toInt64(v)
		if err != nil {
			return nil, NewMappingError(property, err, "cannot convert %T to %s", v, t)
		}
		return n, nil

	case TypeUint64:
		n, err := toUint64(v)
		if err != nil {
			return nil, NewMappingError(property, err, "cannot convert %T to %s", v, t)
		}
		return n, nil

	case TypeFloat32:
		if n, ok := v.(json.Number); ok {
			// parse at 32-bit precision to avoid double rounding
			if f, err := strconv.ParseFloat(string(n), 32); err == nil {
				return float32(f), nil
			}
		}
		f, err := toFloat64(v)
		if err != nil {
			return nil, NewMappingError(property, err, "cannot convert %T to %s", v, t)
		}
		if !math.IsInf(f, 0) && math.Abs(f) > math.MaxFloat32 {
			return nil, NewMappingError(property, errOutOfRange, "value %g does not fit in float32", f)
		}
		return float32(f), nil

	case TypeFloat64:
		f, err := toFloat64(v)
		if err != nil {
			return nil, NewMappingError(property, err, "cannot convert %T to %s", v, t)
		}
		return f, nil

	case TypeTime:
		switch x := v.(type) {
		case time.Time:
			return x, nil
		case *time.Time:
			if x != nil {
				return *x, nil
			}
		case string:
			ts, err := time.Parse(time.RFC3339Nano, x)
			if err != nil {
				return nil, NewMappingError(property, err, "invalid RFC 3339 time %q", x)
			}
			return ts, nil
		}

	case TypeUUID:
		switch x := v.(type) {
		case uuid.UUID:
			return x, nil
		case [16]byte:
			return uuid.UUID(x), nil
		case string:
			id, err := uuid.Parse(x)
			if err != nil {
				return nil, NewMappingError(property, err, "invalid UUID %q", x)
			}
			return id, nil
		}
	}
	return nil, NewMappingError(property, nil, "cannot convert %T to %s", v, t)
}

func convertList(property string, t PropertyType, v any) (any, error) {
	switch x := v.(type) {
	case []string:
		if t == TypeStringList {
			return x, nil
		}
	case []bool:
		if t == TypeBoolList {
			return x, nil
		}
	case []int32:
		if t == TypeInt32List {
			return x, nil
		}
	case []int64:
		if t == TypeInt64List {
			return x, nil
		}
	case []float32:
		if t == TypeFloat32List {
			return x, nil
		}
	case []float64:
		if t == TypeFloat64List {
			return x, nil
		}
	}

	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, NewMappingError(property, nil, "expected a list for %s, got %T", t, v)
	}

	elem := t.Elem()
	out := reflect.MakeSlice(reflect.SliceOf(elemGoTypes[elem]), rv.Len(), rv.Len())
	var first reflect.Type
	for i := 0; i < rv.Len(); i++ {
		item := rv.Index(i).Interface()
		if item == nil {
			return nil, NewMappingError(property, nil, "list element %d is null", i)
		}
		if first == nil {
			first = reflect.TypeOf(item)
		} else if it := reflect.TypeOf(item); it != first {
			return nil, NewMappingError(property, nil, "list mixes element types %s and %s", first, it)
		}
		c, err := convertScalar(property, elem, item)
		if err != nil {
			return nil, err
		}
		out.Index(i).Set(reflect.ValueOf(c))
	}
	return out.Interface(), nil
}

// ConvertVector coerces a decoded vector (e.g. a JSON array) into []float32.
func ConvertVector(property string, v any) ([]float32, error) {
	if v == nil {
		return nil, nil
	}
	c, err := convertList(property, TypeFloat32List, v)
	if err != nil {
		return nil, err
	}
	return c.([]float32), nil
}

// CheckVector verifies a vector matches the declared dimensionality.
func CheckVector(p VectorProperty, v []float32) error {
	if len(v) != p.Dimensions {
		return NewMappingError(p.Name, nil, "vector has %d dimensions, expected %d", len(v), p.Dimensions)
	}
	return nil
}

// FormatValue renders v as a string for backends that store flat string fields.
// Lists are rendered as JSON arrays.
func FormatValue(property string, t PropertyType, v any) (string, error) {
	c, err := ConvertValue(property, t, v)
	if err != nil {
		return "", err
	}
	if t.IsList() {
		b, err := json.Marshal(c)
		if err != nil {
			return "", NewMappingError(property, err, "cannot encode list")
		}
		return string(b), nil
	}

	switch x := c.(type) {
	case string:
		return x, nil
	case bool:
		return strconv.FormatBool(x), nil
	case int32:
		return strconv.FormatInt(int64(x), 10), nil
	case int64:
		return strconv.FormatInt(x, 10), nil
	case uint64:
		return strconv.FormatUint(x, 10), nil
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32), nil
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64), nil
	case time.Time:
		return x.Format(time.RFC3339Nano), nil
	case uuid.UUID:
		return x.String(), nil
	}
	return "", NewMappingError(property, nil, "cannot format %T as %s", v, t)
}

// ParseValue is the inverse of FormatValue.
func ParseValue(property string, t PropertyType, s string) (any, error) {
	if t.IsList() {
		dec := json.NewDecoder(strings.NewReader(s))
		dec.UseNumber()
		var items []any
		if err := dec.Decode(&items); err != nil {
			return nil, NewMappingError(property, err, "invalid list encoding")
		}
		if items == nil {
			return nil, nil
		}
		return convertList(property, t, items)
	}

	var (
		v   any
		err error
	)
	switch t {
	case TypeString:
		return s, nil
	case TypeBool:
		v, err = strconv.ParseBool(s)
	case TypeInt32:
		var n int64
		n, err = strconv.ParseInt(s, 10, 32)
		v = int32(n)
	case TypeInt64:
		v, err = strconv.ParseInt(s, 10, 64)
	case TypeUint64:
		v, err = strconv.ParseUint(s, 10, 64)
	case TypeFloat32:
		var f float64
		f, err = strconv.ParseFloat(s, 32)
		v = float32(f)
	case TypeFloat64:
		v, err = strconv.ParseFloat(s, 64)
	case TypeTime, TypeUUID:
		return convertScalar(property, t, s)
	default:
		return nil, NewMappingError(property, nil, "cannot parse %s", t)
	}
	if err != nil {
		return nil, NewMappingError(property, err, "cannot parse %q as %s", s, t)
	}
	return v, nil
}

func toInt64(v any) (int64, error) {
	switch x := v.(type) {
	case int:
		return int64(x), nil
	case int8:
		return int64(x), nil
	case int16:
		return int64(x), nil
	case int32:
		return int64(x), nil
	case int64:
		return x, nil
	case uint8:
		return int64(x), nil
	case uint16:
		return int64(x), nil
	case uint32:
		return int64(x), nil
	case uint:
		if uint64(x) > math.MaxInt64 {
			return 0, errOutOfRange
		}
		return int64(x), nil
	case uint64:
		if x > math.MaxInt64 {
			return 0, errOutOfRange
		}
		return int64(x), nil
	case float32:
		return floatToInt64(float64(x))
	case float64:
		return floatToInt64(x)
	case json.Number:
		if n, err := x.Int64(); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, errNotNumber
		}
		return floatToInt64(f)
	}
	return 0, errNotNumber
}

func floatToInt64(f float64) (int64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumber
	}
	if f != math.Trunc(f) {
		return 0, errFractional
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return 0, errOutOfRange
	}
	return int64(f), nil
}

func toUint64(v any) (uint64, error) {
	switch x := v.(type) {
	case uint:
		return uint64(x), nil
	case uint8:
		return uint64(x), nil
	case uint16:
		return uint64(x), nil
	case uint32:
		return uint64(x), nil
	case uint64:
		return x, nil
	case json.Number:
		if n, err := strconv.ParseUint(string(x), 10, 64); err == nil {
			return n, nil
		}
		f, err := x.Float64()
		if err != nil {
			return 0, errNotNumber
		}
		return floatToUint64(f)
	case float32:
		return floatToUint64(float64(x))
	case float64:
		return floatToUint64(x)
	}
	n, err := toInt64(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, errOutOfRange
	}
	return uint64(n), nil
}

func floatToUint64(f float64) (uint64, error) {
	if math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errNotNumber
	}
	if f != math.Trunc(f) {
		return 0, errFractional
	}
	if f < 0 || f >= math.MaxUint64 {
		return 0, errOutOfRange
	}
	return uint64(f), nil
}

func toFloat64(v any) (float64, error) {
	switch x := v.(type) {
	case float32:
		return float64(x), nil
	case float64:
		return x, nil
	case json.Number:
		f, err := x.Float64()
		if err != nil {
			return 0, errNotNumber
		}
		return f, nil
	case int, int8, int16, int32, int64, uint8, uint16, uint32:
		n, _ := toInt64(x)
		return float64(n), nil
	case uint:
		return float64(x), nil
	case uint64:
		return float64(x), nil
	}
	return 0, errNotNumber
}
