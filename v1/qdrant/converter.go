package qdrant

import (
	"math"
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
)

// ── Payload Conversion ───────────────────────────────────────────────────────

// toQdrantValue converts a data property value into a payload value. Time and
// UUID values are stored as strings (RFC 3339 and canonical form), which is
// what Qdrant's datetime and uuid payload indexes parse.
func toQdrantValue(p vectordb.DataProperty, v any) (*qdrant.Value, error) {
	c, err := vectordb.ConvertValue(p.Name, p.Type, v)
	if err != nil {
		return nil, err
	}
	if c == nil {
		return nullValue(), nil
	}

	if p.Type.IsList() {
		return listValue(p, c)
	}
	return scalarValue(p, c)
}

func scalarValue(p vectordb.DataProperty, c any) (*qdrant.Value, error) {
	switch x := c.(type) {
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: x}}, nil
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: x}}, nil
	case int32:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(x)}}, nil
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: x}}, nil
	case uint64:
		if x > math.MaxInt64 {
			return nil, vectordb.NewMappingError(p.Name, nil, "value %d exceeds the int64 payload range", x)
		}
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(x)}}, nil
	case float32:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: float64(x)}}, nil
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: x}}, nil
	case time.Time:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: x.Format(time.RFC3339Nano)}}, nil
	case uuid.UUID:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: x.String()}}, nil
	}
	return nil, vectordb.NewMappingError(p.Name, nil, "unsupported payload value %T", c)
}

func listValue(p vectordb.DataProperty, c any) (*qdrant.Value, error) {
	var items []*qdrant.Value
	appendAll := func(n int, at func(int) any) error {
		items = make([]*qdrant.Value, 0, n)
		for i := 0; i < n; i++ {
			v, err := scalarValue(p, at(i))
			if err != nil {
				return err
			}
			items = append(items, v)
		}
		return nil
	}

	var err error
	switch x := c.(type) {
	case []string:
		err = appendAll(len(x), func(i int) any { return x[i] })
	case []bool:
		err = appendAll(len(x), func(i int) any { return x[i] })
	case []int32:
		err = appendAll(len(x), func(i int) any { return x[i] })
	case []int64:
		err = appendAll(len(x), func(i int) any { return x[i] })
	case []float32:
		err = appendAll(len(x), func(i int) any { return x[i] })
	case []float64:
		err = appendAll(len(x), func(i int) any { return x[i] })
	default:
		return nil, vectordb.NewMappingError(p.Name, nil, "unsupported payload list %T", c)
	}
	if err != nil {
		return nil, err
	}
	return &qdrant.Value{Kind: &qdrant.Value_ListValue{ListValue: &qdrant.ListValue{Values: items}}}, nil
}

func nullValue() *qdrant.Value {
	return &qdrant.Value{Kind: &qdrant.Value_NullValue{NullValue: qdrant.NullValue_NULL_VALUE}}
}

// fromQdrantValue converts a payload value back into the canonical Go type of p.
func fromQdrantValue(p vectordb.DataProperty, v *qdrant.Value) (any, error) {
	return vectordb.ConvertValue(p.Name, p.Type, nativeValue(v))
}

// nativeValue recursively converts a Qdrant Value to a Go native type.
func nativeValue(v *qdrant.Value) any {
	if v == nil {
		return nil
	}
	switch val := v.Kind.(type) {
	case *qdrant.Value_StringValue:
		return val.StringValue
	case *qdrant.Value_IntegerValue:
		return val.IntegerValue
	case *qdrant.Value_DoubleValue:
		return val.DoubleValue
	case *qdrant.Value_BoolValue:
		return val.BoolValue
	case *qdrant.Value_NullValue:
		return nil
	case *qdrant.Value_StructValue:
		if val.StructValue == nil {
			return nil
		}
		return nativePayload(val.StructValue.Fields)
	case *qdrant.Value_ListValue:
		if val.ListValue == nil {
			return nil
		}
		items := make([]any, len(val.ListValue.Values))
		for i, item := range val.ListValue.Values {
			items[i] = nativeValue(item)
		}
		return items
	default:
		return nil
	}
}

// nativePayload converts Qdrant's protobuf payload to a generic map.
func nativePayload(payload map[string]*qdrant.Value) map[string]any {
	if payload == nil {
		return nil
	}
	result := make(map[string]any, len(payload))
	for k, v := range payload {
		result[k] = nativeValue(v)
	}
	return result
}

// ── Vector Conversion ────────────────────────────────────────────────────────

// denseSource is implemented by both *qdrant.Vector and *qdrant.VectorOutput.
type denseSource interface {
	GetDense() *qdrant.DenseVector
	GetData() []float32
}

// denseData returns the dense values of v, reading the current oneof field
// first and the deprecated flat field second.
func denseData(v denseSource) []float32 {
	if d := v.GetDense(); d != nil {
		return d.GetData()
	}
	return v.GetData()
}

// vectorsFromOutput turns the vectors of a retrieved point into the input shape
// used by PointStruct, so one mapper handles both directions.
func vectorsFromOutput(vo *qdrant.VectorsOutput) *qdrant.Vectors {
	if vo == nil {
		return nil
	}
	if v := vo.GetVector(); v != nil {
		return qdrant.NewVectors(denseData(v)...)
	}
	if named := vo.GetVectors(); named != nil {
		m := make(map[string]*qdrant.Vector, len(named.GetVectors()))
		for name, v := range named.GetVectors() {
			m[name] = qdrant.NewVector(denseData(v)...)
		}
		return qdrant.NewVectorsMap(m)
	}
	return nil
}

// pointFromRetrieved converts a Get result into a PointStruct.
func pointFromRetrieved(rp *qdrant.RetrievedPoint) *qdrant.PointStruct {
	return &qdrant.PointStruct{
		Id:      rp.GetId(),
		Payload: rp.GetPayload(),
		Vectors: vectorsFromOutput(rp.GetVectors()),
	}
}
