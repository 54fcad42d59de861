package pgvector

import (
	"fmt"
	"strings"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
	"github.com/lib/pq"
)

// BackendName identifies this backend in errors, logs and metrics.
const BackendName = "pgvector"

// Index access methods.
const (
	MethodBTree = "btree"
	MethodGIN   = "gin"
	MethodHNSW  = "hnsw"
)

// fullTextConfig is the text search configuration of full text indexes.
const fullTextConfig = "simple"

// Column is one column of a table definition.
type Column struct {
	Name       string
	Type       string
	PrimaryKey bool
}

// TableIndex is one secondary index of a table definition. Expression, when
// set, is indexed instead of the bare column.
type TableIndex struct {
	Name       string
	Column     string
	Method     string
	OpClass    string
	Expression string
}

// Table is the translated definition of a collection.
type Table struct {
	Name    string
	Columns []Column
	Indexes []TableIndex
}

// DiscoveryOptions returns the schema restrictions of the backend: string
// keys, every data type except uint64, any number of vectors.
func DiscoveryOptions() vectordb.DiscoveryOptions {
	return vectordb.DiscoveryOptions{
		SupportedKeyTypes: []vectordb.PropertyType{vectordb.TypeString},
		SupportedDataTypes: []vectordb.PropertyType{
			vectordb.TypeString, vectordb.TypeBool, vectordb.TypeInt32, vectordb.TypeInt64,
			vectordb.TypeFloat32, vectordb.TypeFloat64, vectordb.TypeTime, vectordb.TypeUUID,
			vectordb.TypeStringList, vectordb.TypeBoolList, vectordb.TypeInt32List,
			vectordb.TypeInt64List, vectordb.TypeFloat32List, vectordb.TypeFloat64List,
		},
		SupportsMultipleVectors: true,
	}
}

// BuildTable translates schema into a table definition. It is pure, so the
// same schema always yields a deep-equal definition.
//
// Scalars map to native column types and lists to jsonb. Vectors are
// vector(n) columns with an HNSW index whose operator class follows the
// distance function; flat vectors get no index and are scanned exactly.
// Filterable data gets a btree index (gin for lists) and full text data a gin
// index over to_tsvector.
func BuildTable(name string, schema *vectordb.Schema) (*Table, error) {
	if name == "" {
		return nil, vectordb.NewArgumentError("name", "table name must not be empty")
	}
	if schema == nil {
		return nil, vectordb.NewArgumentError("schema", "must not be nil")
	}

	t := &Table{Name: name}
	t.Columns = append(t.Columns, Column{Name: schema.Key.FieldName(), Type: "text", PrimaryKey: true})

	for _, p := range schema.Data {
		colType, err := columnType(p)
		if err != nil {
			return nil, err
		}
		t.Columns = append(t.Columns, Column{Name: p.FieldName(), Type: colType})

		if p.IsFilterable {
			method := MethodBTree
			if p.Type.IsList() {
				method = MethodGIN
			}
			t.Indexes = append(t.Indexes, TableIndex{
				Name:   indexName(name, p.FieldName()),
				Column: p.FieldName(),
				Method: method,
			})
		}
		if p.IsFullTextSearchable {
			if p.Type.Elem() != vectordb.TypeString {
				return nil, &vectordb.UnsupportedTypeError{Backend: BackendName, Property: p.Name, Type: p.Type}
			}
			t.Indexes = append(t.Indexes, TableIndex{
				Name:       indexName(name, p.FieldName()+"_fts"),
				Column:     p.FieldName(),
				Method:     MethodGIN,
				Expression: fmt.Sprintf("to_tsvector('%s', %s)", fullTextConfig, pq.QuoteIdentifier(p.FieldName())),
			})
		}
	}

	for _, p := range schema.Vectors {
		opClass, err := operatorClass(p)
		if err != nil {
			return nil, err
		}
		t.Columns = append(t.Columns, Column{Name: p.FieldName(), Type: fmt.Sprintf("vector(%d)", p.Dimensions)})

		switch p.IndexKind {
		case vectordb.IndexUnset, vectordb.IndexHNSW:
			t.Indexes = append(t.Indexes, TableIndex{
				Name:    indexName(name, p.FieldName()),
				Column:  p.FieldName(),
				Method:  MethodHNSW,
				OpClass: opClass,
			})
		case vectordb.IndexFlat:
		default:
			return nil, &vectordb.UnsupportedConfigurationError{
				Backend: BackendName, Property: p.Name, Setting: "index kind", Value: string(p.IndexKind),
			}
		}
	}

	return t, nil
}

func columnType(p vectordb.DataProperty) (string, error) {
	if p.Type.IsList() {
		return "jsonb", nil
	}
	switch p.Type {
	case vectordb.TypeString:
		return "text", nil
	case vectordb.TypeBool:
		return "boolean", nil
	case vectordb.TypeInt32:
		return "integer", nil
	case vectordb.TypeInt64:
		return "bigint", nil
	case vectordb.TypeFloat32:
		return "real", nil
	case vectordb.TypeFloat64:
		return "double precision", nil
	case vectordb.TypeTime:
		return "timestamptz", nil
	case vectordb.TypeUUID:
		return "uuid", nil
	}
	return "", &vectordb.UnsupportedTypeError{Backend: BackendName, Property: p.Name, Type: p.Type}
}

func operatorClass(p vectordb.VectorProperty) (string, error) {
	switch p.DistanceFunction {
	case vectordb.DistanceUnset, vectordb.DistanceCosine:
		return "vector_cosine_ops", nil
	case vectordb.DistanceDotProduct:
		return "vector_ip_ops", nil
	case vectordb.DistanceEuclidean:
		return "vector_l2_ops", nil
	case vectordb.DistanceManhattan:
		return "vector_l1_ops", nil
	}
	return "", &vectordb.UnsupportedConfigurationError{
		Backend: BackendName, Property: p.Name, Setting: "distance", Value: string(p.DistanceFunction),
	}
}

func indexName(table, column string) string {
	return table + "_" + column + "_idx"
}

// Statements renders the definition as DDL, the CREATE TABLE first. All
// identifiers are quoted, so names keep their case.
func (t *Table) Statements() []string {
	cols := make([]string, len(t.Columns))
	for i, c := range t.Columns {
		cols[i] = pq.QuoteIdentifier(c.Name) + " " + c.Type
		if c.PrimaryKey {
			cols[i] += " PRIMARY KEY"
		}
	}

	stmts := make([]string, 0, 1+len(t.Indexes))
	stmts = append(stmts, fmt.Sprintf("CREATE TABLE %s (%s)", pq.QuoteIdentifier(t.Name), strings.Join(cols, ", ")))

	for _, idx := range t.Indexes {
		target := idx.Expression
		if target == "" {
			target = pq.QuoteIdentifier(idx.Column)
		}
		if idx.OpClass != "" {
			target += " " + idx.OpClass
		}
		stmts = append(stmts, fmt.Sprintf("CREATE INDEX %s ON %s USING %s (%s)",
			pq.QuoteIdentifier(idx.Name), pq.QuoteIdentifier(t.Name), idx.Method, target))
	}
	return stmts
}
