package azuresearch

import (
	"context"
	"reflect"
	"sync"

	"github.com/Aleph-Alpha/vectorstore/v1/vectordb"
)

// documentBackend implements vectordb.Backend over the documents API.
type documentBackend struct {
	client *SearchClient
	schema *vectordb.Schema

	// dataFields is the $select list used when vectors are not requested.
	dataFields []string

	// indexes caches one *IndexClient per index name.
	indexes sync.Map
}

func newDocumentBackend(client *SearchClient, schema *vectordb.Schema) *documentBackend {
	fields := make([]string, 0, 1+len(schema.Data))
	fields = append(fields, schema.Key.FieldName())
	for _, p := range schema.Data {
		fields = append(fields, p.FieldName())
	}
	return &documentBackend{client: client, schema: schema, dataFields: fields}
}

func (b *documentBackend) Name() string { return BackendName }

func (b *documentBackend) index(name string) *IndexClient {
	if ic, ok := b.indexes.Load(name); ok {
		return ic.(*IndexClient)
	}
	ic, _ := b.indexes.LoadOrStore(name, b.client.Index(name))
	return ic.(*IndexClient)
}

func (b *documentBackend) Get(ctx context.Context, collection, key string, includeVectors bool) (Document, bool, error) {
	var fields []string
	if !includeVectors {
		fields = b.dataFields
	}
	doc, err := b.index(collection).GetDocument(ctx, key, fields)
	if IsNotFoundError(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, vectordb.NewBackendOperationError(BackendName, "get_document", collection, err)
	}
	return doc, true, nil
}

func (b *documentBackend) Upsert(ctx context.Context, collection string, docs []Document) error {
	err := b.index(collection).IndexDocuments(ctx, ActionMergeOrUpload, docs)
	return vectordb.NewBackendOperationError(BackendName, "index_documents", collection, err)
}

func (b *documentBackend) Delete(ctx context.Context, collection string, keys []string) error {
	keyField := b.schema.Key.FieldName()
	docs := make([]Document, len(keys))
	for i, k := range keys {
		docs[i] = Document{keyField: k}
	}
	err := b.index(collection).IndexDocuments(ctx, ActionDelete, docs)
	return vectordb.NewBackendOperationError(BackendName, "delete_documents", collection, err)
}

// StoreOptions configures NewStore.
type StoreOptions struct {
	// Schema is the explicit schema; it takes precedence over RecordType.
	Schema *vectordb.Schema

	// RecordType is a struct type with `vectordb` tags, used when Schema is nil.
	RecordType reflect.Type

	// Mapping selects the default DocumentMapper or a custom mapper.
	Mapping vectordb.Mapping[string, Document]

	// StoreOptions are passed to vectordb.NewRecordStore.
	StoreOptions []vectordb.StoreOption
}

// NewStore builds a record store over client. The schema is discovered and
// validated here, so an unsupported schema fails before any request is sent.
//
// Example:
//
//	store, err := azuresearch.NewStore(client, azuresearch.StoreOptions{
//	    RecordType: reflect.TypeFor[Hotel](),
//	})
//	key, err := store.Upsert(ctx, record, vectordb.WithCollection("hotels"))
func NewStore(client *SearchClient, opts StoreOptions) (*vectordb.RecordStore[string, Document], error) {
	if client == nil {
		return nil, vectordb.NewArgumentError("client", "must not be nil")
	}
	schema, err := vectordb.Discover(opts.Schema, opts.RecordType, DiscoveryOptions())
	if err != nil {
		return nil, err
	}
	mapper, err := opts.Mapping.Resolve(NewDocumentMapper(schema))
	if err != nil {
		return nil, err
	}
	return vectordb.NewRecordStore[string, Document](newDocumentBackend(client, schema), schema, mapper, client.Config().StoreConfig(), opts.StoreOptions...)
}
