// Package azuresearch provides the Azure AI Search backend of the vector store.
//
// A collection is a search index and a record is a flat JSON document. The
// package translates a vendor-neutral vectordb.Schema into an index definition
// and maps vectordb.Record values to and from documents, talking to the
// service's REST API.
//
// # Architecture
//
//   - SearchClient: REST client for index and document requests, traced
//     with otelhttp and reported to an optional observability.Observer
//   - IndexClient: document requests against one index; stores cache one per
//     index name
//   - BuildIndex: pure schema translation, split from I/O
//   - DocumentMapper: default record mapper
//   - CollectionManager: vectordb.CollectionManager over SearchClient
//   - FX module: provides *SearchClient, *CollectionManager and the manager as
//     a vectordb.CollectionManager named "azuresearch"
//
// # Direct Usage (Without FX)
//
//	client, err := azuresearch.NewSearchClient(
//		azuresearch.FromEndpoint("https://my-service.search.windows.net").
//			WithAPIKey(os.Getenv("AZURE_SEARCH_API_KEY")).
//			WithDefaultCollection("hotels"))
//	if err != nil {
//		return err
//	}
//
//	manager := azuresearch.NewCollectionManager(client)
//	if err := manager.CreateCollection(ctx, "hotels", schema); err != nil {
//		return err
//	}
//
//	store, err := azuresearch.NewStore(client, azuresearch.StoreOptions{Schema: schema})
//	key, err := store.Upsert(ctx, record)
//
// # Index Translation
//
// The key becomes a filterable Edm.String key field. Data properties become
// Edm.String (also UUIDs), Edm.Boolean, Edm.Int32, Edm.Int64, Edm.Double (both
// float widths) or Edm.DateTimeOffset fields, lists Collection(...) of those,
// with filterable and searchable taken from the property flags. Full-text
// search is only allowed on strings.
//
// Each vector property becomes a Collection(Edm.Single) field with its
// dimensions and a profile "{field}Profile" bound to an algorithm
// configuration "{field}AlgoConfig": hnsw (default) or exhaustiveKnn for the
// flat index kind, with metric cosine (default), dotProduct or euclidean.
// Manhattan and squared Euclidean distances are rejected with
// vectordb.UnsupportedConfigurationError.
//
// # Documents
//
// Upserts use the mergeOrUpload action. Every schema property is sent, missing
// ones as null, so an upsert replaces the whole document. Times are sent as
// RFC 3339 strings; the service stores them in UTC with millisecond precision.
// Keys must satisfy the service's key charset (letters, digits, '_', '-', '=');
// wrap the store in vectordb.NewKeyNormalizingStore with
// vectordb.Base64URLKeyEncoding for arbitrary keys.
//
// Documents rejected inside an accepted batch are reported as an
// *IndexingError wrapped in a vectordb.BackendOperationError.
//
// # Thread Safety
//
// SearchClient, the stores and the collection manager are safe for concurrent
// use.
package azuresearch
