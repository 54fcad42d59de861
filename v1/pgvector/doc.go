// Package pgvector stores vector records in PostgreSQL tables using the
// pgvector extension.
//
// # Architecture
//
// A collection is a table in the current schema. Postgres wraps a gorm
// connection pool with health monitoring and reconnection; CollectionManager
// creates tables from a vectordb.Schema, and NewStore returns a
// vectordb.RecordStore whose backend issues plain SQL over that pool.
//
// # Direct Usage
//
//	cfg := pgvector.DefaultConfig()
//	cfg.Connection.User = "search"
//	cfg.Connection.Password = os.Getenv("POSTGRES_PASSWORD")
//	cfg.Connection.DbName = "vectors"
//	cfg.DefaultCollection = "hotels"
//
//	pg, err := pgvector.NewPostgres(cfg)
//	if err != nil {
//		return err
//	}
//	defer pg.GracefulShutdown()
//
//	store, err := pgvector.NewStore(pg, pgvector.StoreOptions{RecordType: reflect.TypeFor[Hotel]()})
//	if err != nil {
//		return err
//	}
//	if err := pgvector.NewCollectionManager(pg).CreateCollection(ctx, "hotels", store.Schema()); err != nil {
//		return err
//	}
//
// # Table Translation
//
// The key becomes a text primary key. Scalars use native column types
// (text, boolean, integer, bigint, real, double precision, timestamptz, uuid);
// lists are jsonb arrays. Each vector is a vector(n) column. HNSW vectors get
// an hnsw index with vector_cosine_ops, vector_ip_ops, vector_l2_ops or
// vector_l1_ops; flat vectors are left unindexed. Squared euclidean distance is
// not supported. Filterable data is indexed with btree (gin for lists) and full
// text data with a gin index over to_tsvector('simple', column).
//
// # Rows
//
// Upsert is INSERT ... ON CONFLICT DO UPDATE over every column, so a record
// replaces the whole row. Large batches are split to stay under the bind
// parameter limit and run in one transaction. Times are stored in UTC with
// microsecond precision. Looking a key up in a missing table reports the
// record as not found.
//
// # Thread Safety
//
// Postgres, CollectionManager and stores are safe for concurrent use.
package pgvector
