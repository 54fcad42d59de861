package vectordb

import (
	"context"
	"errors"
	"iter"
)

// CollectionManager owns collection lifecycle for one backend. CreateCollection
// is not idempotent: creating an existing collection is a backend error.
type CollectionManager interface {
	CreateCollection(ctx context.Context, name string, schema *Schema) error
	CollectionExists(ctx context.Context, name string) (bool, error)
	DeleteCollection(ctx context.Context, name string) error

	// ListCollections yields collection names lazily. I/O happens per page, so
	// a consumer that stops early never fetches the remaining pages.
	ListCollections(ctx context.Context) iter.Seq2[string, error]
}

// PageFunc fetches one page of names starting at token ("" for the first page)
// and returns the token of the next page, "" when there are no more.
type PageFunc func(ctx context.Context, token string) (names []string, next string, err error)

// Paginate turns a PageFunc into a lazy sequence. An error is yielded once and
// ends the sequence. Cancellation and fetch errors that are not already a
// *BackendOperationError are wrapped in one attributed to backend.
func Paginate(ctx context.Context, backend string, fetch PageFunc) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		token := ""
		for {
			if err := ctx.Err(); err != nil {
				yield("", NewBackendOperationError(backend, "list_collections", "", err))
				return
			}
			names, next, err := fetch(ctx, token)
			if err != nil {
				var opErr *BackendOperationError
				if !errors.As(err, &opErr) {
					err = NewBackendOperationError(backend, "list_collections", "", err)
				}
				yield("", err)
				return
			}
			for _, name := range names {
				if !yield(name, nil) {
					return
				}
			}
			if next == "" {
				return
			}
			token = next
		}
	}
}

// CollectNames drains seq into a slice, stopping at the first error.
func CollectNames(seq iter.Seq2[string, error]) ([]string, error) {
	var names []string
	for name, err := range seq {
		if err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}
