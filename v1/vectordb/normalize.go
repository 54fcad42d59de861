package vectordb

import (
	"context"
	"encoding/base64"
	"errors"
	"iter"
)

// KeyEncoding holds the transforms applied by the normalizing decorators.
// Each pair must be mutually inverse; a nil func is the identity.
type KeyEncoding struct {
	EncodeKey        func(string) string
	DecodeKey        func(string) string
	EncodeCollection func(string) string
	DecodeCollection func(string) string
}

// IdentityKeyEncoding leaves keys and collection names untouched.
func IdentityKeyEncoding() KeyEncoding { return KeyEncoding{} }

// Base64URLKeyEncoding encodes keys as unpadded URL-safe base64, which only
// uses letters, digits, '-' and '_'. Collection names are left untouched.
func Base64URLKeyEncoding() KeyEncoding {
	return KeyEncoding{
		EncodeKey: func(s string) string {
			return base64.RawURLEncoding.EncodeToString([]byte(s))
		},
		DecodeKey: func(s string) string {
			b, err := base64.RawURLEncoding.DecodeString(s)
			if err != nil {
				return s
			}
			return string(b)
		},
	}
}

var encodingProbes = []string{
	"a",
	"key-1",
	"Mixed_Case.42",
	"with space",
	"slash/and\\backslash",
	"a:b=c?d&e#f",
	"ünïcödé-ключ-键",
	"0123456789abcdef0123456789abcdef",
}

func apply(f func(string) string, s string) string {
	if f == nil {
		return s
	}
	return f(s)
}

func (e KeyEncoding) encodeKey(s string) string        { return apply(e.EncodeKey, s) }
func (e KeyEncoding) decodeKey(s string) string        { return apply(e.DecodeKey, s) }
func (e KeyEncoding) encodeCollection(s string) string { return apply(e.EncodeCollection, s) }
func (e KeyEncoding) decodeCollection(s string) string { return apply(e.DecodeCollection, s) }

// Verify checks that both pairs round-trip on a fixed probe set and on the
// given extra collection names.
func (e KeyEncoding) Verify(collections ...string) error {
	if (e.EncodeKey == nil) != (e.DecodeKey == nil) {
		return NewArgumentError("encoding", "EncodeKey and DecodeKey must both be set or both be nil")
	}
	if (e.EncodeCollection == nil) != (e.DecodeCollection == nil) {
		return NewArgumentError("encoding", "EncodeCollection and DecodeCollection must both be set or both be nil")
	}
	for _, p := range encodingProbes {
		if got := e.decodeKey(e.encodeKey(p)); got != p {
			return NewArgumentError("encoding", "key %q does not round-trip, decoded as %q", p, got)
		}
		if got := e.decodeCollection(e.encodeCollection(p)); got != p {
			return NewArgumentError("encoding", "collection %q does not round-trip, decoded as %q", p, got)
		}
	}
	for _, c := range collections {
		if c == "" {
			continue
		}
		if got := e.decodeCollection(e.encodeCollection(c)); got != c {
			return NewArgumentError("encoding", "collection %q does not round-trip, decoded as %q", c, got)
		}
	}
	return nil
}

// KeyNormalizingStore wraps a string-keyed store and applies a KeyEncoding.
// Keys and collection names are encoded on the way in and decoded on every
// returned record. Records passed by the caller are copied, never modified.
type KeyNormalizingStore struct {
	inner             Store[string]
	enc               KeyEncoding
	defaultCollection string
}

var _ Store[string] = (*KeyNormalizingStore)(nil)

// NewKeyNormalizingStore wraps inner. defaultCollection is the logical name used
// when a call does not pass WithCollection; when empty such calls fall through
// to inner's own (already native) default. The encoding is verified here.
func NewKeyNormalizingStore(inner Store[string], enc KeyEncoding, defaultCollection string) (*KeyNormalizingStore, error) {
	if inner == nil {
		return nil, NewArgumentError("inner", "must not be nil")
	}
	if err := enc.Verify(defaultCollection); err != nil {
		return nil, err
	}
	return &KeyNormalizingStore{inner: inner, enc: enc, defaultCollection: defaultCollection}, nil
}

func (s *KeyNormalizingStore) options(opts []Option) []Option {
	o := resolveOptions(opts)
	out := []Option{WithVectors(o.includeVectors)}
	name := o.collection
	if name == "" {
		name = s.defaultCollection
	}
	if name != "" {
		out = append(out, WithCollection(s.enc.encodeCollection(name)))
	}
	return out
}

func (s *KeyNormalizingStore) Get(ctx context.Context, key string, opts ...Option) (Record[string], error) {
	rec, err := s.inner.Get(ctx, s.enc.encodeKey(key), s.options(opts)...)
	if err != nil {
		return Record[string]{}, s.decodeErr(err)
	}
	rec.Key = s.enc.decodeKey(rec.Key)
	return rec, nil
}

func (s *KeyNormalizingStore) GetBatch(ctx context.Context, keys []string, opts ...Option) ([]Record[string], error) {
	encoded := make([]string, len(keys))
	for i, k := range keys {
		encoded[i] = s.enc.encodeKey(k)
	}
	recs, err := s.inner.GetBatch(ctx, encoded, s.options(opts)...)
	if err != nil {
		return nil, s.decodeErr(err)
	}
	for i := range recs {
		recs[i].Key = s.enc.decodeKey(recs[i].Key)
	}
	return recs, nil
}

// decodeErr rewrites a NotFoundError so it names the caller's key and
// collection instead of the encoded ones.
func (s *KeyNormalizingStore) decodeErr(err error) error {
	var nf *NotFoundError
	if !errors.As(err, &nf) {
		return err
	}
	out := &NotFoundError{Collection: s.enc.decodeCollection(nf.Collection)}
	if nf.Key != "" {
		out.Key = s.enc.decodeKey(nf.Key)
	}
	return out
}

func (s *KeyNormalizingStore) Upsert(ctx context.Context, record Record[string], opts ...Option) (string, error) {
	r := record
	r.Key = s.enc.encodeKey(record.Key)
	key, err := s.inner.Upsert(ctx, r, s.options(opts)...)
	if err != nil {
		return "", err
	}
	return s.enc.decodeKey(key), nil
}

func (s *KeyNormalizingStore) UpsertBatch(ctx context.Context, records []Record[string], opts ...Option) ([]string, error) {
	encoded := make([]Record[string], len(records))
	for i, r := range records {
		r.Key = s.enc.encodeKey(r.Key)
		encoded[i] = r
	}
	keys, err := s.inner.UpsertBatch(ctx, encoded, s.options(opts)...)
	if err != nil {
		return nil, err
	}
	for i := range keys {
		keys[i] = s.enc.decodeKey(keys[i])
	}
	return keys, nil
}

func (s *KeyNormalizingStore) Delete(ctx context.Context, key string, opts ...Option) error {
	return s.inner.Delete(ctx, s.enc.encodeKey(key), s.options(opts)...)
}

func (s *KeyNormalizingStore) DeleteBatch(ctx context.Context, keys []string, opts ...Option) error {
	encoded := make([]string, len(keys))
	for i, k := range keys {
		encoded[i] = s.enc.encodeKey(k)
	}
	return s.inner.DeleteBatch(ctx, encoded, s.options(opts)...)
}

// NormalizingCollectionManager applies the collection half of a KeyEncoding to
// a CollectionManager.
type NormalizingCollectionManager struct {
	inner CollectionManager
	enc   KeyEncoding
}

var _ CollectionManager = (*NormalizingCollectionManager)(nil)

// NewNormalizingCollectionManager wraps inner after verifying enc.
func NewNormalizingCollectionManager(inner CollectionManager, enc KeyEncoding) (*NormalizingCollectionManager, error) {
	if inner == nil {
		return nil, NewArgumentError("inner", "must not be nil")
	}
	if err := enc.Verify(); err != nil {
		return nil, err
	}
	return &NormalizingCollectionManager{inner: inner, enc: enc}, nil
}

func (m *NormalizingCollectionManager) CreateCollection(ctx context.Context, name string, schema *Schema) error {
	return m.inner.CreateCollection(ctx, m.enc.encodeCollection(name), schema)
}

func (m *NormalizingCollectionManager) CollectionExists(ctx context.Context, name string) (bool, error) {
	return m.inner.CollectionExists(ctx, m.enc.encodeCollection(name))
}

func (m *NormalizingCollectionManager) DeleteCollection(ctx context.Context, name string) error {
	return m.inner.DeleteCollection(ctx, m.enc.encodeCollection(name))
}

func (m *NormalizingCollectionManager) ListCollections(ctx context.Context) iter.Seq2[string, error] {
	return func(yield func(string, error) bool) {
		for name, err := range m.inner.ListCollections(ctx) {
			if err != nil {
				yield("", err)
				return
			}
			if !yield(m.enc.decodeCollection(name), nil) {
				return
			}
		}
	}
}
