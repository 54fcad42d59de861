package azuresearch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Aleph-Alpha/vectorstore/v1/observability"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

//
// ──────────────────────────────────────────────────────────────
//   AZURE AI SEARCH REST CLIENT
// ──────────────────────────────────────────────────────────────
//
// SearchClient speaks the subset of the REST API the vector store needs:
// index create/get/delete/list and document lookup/indexing. Requests are
// traced through otelhttp and reported to the optional observer.
//

// maxBatchSize is the service limit of documents per indexing request.
const maxBatchSize = 1000

// errorBodyLimit caps how much of an error reply is read.
const errorBodyLimit = 64 << 10

// SearchClient is a client for one Azure AI Search service. It is safe for
// concurrent use.
type SearchClient struct {
	cfg        *Config
	baseURL    string
	httpClient *http.Client
	observer   observability.Observer
}

// NewSearchClient validates cfg and builds a client. No request is sent.
//
// Example:
//
//	client, err := azuresearch.NewSearchClient(azuresearch.FromEndpoint(endpoint).WithAPIKey(key))
func NewSearchClient(cfg *Config) (*SearchClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("[AzureSearch] config is required")
	}
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("[AzureSearch] missing AZURE_SEARCH_ENDPOINT")
	}
	u, err := url.Parse(cfg.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("[AzureSearch] invalid endpoint %q", cfg.Endpoint)
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("[AzureSearch] missing AZURE_SEARCH_API_KEY")
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}

	log.Printf("[AzureSearch] Using endpoint: %s (api-version=%s)", cfg.Endpoint, cfg.APIVersion)
	return &SearchClient{
		cfg:     cfg,
		baseURL: strings.TrimRight(cfg.Endpoint, "/"),
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}, nil
}

// WithObserver attaches an observer notified after every request.
func (c *SearchClient) WithObserver(observer observability.Observer) *SearchClient {
	c.observer = observer
	return c
}

// Config returns the client configuration.
func (c *SearchClient) Config() *Config {
	return c.cfg
}

// Close releases idle connections.
func (c *SearchClient) Close() error {
	c.httpClient.CloseIdleConnections()
	return nil
}

// Ping checks that the service is reachable and the key is accepted.
func (c *SearchClient) Ping(ctx context.Context) error {
	_, err := c.ListIndexNames(ctx)
	return err
}

// CreateIndex creates idx. Creating an existing index fails.
func (c *SearchClient) CreateIndex(ctx context.Context, idx *Index) error {
	return c.do(ctx, "create_index", idx.Name, http.MethodPost, "/indexes", nil, idx, nil, len(idx.Fields))
}

// IndexExists reports whether the index exists.
func (c *SearchClient) IndexExists(ctx context.Context, name string) (bool, error) {
	err := c.do(ctx, "get_index", name, http.MethodGet, indexPath(name), nil, nil, nil, 0)
	if IsNotFoundError(err) {
		return false, nil
	}
	return err == nil, err
}

// DeleteIndex drops the index and its documents. A missing index is not an error.
func (c *SearchClient) DeleteIndex(ctx context.Context, name string) error {
	err := c.do(ctx, "delete_index", name, http.MethodDelete, indexPath(name), nil, nil, nil, 0)
	if IsNotFoundError(err) {
		return nil
	}
	return err
}

// ListIndexNames returns the names of all indexes. The service returns them
// in a single response.
func (c *SearchClient) ListIndexNames(ctx context.Context) ([]string, error) {
	var resp struct {
		Value []struct {
			Name string `json:"name"`
		} `json:"value"`
	}
	query := url.Values{"$select": {"name"}}
	if err := c.do(ctx, "list_indexes", "", http.MethodGet, "/indexes", query, nil, &resp, 0); err != nil {
		return nil, err
	}
	names := make([]string, len(resp.Value))
	for i, v := range resp.Value {
		names[i] = v.Name
	}
	return names, nil
}

// Index returns a document client for the named index. It does not check that
// the index exists.
func (c *SearchClient) Index(name string) *IndexClient {
	return &IndexClient{client: c, name: name}
}

// Indexing actions.
const (
	ActionUpload        = "upload"
	ActionMerge         = "merge"
	ActionMergeOrUpload = "mergeOrUpload"
	ActionDelete        = "delete"
)

// IndexClient reads and writes the documents of one index.
type IndexClient struct {
	client *SearchClient
	name   string
}

// Name returns the index name.
func (ic *IndexClient) Name() string { return ic.name }

// GetDocument looks up a document by key. selectFields limits the returned
// fields; nil returns every retrievable field. A missing document is a
// ResponseError for which IsNotFoundError holds.
func (ic *IndexClient) GetDocument(ctx context.Context, key string, selectFields []string) (Document, error) {
	var query url.Values
	if len(selectFields) > 0 {
		query = url.Values{"$select": {strings.Join(selectFields, ",")}}
	}
	var doc Document
	path := indexPath(ic.name) + "/docs/" + url.PathEscape(key)
	if err := ic.client.do(ctx, "get_document", ic.name, http.MethodGet, path, query, nil, &doc, 1); err != nil {
		return nil, err
	}
	return doc, nil
}

// IndexDocuments applies action to every document, in requests of at most
// 1000 documents. Documents the service rejects are reported as one
// *IndexingError after all requests were sent.
func (ic *IndexClient) IndexDocuments(ctx context.Context, action string, docs []Document) error {
	var failed []IndexingResult
	for start := 0; start < len(docs); start += maxBatchSize {
		end := min(start+maxBatchSize, len(docs))
		batch := make([]map[string]any, 0, end-start)
		for _, doc := range docs[start:end] {
			item := make(map[string]any, len(doc)+1)
			for k, v := range doc {
				item[k] = v
			}
			item["@search.action"] = action
			batch = append(batch, item)
		}

		var resp struct {
			Value []IndexingResult `json:"value"`
		}
		body := map[string]any{"value": batch}
		path := indexPath(ic.name) + "/docs/index"
		if err := ic.client.do(ctx, "index_documents", ic.name, http.MethodPost, path, nil, body, &resp, len(batch)); err != nil {
			return err
		}
		for _, r := range resp.Value {
			if !r.Succeeded {
				failed = append(failed, r)
			}
		}
	}
	if len(failed) > 0 {
		return &IndexingError{Index: ic.name, Failed: failed}
	}
	return nil
}

func indexPath(name string) string {
	return "/indexes/" + url.PathEscape(name)
}

// do sends one request. body is encoded as JSON when non-nil; a 2xx reply is
// decoded into out when out is non-nil, keeping numbers as json.Number.
func (c *SearchClient) do(ctx context.Context, operation, resource, method, path string, query url.Values, body, out any, size int) (err error) {
	start := time.Now()
	defer func() {
		c.observeOperation(operation, resource, time.Since(start), err, int64(size))
	}()

	if query == nil {
		query = url.Values{}
	}
	query.Set("api-version", c.cfg.APIVersion)
	target := c.baseURL + path + "?" + query.Encode()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("[AzureSearch] encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("[AzureSearch] build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("api-key", c.cfg.APIKey)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("[AzureSearch] %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		return responseError(resp, method, path)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("[AzureSearch] decode %s %s response: %w", method, path, err)
	}
	return nil
}

func responseError(resp *http.Response, method, path string) error {
	re := &ResponseError{StatusCode: resp.StatusCode, Method: method, Path: path}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, errorBodyLimit))
	var payload struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(data, &payload) == nil {
		re.Code = payload.Error.Code
		re.Message = payload.Error.Message
	}
	return re
}

func (c *SearchClient) observeOperation(operation, resource string, duration time.Duration, err error, size int64) {
	if c.observer == nil {
		return
	}
	c.observer.ObserveOperation(observability.OperationContext{
		Component: BackendName,
		Operation: operation,
		Resource:  resource,
		Duration:  duration,
		Error:     err,
		Size:      size,
	})
}
