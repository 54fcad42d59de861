package azuresearch

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"slices"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

const testAPIKey = "test-key"

// fakeService is an in-memory stand-in for the REST API.
type fakeService struct {
	mu sync.Mutex

	indexes map[string]*Index
	docs    map[string]map[string]Document

	// selects records the $select parameter of every document lookup.
	selects []string

	// indexRequests counts document indexing requests.
	indexRequests int

	// reject makes indexing fail for keys with this prefix.
	reject string
}

func newFakeService(t *testing.T) (*fakeService, *SearchClient) {
	t.Helper()
	f := &fakeService{indexes: map[string]*Index{}, docs: map[string]map[string]Document{}}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /indexes", f.createIndex)
	mux.HandleFunc("GET /indexes", f.listIndexes)
	mux.HandleFunc("GET /indexes/{name}", f.getIndex)
	mux.HandleFunc("DELETE /indexes/{name}", f.deleteIndex)
	mux.HandleFunc("GET /indexes/{name}/docs/{key}", f.getDocument)
	mux.HandleFunc("POST /indexes/{name}/docs/index", f.indexDocuments)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("api-key") != testAPIKey {
			writeError(w, http.StatusForbidden, "Forbidden", "invalid api key")
			return
		}
		if r.URL.Query().Get("api-version") == "" {
			writeError(w, http.StatusBadRequest, "MissingApiVersion", "api-version is required")
			return
		}
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(srv.Close)

	client, err := NewSearchClient(FromEndpoint(srv.URL).WithAPIKey(testAPIKey).WithDefaultCollection("hotels"))
	require.NoError(t, err)
	return f, client
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"error": map[string]string{"code": code, "message": message}})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (f *fakeService) createIndex(w http.ResponseWriter, r *http.Request) {
	var idx Index
	if err := json.NewDecoder(r.Body).Decode(&idx); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.indexes[idx.Name]; ok {
		writeError(w, http.StatusConflict, "ResourceNameAlreadyInUse", "index already exists")
		return
	}
	f.indexes[idx.Name] = &idx
	f.docs[idx.Name] = map[string]Document{}
	writeJSON(w, http.StatusCreated, idx)
}

func (f *fakeService) listIndexes(w http.ResponseWriter, _ *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	names := make([]string, 0, len(f.indexes))
	for name := range f.indexes {
		names = append(names, name)
	}
	slices.Sort(names)
	value := make([]map[string]string, len(names))
	for i, n := range names {
		value[i] = map[string]string{"name": n}
	}
	writeJSON(w, http.StatusOK, map[string]any{"value": value})
}

func (f *fakeService) getIndex(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx, ok := f.indexes[r.PathValue("name")]
	if !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", "no such index")
		return
	}
	writeJSON(w, http.StatusOK, idx)
}

func (f *fakeService) deleteIndex(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	name := r.PathValue("name")
	if _, ok := f.indexes[name]; !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", "no such index")
		return
	}
	delete(f.indexes, name)
	delete(f.docs, name)
	w.WriteHeader(http.StatusNoContent)
}

func (f *fakeService) getDocument(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.selects = append(f.selects, r.URL.Query().Get("$select"))

	docs, ok := f.docs[r.PathValue("name")]
	if !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", "no such index")
		return
	}
	doc, ok := docs[r.PathValue("key")]
	if !ok {
		writeError(w, http.StatusNotFound, "", "")
		return
	}

	out := Document{"@odata.context": "https://fake/$metadata"}
	if sel := r.URL.Query().Get("$select"); sel != "" {
		for _, field := range strings.Split(sel, ",") {
			out[field] = doc[field]
		}
	} else {
		for k, v := range doc {
			out[k] = v
		}
	}
	writeJSON(w, http.StatusOK, out)
}

func (f *fakeService) indexDocuments(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.indexRequests++

	name := r.PathValue("name")
	idx, ok := f.indexes[name]
	if !ok {
		writeError(w, http.StatusNotFound, "ResourceNotFound", "no such index")
		return
	}
	keyField := ""
	for _, field := range idx.Fields {
		if field.Key {
			keyField = field.Name
		}
	}

	dec := json.NewDecoder(r.Body)
	dec.UseNumber()
	var batch struct {
		Value []map[string]any `json:"value"`
	}
	if err := dec.Decode(&batch); err != nil {
		writeError(w, http.StatusBadRequest, "InvalidRequest", err.Error())
		return
	}

	status := http.StatusOK
	results := make([]IndexingResult, 0, len(batch.Value))
	for _, item := range batch.Value {
		action, _ := item["@search.action"].(string)
		delete(item, "@search.action")
		key, _ := item[keyField].(string)

		if f.reject != "" && strings.HasPrefix(key, f.reject) {
			status = http.StatusMultiStatus
			results = append(results, IndexingResult{Key: key, Succeeded: false, StatusCode: 400, ErrorMessage: "rejected"})
			continue
		}

		switch action {
		case ActionDelete:
			delete(f.docs[name], key)
		case ActionMergeOrUpload:
			doc := f.docs[name][key]
			if doc == nil {
				doc = Document{}
			}
			for k, v := range item {
				doc[k] = v
			}
			f.docs[name][key] = doc
		default:
			writeError(w, http.StatusBadRequest, "InvalidRequest", "unexpected action "+action)
			return
		}
		results = append(results, IndexingResult{Key: key, Succeeded: true, StatusCode: 200})
	}
	writeJSON(w, status, map[string]any{"value": results})
}

func (f *fakeService) hasDoc(index, key string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.docs[index][key]
	return ok
}

func (f *fakeService) docCount(index string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.docs[index])
}

func (f *fakeService) field(index, key, field string) any {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.docs[index][key][field]
}

func (f *fakeService) selectParams() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return slices.Clone(f.selects)
}

func (f *fakeService) requestCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexRequests
}

func (f *fakeService) rejectKeys(prefix string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reject = prefix
}

func (f *fakeService) index(name string) *Index {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.indexes[name]
}
