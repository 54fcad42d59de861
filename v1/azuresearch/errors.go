package azuresearch

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
)

// ResponseError is a non-2xx reply of the service.
type ResponseError struct {
	StatusCode int
	Method     string
	Path       string

	// Code and Message come from the {"error": {...}} body when present.
	Code    string
	Message string
}

func (e *ResponseError) Error() string {
	msg := fmt.Sprintf("[AzureSearch] %s %s: http %d", e.Method, e.Path, e.StatusCode)
	if e.Code != "" {
		msg += " " + e.Code
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

// IsNotFoundError reports whether err is a 404 reply.
func IsNotFoundError(err error) bool {
	return hasStatus(err, http.StatusNotFound)
}

// IsConflictError reports whether err is a 409 reply, e.g. creating an index
// that already exists.
func IsConflictError(err error) bool {
	return hasStatus(err, http.StatusConflict)
}

func hasStatus(err error, status int) bool {
	var re *ResponseError
	return errors.As(err, &re) && re.StatusCode == status
}

// IndexingResult is the per-document outcome of an indexing batch.
type IndexingResult struct {
	Key          string `json:"key"`
	Succeeded    bool   `json:"status"`
	ErrorMessage string `json:"errorMessage,omitempty"`
	StatusCode   int    `json:"statusCode"`
}

// IndexingError reports the documents of a batch the service rejected. The
// other documents of the batch were written.
type IndexingError struct {
	Index  string
	Failed []IndexingResult
}

func (e *IndexingError) Error() string {
	parts := make([]string, 0, len(e.Failed))
	for _, r := range e.Failed {
		parts = append(parts, fmt.Sprintf("%s (%d: %s)", r.Key, r.StatusCode, r.ErrorMessage))
	}
	return fmt.Sprintf("[AzureSearch] %d documents rejected by index %q: %s", len(e.Failed), e.Index, strings.Join(parts, "; "))
}
