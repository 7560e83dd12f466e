// Package testutil provides testing utilities for the geocoding cache.
package testutil

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"time"
)

// MockResponse defines the behavior for a mock upstream response.
type MockResponse struct {
	StatusCode int
	Body       string
	Headers    map[string]string
	Delay      time.Duration
}

// MockUpstream is a configurable positionstack-like server for testing.
// Responses are keyed by endpoint ("/forward", "/reverse") and optionally
// by the exact "query" parameter.
type MockUpstream struct {
	server   *httptest.Server
	mu       sync.RWMutex
	handlers map[string]func(w http.ResponseWriter, r *http.Request)

	// Tracking
	requestCount int
	queries      []string
	lastQuery    url.Values
}

// NewMockUpstream creates a new mock upstream server.
func NewMockUpstream() *MockUpstream {
	mock := &MockUpstream{
		handlers: make(map[string]func(w http.ResponseWriter, r *http.Request)),
	}

	mock.server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()

		mock.mu.Lock()
		mock.requestCount++
		mock.queries = append(mock.queries, q.Get("query"))
		mock.lastQuery = q
		handler, exists := mock.handlers[handlerKey(r.URL.Path, q.Get("query"))]
		if !exists {
			handler, exists = mock.handlers[handlerKey(r.URL.Path, "")]
		}
		mock.mu.Unlock()

		if exists {
			handler(w, r)
			return
		}

		mock.defaultHandler(w, r)
	}))

	return mock
}

func handlerKey(path, query string) string {
	if query == "" {
		return path
	}
	return path + "?" + query
}

// URL returns the mock server URL, usable as the client base URL.
func (m *MockUpstream) URL() string {
	return m.server.URL
}

// Close shuts down the mock server.
func (m *MockUpstream) Close() {
	m.server.Close()
}

// Reset clears all tracking counters.
func (m *MockUpstream) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requestCount = 0
	m.queries = nil
	m.lastQuery = nil
}

// SetHandler sets a custom handler for an endpoint path ("/forward").
func (m *MockUpstream) SetHandler(path string, handler func(w http.ResponseWriter, r *http.Request)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[handlerKey(path, "")] = handler
}

// SetResponse configures a response for every request to path.
func (m *MockUpstream) SetResponse(path string, resp MockResponse) {
	m.SetHandler(path, responseHandler(resp))
}

// SetQueryResponse configures a response for one exact query on path.
func (m *MockUpstream) SetQueryResponse(path, query string, resp MockResponse) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.handlers[handlerKey(path, query)] = responseHandler(resp)
}

func responseHandler(resp MockResponse) func(w http.ResponseWriter, r *http.Request) {
	return func(w http.ResponseWriter, r *http.Request) {
		if resp.Delay > 0 {
			select {
			case <-time.After(resp.Delay):
			case <-r.Context().Done():
				return
			}
		}

		for key, value := range resp.Headers {
			w.Header().Set(key, value)
		}

		w.WriteHeader(resp.StatusCode)
		if resp.Body != "" {
			w.Write([]byte(resp.Body))
		}
	}
}

// RequestCount returns the number of requests made to the server.
func (m *MockUpstream) RequestCount() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.requestCount
}

// Queries returns the "query" parameter of every request, in arrival order.
func (m *MockUpstream) Queries() []string {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]string(nil), m.queries...)
}

// LastQuery returns the query parameters of the most recent request.
func (m *MockUpstream) LastQuery() url.Values {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.lastQuery
}

// defaultHandler answers every query with an empty result list.
func (m *MockUpstream) defaultHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"data": []}`))
}

// NewForwardResponse creates a 200 OK forward response with one result.
func NewForwardResponse(lat, lon float64, label string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body: fmt.Sprintf(`{"data": [{"latitude": %v, "longitude": %v, "label": %q, "type": "address", "confidence": 1}]}`,
			lat, lon, label),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewReverseResponse creates a 200 OK reverse response with one result.
func NewReverseResponse(label string) MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       fmt.Sprintf(`{"data": [{"latitude": 40.76, "longitude": -73.97, "label": %q, "distance": 0}]}`, label),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewEmptyResponse creates a 200 OK response with no results.
func NewEmptyResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `{"data": []}`,
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewErrorResponse creates a positionstack-style error response.
func NewErrorResponse(status int, code string) MockResponse {
	return MockResponse{
		StatusCode: status,
		Body:       fmt.Sprintf(`{"error": {"code": %q, "message": "mock error"}}`, code),
		Headers: map[string]string{
			"Content-Type": "application/json; charset=utf-8",
		},
	}
}

// NewUnauthorizedResponse creates a 401 invalid_access_key response.
func NewUnauthorizedResponse() MockResponse {
	return NewErrorResponse(http.StatusUnauthorized, "invalid_access_key")
}

// NewValidationErrorResponse creates a 422 validation_error response.
func NewValidationErrorResponse() MockResponse {
	return NewErrorResponse(http.StatusUnprocessableEntity, "validation_error")
}

// NewServerErrorResponse creates a 500 Internal Server Error response.
func NewServerErrorResponse() MockResponse {
	return NewErrorResponse(http.StatusInternalServerError, "internal_error")
}

// NewMalformedResponse creates a 200 OK response whose body is not JSON.
func NewMalformedResponse() MockResponse {
	return MockResponse{
		StatusCode: http.StatusOK,
		Body:       `<html>not json</html>`,
		Headers: map[string]string{
			"Content-Type": "text/html",
		},
	}
}
