package testing

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/modwarden/modwarden/internal/catalog"
)

// MockCatalogServer provides a mock mod catalog API server for testing.
// Handlers run concurrently; all state is guarded by the mutex.
type MockCatalogServer struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]MockResponse
	searches  map[string][]catalog.Project // keyed by search query
	requests  []MockRequest
}

// MockResponse holds response data for a path
type MockResponse struct {
	StatusCode int
	Body       []byte
	Headers    map[string]string
}

// MockRequest records a request made to the mock server
type MockRequest struct {
	Method string
	Path   string
	Query  map[string][]string
}

// NewMockCatalogServer creates a new mock catalog API server
func NewMockCatalogServer(t *testing.T) *MockCatalogServer {
	t.Helper()

	mock := &MockCatalogServer{
		responses: make(map[string]MockResponse),
		searches:  make(map[string][]catalog.Project),
		requests:  make([]MockRequest, 0),
	}

	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()

		mock.requests = append(mock.requests, MockRequest{
			Method: r.Method,
			Path:   r.URL.Path,
			Query:  r.URL.Query(),
		})

		// Search responses key on the query parameter so different mods
		// can get different hits from one server.
		if r.URL.Path == "/search" {
			if hits, ok := mock.searches[r.URL.Query().Get("query")]; ok {
				mock.mu.Unlock()
				w.Header().Set("Content-Type", "application/json")
				json.NewEncoder(w).Encode(map[string]any{"hits": hits})
				return
			}
		}

		response, ok := mock.responses[r.URL.Path]
		mock.mu.Unlock()

		if !ok {
			w.WriteHeader(http.StatusNotFound)
			json.NewEncoder(w).Encode(map[string]string{
				"error": "not_found",
			})
			return
		}

		for key, value := range response.Headers {
			w.Header().Set(key, value)
		}
		if response.Headers["Content-Type"] == "" {
			w.Header().Set("Content-Type", "application/json")
		}
		if response.StatusCode != 0 {
			w.WriteHeader(response.StatusCode)
		}
		w.Write(response.Body)
	}))

	t.Cleanup(func() {
		mock.Server.Close()
	})

	return mock
}

// SetSearch registers the hits returned for one search query
func (m *MockCatalogServer) SetSearch(query string, hits ...catalog.Project) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.searches[query] = hits
}

// SetVersions registers the version listing for a project
func (m *MockCatalogServer) SetVersions(projectID string, versions ...catalog.Version) error {
	if versions == nil {
		versions = []catalog.Version{}
	}
	return m.SetResponse("/project/"+projectID+"/version", versions)
}

// SetFile serves raw bytes for a download path
func (m *MockCatalogServer) SetFile(path string, data []byte) {
	m.SetRawResponse(path, http.StatusOK, data, map[string]string{
		"Content-Type": "application/java-archive",
	})
}

// FileURL returns the absolute URL for a download path
func (m *MockCatalogServer) FileURL(path string) string {
	return m.URL + path
}

// SetResponse sets the response for a given path
func (m *MockCatalogServer) SetResponse(path string, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.SetRawResponse(path, http.StatusOK, jsonData, nil)
	return nil
}

// SetJSONResponse sets a JSON response with custom status code
func (m *MockCatalogServer) SetJSONResponse(path string, statusCode int, data interface{}) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	m.SetRawResponse(path, statusCode, jsonData, nil)
	return nil
}

// SetRawResponse sets a raw response
func (m *MockCatalogServer) SetRawResponse(path string, statusCode int, body []byte, headers map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = MockResponse{
		StatusCode: statusCode,
		Body:       body,
		Headers:    headers,
	}
}

// SetError sets an error response
func (m *MockCatalogServer) SetError(path string, statusCode int, message string) error {
	return m.SetJSONResponse(path, statusCode, map[string]string{
		"error": message,
	})
}

// GetRequestCount returns the number of requests made to a path
func (m *MockCatalogServer) GetRequestCount(path string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, req := range m.requests {
		if req.Path == path {
			count++
		}
	}
	return count
}

// Requests returns a copy of the recorded requests
func (m *MockCatalogServer) Requests() []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]MockRequest, len(m.requests))
	copy(out, m.requests)
	return out
}

// ClearRequests clears the recorded requests
func (m *MockCatalogServer) ClearRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = make([]MockRequest, 0)
}
