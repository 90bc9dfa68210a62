package testing

import (
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync"
	"testing"
)

// MockCDN serves registered paths over HTTP for HEAD and GET requests,
// standing in for both the game CDN and the mod repository
type MockCDN struct {
	*httptest.Server

	mu        sync.Mutex
	responses map[string]MockResponse
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
}

// NewMockCDN creates a new mock CDN server
func NewMockCDN(t *testing.T) *MockCDN {
	t.Helper()

	mock := &MockCDN{responses: make(map[string]MockResponse)}

	mock.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mock.mu.Lock()
		mock.requests = append(mock.requests, MockRequest{Method: r.Method, Path: r.URL.Path})
		response, ok := mock.responses[r.URL.Path]
		mock.mu.Unlock()

		if !ok {
			http.NotFound(w, r)
			return
		}

		for key, value := range response.Headers {
			w.Header().Set(key, value)
		}
		if w.Header().Get("Content-Type") == "" {
			w.Header().Set("Content-Type", "application/octet-stream")
		}
		w.Header().Set("Content-Length", strconv.Itoa(len(response.Body)))

		status := response.StatusCode
		if status == 0 {
			status = http.StatusOK
		}
		w.WriteHeader(status)

		if r.Method != http.MethodHead {
			w.Write(response.Body)
		}
	}))

	t.Cleanup(func() {
		mock.Server.Close()
	})

	return mock
}

// SetFile serves body at path with status 200
func (m *MockCDN) SetFile(path string, body []byte) {
	m.SetRawResponse(path, http.StatusOK, body, nil)
}

// SetPage serves an HTML page at path
func (m *MockCDN) SetPage(path, html string) {
	m.SetRawResponse(path, http.StatusOK, []byte(html), map[string]string{
		"Content-Type": "text/html; charset=utf-8",
	})
}

// SetRawResponse sets a raw response
func (m *MockCDN) SetRawResponse(path string, statusCode int, body []byte, headers map[string]string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.responses[path] = MockResponse{
		StatusCode: statusCode,
		Body:       body,
		Headers:    headers,
	}
}

// URLFor returns the absolute URL for path on the mock server
func (m *MockCDN) URLFor(path string) string {
	return m.Server.URL + "/" + strings.TrimPrefix(path, "/")
}

// Requests returns a copy of the recorded requests
func (m *MockCDN) Requests() []MockRequest {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]MockRequest(nil), m.requests...)
}

// GetRequestCount returns the number of requests made to a path with method.
// An empty method matches any method.
func (m *MockCDN) GetRequestCount(method, path string) int {
	count := 0
	for _, req := range m.Requests() {
		if req.Path == path && (method == "" || req.Method == method) {
			count++
		}
	}
	return count
}

// ClearRequests clears the recorded requests
func (m *MockCDN) ClearRequests() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests = nil
}
