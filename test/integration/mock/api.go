package mock

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
)

// ApiMock stands in for an upstream HTTP API. Responses are registered per
// method and path, either for the nth call or as a default for every call.
type ApiMock struct {
	mu               sync.Mutex
	server           *httptest.Server
	responses        map[string]map[int]mockResponse
	defaultResponses map[string]mockResponse
	headersReceived  map[string][]map[string]string
	queriesReceived  map[string][]map[string]string
	requestsReceived map[string][]map[string]any
}

type mockResponse struct {
	status int
	body   any
}

func NewApiServer() *ApiMock {
	a := &ApiMock{}
	a.Reset()
	return a
}

func (a *ApiMock) Start() {
	a.server = httptest.NewServer(http.HandlerFunc(a.handle))
}

func (a *ApiMock) Close() {
	if a.server != nil {
		a.server.Close()
	}
}

func (a *ApiMock) GetUrl() string {
	if a.server == nil {
		return ""
	}
	return a.server.URL
}

// Reset drops every registered response and recorded request.
func (a *ApiMock) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.responses = map[string]map[int]mockResponse{}
	a.defaultResponses = map[string]mockResponse{}
	a.headersReceived = map[string][]map[string]string{}
	a.queriesReceived = map[string][]map[string]string{}
	a.requestsReceived = map[string][]map[string]any{}
}

// SetResponse registers the response for the index-th call of method+path.
// An index of -1 registers the default for calls without their own entry.
func (a *ApiMock) SetResponse(index int, method, path string, status int, body any) {
	a.mu.Lock()
	defer a.mu.Unlock()
	key := method + path
	if index == -1 {
		a.defaultResponses[key] = mockResponse{status: status, body: body}
		return
	}
	if a.responses[key] == nil {
		a.responses[key] = map[int]mockResponse{}
	}
	a.responses[key][index] = mockResponse{status: status, body: body}
}

// CallCount returns how many calls method+path received.
func (a *ApiMock) CallCount(method, path string) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.requestsReceived[method+path])
}

func (a *ApiMock) GetRequestBody(method, path string, index int) map[string]any {
	a.mu.Lock()
	defer a.mu.Unlock()
	if calls := a.requestsReceived[method+path]; index < len(calls) {
		return calls[index]
	}
	return nil
}

func (a *ApiMock) GetRequestHeaders(method, path string, index int) map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if calls := a.headersReceived[method+path]; index < len(calls) {
		return calls[index]
	}
	return nil
}

func (a *ApiMock) GetRequestQueries(method, path string, index int) map[string]string {
	a.mu.Lock()
	defer a.mu.Unlock()
	if calls := a.queriesReceived[method+path]; index < len(calls) {
		return calls[index]
	}
	return nil
}

func (a *ApiMock) handle(w http.ResponseWriter, r *http.Request) {
	key := r.Method + r.URL.Path

	body, _ := io.ReadAll(r.Body)
	request := map[string]any{}
	_ = json.Unmarshal(body, &request)

	headers := map[string]string{}
	for name, values := range r.Header {
		headers[name] = values[0]
	}
	queries := map[string]string{}
	for name, values := range r.URL.Query() {
		queries[name] = values[0]
	}

	a.mu.Lock()
	index := len(a.requestsReceived[key])
	a.requestsReceived[key] = append(a.requestsReceived[key], request)
	a.headersReceived[key] = append(a.headersReceived[key], headers)
	a.queriesReceived[key] = append(a.queriesReceived[key], queries)
	resp := a.responseFor(key, index)
	a.mu.Unlock()

	payload, _ := json.Marshal(resp.body)
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(resp.status)
	_, _ = w.Write(payload)
}

// responseFor resolves the indexed response, then the default, then an
// empty 200. Callers hold a.mu.
func (a *ApiMock) responseFor(key string, index int) mockResponse {
	if resp, ok := a.responses[key][index]; ok {
		return resp
	}
	if resp, ok := a.defaultResponses[key]; ok {
		return resp
	}
	return mockResponse{status: http.StatusOK, body: map[string]any{}}
}
