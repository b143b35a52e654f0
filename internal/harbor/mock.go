package harbor

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
)

// MockHarborServer provides a mock Voice Harbor API plus signed-URL blob
// storage for testing the client end to end without a real deployment.
type MockHarborServer struct {
	server *httptest.Server

	mu              sync.Mutex
	jobCounter      int
	jobs            []Job
	content         map[string][]AudioRecord
	blobs           map[string][]byte
	pollCounts      map[string]int
	pollsUntilReady int
	lastAuth        string
	devTokens       []DeveloperToken
}

// StartMockHarborServer creates and starts a mock Harbor API server.
// pollsUntilReady controls how many finalized checks a file needs before it
// is reported as available (seeded results only).
func StartMockHarborServer(pollsUntilReady int) *MockHarborServer {
	mock := &MockHarborServer{
		content:         make(map[string][]AudioRecord),
		blobs:           make(map[string][]byte),
		pollCounts:      make(map[string]int),
		pollsUntilReady: pollsUntilReady,
	}

	mock.server = httptest.NewServer(http.HandlerFunc(mock.route))
	return mock
}

// URL returns the mock server's base URL.
func (m *MockHarborServer) URL() string {
	return m.server.URL
}

// Close shuts the mock server down.
func (m *MockHarborServer) Close() {
	m.server.Close()
}

// SeedResult registers a result blob that becomes downloadable once its
// finalized poll threshold is reached.
func (m *MockHarborServer) SeedResult(name string, content []byte) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs["results/"+name] = content
}

// SeedJob registers a job for the list endpoint.
func (m *MockHarborServer) SeedJob(job Job) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.jobs = append(m.jobs, job)
}

// SeedContent registers content records for a job.
func (m *MockHarborServer) SeedContent(jobID string, records []AudioRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.content[jobID] = records
}

// UploadedBlob returns the bytes stored for an uploaded file name.
func (m *MockHarborServer) UploadedBlob(name string) ([]byte, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs["uploads/"+name]
	return data, ok
}

// PollCount returns how many finalized checks were made for a file.
func (m *MockHarborServer) PollCount(name string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pollCounts[name]
}

// LastAuthorization returns the Authorization header of the most recent
// API request.
func (m *MockHarborServer) LastAuthorization() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.lastAuth
}

func (m *MockHarborServer) route(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Path

	// Signed-URL blob storage is unauthenticated by design.
	if strings.HasPrefix(path, "/blob/") {
		m.handleBlob(w, r, strings.TrimPrefix(path, "/blob/"))
		return
	}

	m.mu.Lock()
	m.lastAuth = r.Header.Get("Authorization")
	m.mu.Unlock()

	switch {
	case path == "/api/jobs" && r.Method == http.MethodPost:
		m.handleCreateJob(w)
	case path == "/api/jobs" && r.Method == http.MethodGet:
		m.handleListJobs(w)
	case path == "/api/admin/developer-token" && r.Method == http.MethodPost:
		m.handleCreateDeveloperToken(w)
	case path == "/api/admin/developer-tokens" && r.Method == http.MethodGet:
		m.handleListDeveloperTokens(w)
	case strings.HasSuffix(path, "/content") && r.Method == http.MethodGet:
		m.handleContent(w, path)
	case strings.HasSuffix(path, "/files/upload-url") && r.Method == http.MethodPost:
		m.handleSignedURL(w, r, "uploads")
	case strings.HasSuffix(path, "/files/download-url") && r.Method == http.MethodPost:
		m.handleSignedURL(w, r, "results")
	case strings.HasSuffix(path, "/files/finalized") && r.Method == http.MethodPost:
		m.handleFinalized(w, r)
	default:
		http.NotFound(w, r)
	}
}

func (m *MockHarborServer) handleCreateJob(w http.ResponseWriter) {
	m.mu.Lock()
	m.jobCounter++
	jobID := fmt.Sprintf("mock-job-%04d", m.jobCounter)
	m.jobs = append(m.jobs, Job{JobID: jobID, Status: StatusPending})
	m.mu.Unlock()

	writeJSON(w, map[string]string{"job_id": jobID})
}

func (m *MockHarborServer) handleListJobs(w http.ResponseWriter) {
	m.mu.Lock()
	jobs := append([]Job(nil), m.jobs...)
	m.mu.Unlock()
	writeJSON(w, map[string]any{"jobs": jobs})
}

func (m *MockHarborServer) handleContent(w http.ResponseWriter, path string) {
	jobID := strings.TrimSuffix(strings.TrimPrefix(path, "/api/jobs/"), "/content")
	m.mu.Lock()
	records := m.content[jobID]
	m.mu.Unlock()
	writeJSON(w, map[string]any{"jobContent": records})
}

func (m *MockHarborServer) handleCreateDeveloperToken(w http.ResponseWriter) {
	m.mu.Lock()
	token := DeveloperToken{Token: "mock-developer-token-123"}
	m.devTokens = append(m.devTokens, token)
	m.mu.Unlock()
	writeJSON(w, map[string]string{"developerToken": token.Token})
}

func (m *MockHarborServer) handleListDeveloperTokens(w http.ResponseWriter) {
	m.mu.Lock()
	tokens := append([]DeveloperToken(nil), m.devTokens...)
	m.mu.Unlock()
	writeJSON(w, map[string]any{"developerTokens": tokens})
}

func (m *MockHarborServer) handleSignedURL(w http.ResponseWriter, r *http.Request, bucket string) {
	var payload struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil || payload.FileName == "" {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}
	writeJSON(w, map[string]string{
		"signedUrl": m.server.URL + "/blob/" + bucket + "/" + payload.FileName,
	})
}

func (m *MockHarborServer) handleFinalized(w http.ResponseWriter, r *http.Request) {
	var payload struct {
		FileName string `json:"fileName"`
	}
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	m.mu.Lock()
	m.pollCounts[payload.FileName]++
	_, seeded := m.blobs["results/"+payload.FileName]
	ready := seeded && m.pollCounts[payload.FileName] >= m.pollsUntilReady
	m.mu.Unlock()

	writeJSON(w, map[string]bool{"exists": ready})
}

func (m *MockHarborServer) handleBlob(w http.ResponseWriter, r *http.Request, key string) {
	switch r.Method {
	case http.MethodPut:
		data, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "bad body", http.StatusBadRequest)
			return
		}
		m.mu.Lock()
		m.blobs[key] = data
		m.mu.Unlock()
		w.WriteHeader(http.StatusOK)
	case http.MethodGet:
		m.mu.Lock()
		data, ok := m.blobs[key]
		m.mu.Unlock()
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	default:
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
	}
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(v)
}
