package harbor

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestCreateJob(t *testing.T) {
	mock := StartMockHarborServer(1)
	defer mock.Close()

	client := NewClient(mock.URL(), WithToken("usage-token"))

	jobID, err := client.CreateJob(context.Background())
	if err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	if jobID == "" {
		t.Fatal("CreateJob returned an empty job id")
	}
	if got := mock.LastAuthorization(); got != "usage-token" {
		t.Errorf("expected Authorization 'usage-token', got %q", got)
	}
}

func TestCreateJobWithoutToken(t *testing.T) {
	mock := StartMockHarborServer(1)
	defer mock.Close()

	client := NewClient(mock.URL())
	if _, err := client.CreateJob(context.Background()); err != nil {
		t.Fatalf("CreateJob failed: %v", err)
	}
	// No token configured means no Authorization header at all.
	if got := mock.LastAuthorization(); got != "" {
		t.Errorf("expected no Authorization header, got %q", got)
	}
}

func TestListJobs(t *testing.T) {
	mock := StartMockHarborServer(1)
	defer mock.Close()

	mock.SeedJob(Job{JobID: "job-a", Status: StatusComplete})
	mock.SeedJob(Job{JobID: "job-b", Status: StatusProcessing})

	client := NewClient(mock.URL(), WithToken("usage-token"))
	jobs, err := client.ListJobs(context.Background())
	if err != nil {
		t.Fatalf("ListJobs failed: %v", err)
	}
	if len(jobs) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(jobs))
	}
	if jobs[0].JobID != "job-a" || jobs[0].Status != StatusComplete {
		t.Errorf("unexpected first job: %+v", jobs[0])
	}
}

func TestJobContent(t *testing.T) {
	mock := StartMockHarborServer(1)
	defer mock.Close()

	mock.SeedContent("job-a", []AudioRecord{
		{ID: "1", JobID: "job-a", FileName: "interview.wav", AudioDuration: 42.5},
	})

	client := NewClient(mock.URL(), WithToken("usage-token"))
	records, err := client.JobContent(context.Background(), "job-a")
	if err != nil {
		t.Fatalf("JobContent failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(records))
	}
	if records[0].FileName != "interview.wav" || records[0].AudioDuration != 42.5 {
		t.Errorf("unexpected record: %+v", records[0])
	}
}

func TestBaseURLTrailingSlashStripped(t *testing.T) {
	client := NewClient("https://api.example.com/")
	if client.BaseURL() != "https://api.example.com" {
		t.Errorf("trailing slash not stripped: %q", client.BaseURL())
	}
}

func TestAPIErrorCarriesServerMessage(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusForbidden)
		w.Write([]byte(`{"error": "invalid token"}`))
	}))
	defer server.Close()

	client := NewClient(server.URL, WithToken("bad-token"))
	_, err := client.CreateJob(context.Background())
	if err == nil {
		t.Fatal("expected error from 403 response")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatalf("expected *APIError, got %T: %v", err, err)
	}
	if apiErr.StatusCode != http.StatusForbidden {
		t.Errorf("expected status 403, got %d", apiErr.StatusCode)
	}
	if apiErr.Message != "invalid token" {
		t.Errorf("expected server message, got %q", apiErr.Message)
	}
}

func TestCreateDeveloperToken(t *testing.T) {
	mock := StartMockHarborServer(1)
	defer mock.Close()

	client := NewClient(mock.URL())
	token, err := client.CreateDeveloperToken(context.Background(), "admin-secret")
	if err != nil {
		t.Fatalf("CreateDeveloperToken failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected a developer token")
	}
	if got := mock.LastAuthorization(); got != "Bearer admin-secret" {
		t.Errorf("expected Bearer auth, got %q", got)
	}

	tokens, err := client.ListDeveloperTokens(context.Background(), "admin-secret")
	if err != nil {
		t.Fatalf("ListDeveloperTokens failed: %v", err)
	}
	if len(tokens) != 1 || tokens[0].Token != token {
		t.Errorf("unexpected token list: %+v", tokens)
	}
}

func TestWithHTTPClientTimeout(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client := NewClient(server.URL, WithHTTPClient(&http.Client{Timeout: 50 * time.Millisecond}))
	if _, err := client.CreateJob(context.Background()); err == nil {
		t.Fatal("expected timeout from the replaced HTTP client")
	}
}

func TestWithRateLimitThrottlesRequests(t *testing.T) {
	mock := StartMockHarborServer(1)
	defer mock.Close()

	// 20 rps with burst 1: the second and third request each wait ~50ms.
	client := NewClient(mock.URL(), WithRateLimit(20, 1))

	start := time.Now()
	for i := 0; i < 3; i++ {
		if _, err := client.CreateJob(context.Background()); err != nil {
			t.Fatalf("CreateJob failed: %v", err)
		}
	}
	if elapsed := time.Since(start); elapsed < 100*time.Millisecond {
		t.Errorf("expected rate limiter to throttle, 3 requests took %s", elapsed)
	}
}

func TestRequestHonorsContext(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer server.Close()

	client := NewClient(server.URL)
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	if _, err := client.CreateJob(ctx); err == nil {
		t.Fatal("expected context deadline error")
	}
}
