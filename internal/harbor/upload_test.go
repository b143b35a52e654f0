package harbor

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/nijta-api/harbor-cli/internal/jobfile"
)

func writeTempAudio(t *testing.T, dir, name string, content []byte) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
	return path
}

func TestUploadFile(t *testing.T) {
	mock := StartMockHarborServer(1)
	defer mock.Close()

	tmpDir := t.TempDir()
	content := []byte("RIFF....WAVEfmt")
	path := writeTempAudio(t, tmpDir, "interview.wav", content)

	client := NewClient(mock.URL(), WithToken("usage-token"))
	name, err := client.UploadFile(context.Background(), "job-a", path)
	if err != nil {
		t.Fatalf("UploadFile failed: %v", err)
	}
	if name != "interview.wav" {
		t.Errorf("expected interview.wav, got %q", name)
	}

	stored, ok := mock.UploadedBlob("interview.wav")
	if !ok {
		t.Fatal("blob was not stored on the server")
	}
	if !bytes.Equal(stored, content) {
		t.Errorf("stored blob does not match upload")
	}
}

func TestSubmitFilesPartialFailure(t *testing.T) {
	mock := StartMockHarborServer(1)
	defer mock.Close()

	tmpDir := t.TempDir()
	paths := []string{
		writeTempAudio(t, tmpDir, "call-01.mp3", []byte("a")),
		writeTempAudio(t, tmpDir, "call-02.mp3", []byte("b")),
		filepath.Join(tmpDir, "missing.wav"), // never written, upload must fail
	}

	client := NewClient(mock.URL(), WithToken("usage-token"))

	var mu sync.Mutex
	var progressed int
	uploaded, results := client.SubmitFiles(context.Background(), "job-a", paths, func(res UploadResult) {
		mu.Lock()
		progressed++
		mu.Unlock()
	})

	if len(uploaded) != 2 {
		t.Fatalf("expected 2 uploaded files, got %v", uploaded)
	}
	// Uploaded names come back sorted.
	if uploaded[0] != "call-01.mp3" || uploaded[1] != "call-02.mp3" {
		t.Errorf("unexpected uploaded names: %v", uploaded)
	}
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	var failures int
	for _, res := range results {
		if res.Err != nil {
			failures++
		}
	}
	if failures != 1 {
		t.Errorf("expected exactly 1 failure, got %d", failures)
	}
	if progressed != 3 {
		t.Errorf("expected 3 progress callbacks, got %d", progressed)
	}
}

func TestSubmitFilesEmpty(t *testing.T) {
	mock := StartMockHarborServer(1)
	defer mock.Close()

	client := NewClient(mock.URL())
	uploaded, results := client.SubmitFiles(context.Background(), "job-a", nil, nil)
	if len(uploaded) != 0 || len(results) != 0 {
		t.Errorf("expected empty outcome, got %v / %v", uploaded, results)
	}
}

func TestSubmitJob(t *testing.T) {
	mock := StartMockHarborServer(1)
	defer mock.Close()

	tmpDir := t.TempDir()
	client := NewClient(mock.URL(), WithToken("usage-token"))

	params := jobfile.Params{
		Agents: jobfile.DefaultAgents,
		Files:  []string{"interview.wav"},
	}
	path, err := client.SubmitJob(context.Background(), "job-a", tmpDir, params)
	if err != nil {
		t.Fatalf("SubmitJob failed: %v", err)
	}
	if filepath.Base(path) != "job-a.yaml" {
		t.Errorf("expected job-a.yaml, got %s", path)
	}

	// The descriptor must have been uploaded under its file name.
	blob, ok := mock.UploadedBlob("job-a.yaml")
	if !ok {
		t.Fatal("job descriptor was not uploaded")
	}
	if !bytes.Contains(blob, []byte("interview.wav")) {
		t.Errorf("descriptor does not list the uploaded file:\n%s", blob)
	}
}
