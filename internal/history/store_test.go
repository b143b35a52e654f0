package history

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/nijta-api/harbor-cli/internal/harbor"
)

func tempDBPath(t *testing.T) string {
	t.Helper()
	return filepath.Join(t.TempDir(), "history_test.db")
}

func TestOpenStoreCreatesFile(t *testing.T) {
	path := tempDBPath(t)
	store, err := OpenStore(path)
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Fatal("database file should exist after OpenStore")
	}
}

func TestRecordSubmissionAndList(t *testing.T) {
	store, err := OpenStore(tempDBPath(t))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	rec := JobRecord{
		JobID:       "job-001",
		Agents:      []string{"health-generic", "clinical"},
		Prefix:      "batch-7",
		Status:      harbor.StatusSubmitted,
		FileCount:   3,
		SubmittedAt: time.Now().Add(-time.Minute),
	}
	if err := store.RecordSubmission(rec); err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}
	if err := store.RecordSubmission(JobRecord{
		JobID:       "job-002",
		Agents:      []string{"health-generic"},
		Status:      harbor.StatusPending,
		SubmittedAt: time.Now(),
	}); err != nil {
		t.Fatalf("RecordSubmission second: %v", err)
	}

	records, err := store.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("expected 2 jobs, got %d", len(records))
	}
	// Newest first
	if records[0].JobID != "job-002" {
		t.Errorf("expected job-002 first, got %s", records[0].JobID)
	}
	if len(records[1].Agents) != 2 || records[1].Agents[1] != "clinical" {
		t.Errorf("agents round-trip mismatch: %v", records[1].Agents)
	}
}

func TestRecordSubmissionIsIdempotent(t *testing.T) {
	store, err := OpenStore(tempDBPath(t))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	rec := JobRecord{JobID: "job-001", Status: harbor.StatusPending}
	if err := store.RecordSubmission(rec); err != nil {
		t.Fatalf("first RecordSubmission: %v", err)
	}
	rec.Status = harbor.StatusSubmitted
	rec.FileCount = 5
	if err := store.RecordSubmission(rec); err != nil {
		t.Fatalf("second RecordSubmission: %v", err)
	}

	records, err := store.List(10)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected 1 job after re-record, got %d", len(records))
	}
	if records[0].Status != harbor.StatusSubmitted || records[0].FileCount != 5 {
		t.Errorf("re-record did not update: %+v", records[0])
	}
}

func TestFilesLifecycle(t *testing.T) {
	store, err := OpenStore(tempDBPath(t))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	if err := store.RecordSubmission(JobRecord{JobID: "job-001", Status: harbor.StatusSubmitted}); err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}
	if err := store.RecordFiles("job-001", []string{"interview.wav", "call-01.mp3"}); err != nil {
		t.Fatalf("RecordFiles: %v", err)
	}
	// Duplicate insert must be a no-op.
	if err := store.RecordFiles("job-001", []string{"interview.wav"}); err != nil {
		t.Fatalf("duplicate RecordFiles: %v", err)
	}

	if err := store.SyncContent("job-001", []harbor.AudioRecord{
		{JobID: "job-001", FileName: "interview.wav", AudioDuration: 42.5},
	}); err != nil {
		t.Fatalf("SyncContent: %v", err)
	}
	if err := store.MarkDownloaded("job-001", "interview.wav", "/tmp/results/interview.wav"); err != nil {
		t.Fatalf("MarkDownloaded: %v", err)
	}

	files, err := store.Files("job-001")
	if err != nil {
		t.Fatalf("Files: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files, got %d", len(files))
	}
	// Sorted by name: call-01.mp3 first.
	if files[1].FileName != "interview.wav" {
		t.Fatalf("unexpected order: %+v", files)
	}
	if files[1].AudioDuration != 42.5 {
		t.Errorf("audio duration not synced: %+v", files[1])
	}
	if files[1].LocalResult != "/tmp/results/interview.wav" {
		t.Errorf("local result not recorded: %+v", files[1])
	}
}

func TestUpdateStatus(t *testing.T) {
	store, err := OpenStore(tempDBPath(t))
	if err != nil {
		t.Fatalf("OpenStore: %v", err)
	}
	defer store.Close()

	if err := store.RecordSubmission(JobRecord{JobID: "job-001", Status: harbor.StatusPending}); err != nil {
		t.Fatalf("RecordSubmission: %v", err)
	}
	if err := store.UpdateStatus("job-001", harbor.StatusComplete); err != nil {
		t.Fatalf("UpdateStatus: %v", err)
	}

	records, err := store.List(1)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if records[0].Status != harbor.StatusComplete {
		t.Errorf("expected complete, got %s", records[0].Status)
	}
}
