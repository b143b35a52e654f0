package inputs

import (
	"os"
	"path/filepath"
	"testing"
)

func TestScan(t *testing.T) {
	tmpDir := t.TempDir()

	names := []string{
		"interview.wav",
		"interview.json", // unsupported, must be skipped
		"call-01.mp3",
		"call-02.FLAC", // extension matching is case-insensitive
		"notes.txt",    // unsupported
		"job.yaml",
	}
	for _, name := range names {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}
	if err := os.Mkdir(filepath.Join(tmpDir, "nested.wav"), 0755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}

	files, err := Scan(tmpDir, "")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(files) != 4 {
		t.Fatalf("expected 4 files, got %d: %v", len(files), files)
	}
	// Sorted by name
	if filepath.Base(files[0]) != "call-01.mp3" {
		t.Errorf("expected call-01.mp3 first, got %s", files[0])
	}
}

func TestScanWithPrefix(t *testing.T) {
	tmpDir := t.TempDir()
	for _, name := range []string{"call-01.mp3", "call-02.mp3", "interview.wav"} {
		if err := os.WriteFile(filepath.Join(tmpDir, name), []byte("x"), 0644); err != nil {
			t.Fatalf("write %s: %v", name, err)
		}
	}

	files, err := Scan(tmpDir, "call-")
	if err != nil {
		t.Fatalf("Scan failed: %v", err)
	}
	if len(files) != 2 {
		t.Fatalf("expected 2 files with prefix, got %d: %v", len(files), files)
	}
}

func TestScanMissingDir(t *testing.T) {
	if _, err := Scan("/nonexistent/harbor/inputs", ""); err == nil {
		t.Fatal("expected error for missing directory")
	}
}

func TestMIMEType(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"interview.wav", "audio/wav"},
		{"call.MP3", "audio/mpeg"},
		{"song.flac", "audio/flac"},
		{"voice.ogg", "audio/ogg"},
		{"memo.m4a", "audio/mp4"},
		{"job.yaml", "application/x-yaml"},
		{"blob.unknownext", "application/octet-stream"},
	}
	for _, tt := range tests {
		if got := MIMEType(tt.name); got != tt.want {
			t.Errorf("MIMEType(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestIsSupported(t *testing.T) {
	if !IsSupported("a.WAV") {
		t.Error("expected .WAV to be supported")
	}
	if IsSupported("a.pdf") {
		t.Error("expected .pdf to be unsupported")
	}
}
