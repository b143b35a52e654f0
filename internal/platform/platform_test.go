package platform

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidatePathWithinDir(t *testing.T) {
	tmpDir, err := os.MkdirTemp("", "harbor-test-*")
	if err != nil {
		t.Fatalf("Failed to create temp dir: %v", err)
	}
	defer os.RemoveAll(tmpDir)

	tests := []struct {
		name         string
		relativePath string
		wantErr      bool
		errContains  string
	}{
		{
			name:         "valid simple filename",
			relativePath: "recording.wav",
			wantErr:      false,
		},
		{
			name:         "valid json companion",
			relativePath: "recording.json",
			wantErr:      false,
		},
		{
			name:         "path traversal with ..",
			relativePath: "../../../etc/passwd",
			wantErr:      true,
			errContains:  "path traversal detected",
		},
		{
			name:         "path traversal in middle",
			relativePath: "results/../../../etc/passwd",
			wantErr:      true,
			errContains:  "path traversal detected",
		},
		{
			name:         "absolute-looking path stays within base",
			relativePath: "/etc/passwd",
			wantErr:      false, // filepath.Join treats this as relative on Unix
		},
		{
			name:         "safe .. that stays inside",
			relativePath: "results/../recording.wav",
			wantErr:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ValidatePathWithinDir(tmpDir, tt.relativePath)
			if tt.wantErr {
				if err == nil {
					t.Fatalf("expected error, got path %q", got)
				}
				if tt.errContains != "" && !strings.Contains(err.Error(), tt.errContains) {
					t.Errorf("error %q does not contain %q", err.Error(), tt.errContains)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !strings.HasPrefix(got, tmpDir) {
				t.Errorf("validated path %q is outside base %q", got, tmpDir)
			}
		})
	}
}

func TestConfigDirIsAbsolute(t *testing.T) {
	dir := ConfigDir()
	if !filepath.IsAbs(dir) {
		t.Errorf("ConfigDir returned non-absolute path %q", dir)
	}
}
