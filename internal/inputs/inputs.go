// Package inputs enumerates local files eligible for Voice Harbor submission.
package inputs

import (
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// supportedFormats is the set of file extensions the service accepts.
var supportedFormats = map[string]bool{
	".wav":  true,
	".mp3":  true,
	".flac": true,
	".ogg":  true,
	".m4a":  true,
	".yaml": true,
}

// audioMIMETypes covers audio extensions the Go mime table does not
// resolve consistently across platforms.
var audioMIMETypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".flac": "audio/flac",
	".ogg":  "audio/ogg",
	".m4a":  "audio/mp4",
	".yaml": "application/x-yaml",
}

// IsSupported reports whether the file's extension is accepted by the service.
func IsSupported(name string) bool {
	return supportedFormats[strings.ToLower(filepath.Ext(name))]
}

// MIMEType guesses the MIME type for a file name, falling back to
// application/octet-stream when nothing matches.
func MIMEType(name string) string {
	ext := strings.ToLower(filepath.Ext(name))
	if mt, ok := audioMIMETypes[ext]; ok {
		return mt
	}
	if mt := mime.TypeByExtension(ext); mt != "" {
		return mt
	}
	return "application/octet-stream"
}

// Scan returns the supported files in dir, sorted by name. The scan is
// non-recursive and skips directories. When prefix is non-empty, only
// files whose base name starts with it are included.
func Scan(dir, prefix string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("could not read inputs directory %s: %w", dir, err)
	}

	var files []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		if !IsSupported(name) {
			continue
		}
		if prefix != "" && !strings.HasPrefix(name, prefix) {
			continue
		}
		files = append(files, filepath.Join(dir, name))
	}
	sort.Strings(files)
	return files, nil
}
