package platform

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
)

// OS returns the current operating system (linux, darwin or windows)
func OS() string {
	return runtime.GOOS
}

// IsLinux returns true if running on Linux
func IsLinux() bool {
	return runtime.GOOS == "linux"
}

// IsDarwin returns true if running on macOS
func IsDarwin() bool {
	return runtime.GOOS == "darwin"
}

// IsWindows returns true if running on Windows
func IsWindows() bool {
	return runtime.GOOS == "windows"
}

// IsRoot checks if the current user has root privileges
func IsRoot() bool {
	if IsWindows() {
		return false
	}
	return os.Geteuid() == 0
}

// ConfigDir returns the appropriate config directory for the OS.
// Uses system-wide paths when running as root, user-local paths otherwise.
func ConfigDir() string {
	// If not running as root, use user-local config
	if !IsRoot() {
		home, err := os.UserHomeDir()
		if err == nil {
			return filepath.Join(home, ".harbor-cli")
		}
	}

	// System-wide paths for root
	if IsLinux() {
		return "/etc/harbor"
	}
	if IsDarwin() {
		// On macOS, use /usr/local/etc for consistency with Homebrew conventions
		return "/usr/local/etc/harbor"
	}
	// Windows: Use ProgramData for system-wide config
	return `C:\ProgramData\Harbor`
}

// CredentialsDir returns the directory where developer credentials are stored.
func CredentialsDir() string {
	return filepath.Join(ConfigDir(), "credentials")
}

// ValidatePathWithinDir validates that a relative path, when joined with baseDir,
// stays within the baseDir. This prevents path traversal where a malicious
// server-provided file name like "../../../etc/passwd" could escape the
// destination directory.
//
// Returns the validated absolute path if safe, or an error if path traversal is detected.
func ValidatePathWithinDir(baseDir, relativePath string) (string, error) {
	// Get absolute path of base directory
	absBaseDir, err := filepath.Abs(baseDir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve base directory: %w", err)
	}

	// Join and get absolute path of the target
	joinedPath := filepath.Join(absBaseDir, relativePath)
	absTargetPath, err := filepath.Abs(joinedPath)
	if err != nil {
		return "", fmt.Errorf("failed to resolve target path: %w", err)
	}

	// Ensure the resolved path is within the base directory
	// Add trailing separator to baseDir to prevent prefix matching issues
	// (e.g., /home/user matching /home/username)
	baseDirWithSep := absBaseDir + string(filepath.Separator)
	if !strings.HasPrefix(absTargetPath+string(filepath.Separator), baseDirWithSep) && absTargetPath != absBaseDir {
		return "", fmt.Errorf("path traversal detected: %q escapes base directory %q", relativePath, baseDir)
	}

	return absTargetPath, nil
}
