// Package update checks GitHub releases for a newer harbor binary and
// installs it in place.
package update

import (
	"archive/tar"
	"compress/gzip"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-version"
)

const (
	// GitHubRepo is the repository harbor releases are published to.
	GitHubRepo = "nijta-api/harbor-cli"

	defaultAPIBase      = "https://api.github.com"
	defaultDownloadBase = "https://github.com"

	binaryName = "harbor"
)

// Release represents a GitHub release.
type Release struct {
	TagName    string  `json:"tag_name"`
	Name       string  `json:"name"`
	Draft      bool    `json:"draft"`
	Prerelease bool    `json:"prerelease"`
	Assets     []Asset `json:"assets"`
	HTMLURL    string  `json:"html_url"`
}

// Asset represents a release asset.
type Asset struct {
	Name               string `json:"name"`
	BrowserDownloadURL string `json:"browser_download_url"`
	Size               int64  `json:"size"`
}

// Client handles update operations.
type Client struct {
	CurrentVersion string

	apiBase      string
	downloadBase string
	httpClient   *http.Client
}

// NewClient creates a new update client.
func NewClient(currentVersion string) *Client {
	return &Client{
		CurrentVersion: currentVersion,
		apiBase:        defaultAPIBase,
		downloadBase:   defaultDownloadBase,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WithBaseURLs overrides the GitHub endpoints, used in tests.
func (c *Client) WithBaseURLs(apiBase, downloadBase string) *Client {
	c.apiBase = strings.TrimRight(apiBase, "/")
	c.downloadBase = strings.TrimRight(downloadBase, "/")
	return c
}

// CheckForUpdate checks if a newer version is available.
// Returns nil if already on the latest version.
func (c *Client) CheckForUpdate() (*Release, error) {
	release, err := c.fetchLatestRelease()
	if err != nil {
		return nil, err
	}

	hasUpdate, err := c.isNewerVersion(release.TagName)
	if err != nil {
		return nil, err
	}
	if !hasUpdate {
		return nil, nil
	}
	return release, nil
}

// DownloadAndVerify downloads the release archive, verifies its sha256
// against checksums.txt, and extracts the binary to destPath.
func (c *Client) DownloadAndVerify(release *Release, destPath string) error {
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return fmt.Errorf("failed to create update directory: %w", err)
	}

	archivePath := destPath + ".archive"
	if err := c.downloadArchive(release, archivePath); err != nil {
		return err
	}
	defer os.Remove(archivePath)

	if err := c.verifyArchiveChecksum(archivePath, release); err != nil {
		return err
	}

	if err := extractTarGz(archivePath, destPath); err != nil {
		return fmt.Errorf("failed to extract binary: %w", err)
	}

	if runtime.GOOS != "windows" {
		if err := os.Chmod(destPath, 0755); err != nil {
			return fmt.Errorf("failed to set permissions: %w", err)
		}
	}
	return nil
}

func (c *Client) downloadArchive(release *Release, archivePath string) error {
	resp, err := c.httpClient.Get(c.downloadURL(release))
	if err != nil {
		return fmt.Errorf("failed to download: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("download failed with status: %s", resp.Status)
	}

	outFile, err := os.Create(archivePath)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	_, err = io.Copy(outFile, resp.Body)
	outFile.Close()
	if err != nil {
		os.Remove(archivePath)
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

func (c *Client) verifyArchiveChecksum(archivePath string, release *Release) error {
	resp, err := c.httpClient.Get(c.checksumURL(release))
	if err != nil {
		return fmt.Errorf("failed to fetch checksums: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("checksum fetch failed with status: %s", resp.Status)
	}

	checksumData, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read checksums: %w", err)
	}

	archiveName := c.archiveName(release)
	expected := ""
	for _, line := range strings.Split(string(checksumData), "\n") {
		if strings.Contains(line, archiveName) {
			parts := strings.Fields(line)
			if len(parts) >= 1 {
				expected = parts[0]
			}
			break
		}
	}
	if expected == "" {
		return fmt.Errorf("checksum not found for %s", archiveName)
	}

	actual, err := sha256File(archivePath)
	if err != nil {
		return fmt.Errorf("failed to calculate checksum: %w", err)
	}
	if actual != expected {
		return fmt.Errorf("checksum mismatch: expected %s, got %s", expected, actual)
	}
	return nil
}

// Apply swaps the running binary for the downloaded one, keeping a backup.
func Apply(pendingPath string) error {
	execPath, err := os.Executable()
	if err != nil {
		return fmt.Errorf("could not locate current binary: %w", err)
	}
	execPath, err = filepath.EvalSymlinks(execPath)
	if err != nil {
		return fmt.Errorf("could not resolve current binary: %w", err)
	}

	backupPath := PreviousBinaryPath()
	if err := os.MkdirAll(filepath.Dir(backupPath), 0755); err != nil {
		return fmt.Errorf("could not create update directory: %w", err)
	}
	// os.Rename keeps the running process alive on Unix; the old inode
	// stays valid until the process exits.
	if err := os.Rename(execPath, backupPath); err != nil {
		return fmt.Errorf("could not back up current binary: %w", err)
	}
	if err := os.Rename(pendingPath, execPath); err != nil {
		// Try to restore the backup before giving up.
		os.Rename(backupPath, execPath)
		return fmt.Errorf("could not install new binary: %w", err)
	}
	return nil
}

func (c *Client) fetchLatestRelease() (*Release, error) {
	url := fmt.Sprintf("%s/repos/%s/releases/latest", c.apiBase, GitHubRepo)

	req, err := http.NewRequest("GET", url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/vnd.github.v3+json")
	req.Header.Set("User-Agent", "harbor-cli")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GitHub API returned status: %s", resp.Status)
	}

	var release Release
	if err := json.NewDecoder(resp.Body).Decode(&release); err != nil {
		return nil, err
	}
	return &release, nil
}

func (c *Client) isNewerVersion(newVersion string) (bool, error) {
	currentStr := strings.TrimPrefix(c.CurrentVersion, "v")
	newStr := strings.TrimPrefix(newVersion, "v")

	// A dev build always updates.
	if currentStr == "dev" || currentStr == "" {
		return true, nil
	}

	current, err := version.NewVersion(currentStr)
	if err != nil {
		return false, fmt.Errorf("invalid current version %s: %w", c.CurrentVersion, err)
	}
	latest, err := version.NewVersion(newStr)
	if err != nil {
		return false, fmt.Errorf("invalid new version %s: %w", newVersion, err)
	}
	return latest.GreaterThan(current), nil
}

func (c *Client) downloadURL(release *Release) string {
	return fmt.Sprintf("%s/%s/releases/download/%s/%s",
		c.downloadBase, GitHubRepo, release.TagName, c.archiveName(release))
}

func (c *Client) checksumURL(release *Release) string {
	return fmt.Sprintf("%s/%s/releases/download/%s/checksums.txt",
		c.downloadBase, GitHubRepo, release.TagName)
}

func (c *Client) archiveName(release *Release) string {
	return fmt.Sprintf("%s_%s_%s_%s.tar.gz", binaryName, release.TagName, runtime.GOOS, runtime.GOARCH)
}

func extractTarGz(archivePath, destPath string) error {
	file, err := os.Open(archivePath)
	if err != nil {
		return err
	}
	defer file.Close()

	gzr, err := gzip.NewReader(file)
	if err != nil {
		return err
	}
	defer gzr.Close()

	tr := tar.NewReader(gzr)
	for {
		header, err := tr.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			return err
		}
		if header.Typeflag == tar.TypeReg && filepath.Base(header.Name) == binaryName {
			outFile, err := os.Create(destPath)
			if err != nil {
				return err
			}
			if _, err := io.Copy(outFile, tr); err != nil {
				outFile.Close()
				return err
			}
			return outFile.Close()
		}
	}
	return fmt.Errorf("%s binary not found in archive", binaryName)
}

func sha256File(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	h := sha256.New()
	if _, err := io.Copy(h, f); err != nil {
		return "", err
	}
	return hex.EncodeToString(h.Sum(nil)), nil
}
