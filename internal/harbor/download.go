package harbor

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/nijta-api/harbor-cli/internal/platform"
)

// DownloadURL requests a signed URL for downloading fileName from the job.
func (c *Client) DownloadURL(ctx context.Context, jobID, fileName string) (string, error) {
	payload := map[string]string{"fileName": fileName}
	var data struct {
		SignedURL string `json:"signedUrl"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/jobs/"+jobID+"/files/download-url", payload, &data); err != nil {
		return "", err
	}
	if data.SignedURL == "" {
		return "", fmt.Errorf("server returned an empty signed URL for %s", fileName)
	}
	return data.SignedURL, nil
}

// Finalized reports whether the server has finished writing fileName for
// the job, i.e. whether the result is ready to download.
func (c *Client) Finalized(ctx context.Context, jobID, fileName string) (bool, error) {
	payload := map[string]string{"fileName": fileName}
	var data struct {
		Exists bool `json:"exists"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/jobs/"+jobID+"/files/finalized", payload, &data); err != nil {
		return false, err
	}
	return data.Exists, nil
}

// WaitForFile polls the finalized endpoint until the file is available or
// the timeout elapses. The first check happens immediately. Transient
// errors from the endpoint are logged and retried; only context
// cancellation or the deadline stop the loop.
func (c *Client) WaitForFile(ctx context.Context, jobID, fileName string, timeout, interval time.Duration) error {
	start := time.Now()
	for time.Since(start) < timeout {
		exists, err := c.Finalized(ctx, jobID, fileName)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			c.logf("error checking availability of %s: %v", fileName, err)
		} else if exists {
			return nil
		} else {
			c.logf("%s not ready yet", fileName)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
	return &ErrTimeout{FileName: fileName, Timeout: timeout}
}

// DownloadFile waits for fileName to become available, then downloads it
// into destDir and returns the local path. Server-provided names are
// validated so a hostile name cannot escape destDir.
func (c *Client) DownloadFile(ctx context.Context, jobID, fileName, destDir string, timeout, interval time.Duration) (string, error) {
	if err := c.WaitForFile(ctx, jobID, fileName, timeout, interval); err != nil {
		return "", err
	}

	signedURL, err := c.DownloadURL(ctx, jobID, fileName)
	if err != nil {
		return "", err
	}

	destPath, err := platform.ValidatePathWithinDir(destDir, fileName)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return "", fmt.Errorf("could not create destination directory: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, signedURL, nil)
	if err != nil {
		return "", fmt.Errorf("failed to create download request: %w", err)
	}
	resp, err := transferClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("download of %s failed: %w", fileName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("download of %s rejected with status %s", fileName, resp.Status)
	}

	out, err := os.Create(destPath)
	if err != nil {
		return "", fmt.Errorf("could not create %s: %w", destPath, err)
	}
	if _, err := io.Copy(out, resp.Body); err != nil {
		out.Close()
		os.Remove(destPath)
		return "", fmt.Errorf("could not write %s: %w", destPath, err)
	}
	if err := out.Close(); err != nil {
		return "", fmt.Errorf("could not close %s: %w", destPath, err)
	}
	return destPath, nil
}

// ResultPair holds the local paths of a processed audio file and its JSON
// companion.
type ResultPair struct {
	File string
	JSON string
	Err  error
}

// DownloadResults downloads the result pair (processed file plus
// {stem}.json) for every file name, concurrently. Failures are recorded
// per pair and never abort the batch. The returned map is keyed by the
// original file name; FileNames gives a deterministic iteration order.
func (c *Client) DownloadResults(ctx context.Context, jobID string, fileNames []string, destDir string, timeout, interval time.Duration, onProgress func(fileName string, pair ResultPair)) map[string]ResultPair {
	if err := os.MkdirAll(destDir, 0755); err != nil {
		// Every pair fails the same way; onProgress still fires for each
		// name so batch observers see the full count.
		pairErr := fmt.Errorf("could not create output directory %s: %w", destDir, err)
		failed := make(map[string]ResultPair, len(fileNames))
		for _, name := range fileNames {
			pair := ResultPair{Err: pairErr}
			failed[name] = pair
			if onProgress != nil {
				onProgress(name, pair)
			}
		}
		return failed
	}

	jobs := make(chan string)
	downloaded := make(map[string]ResultPair, len(fileNames))

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := maxTransferWorkers
	if len(fileNames) < workers {
		workers = len(fileNames)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for name := range jobs {
				pair := c.downloadPair(ctx, jobID, name, destDir, timeout, interval)
				mu.Lock()
				downloaded[name] = pair
				mu.Unlock()
				if onProgress != nil {
					onProgress(name, pair)
				}
			}
		}()
	}

	for _, name := range fileNames {
		jobs <- name
	}
	close(jobs)
	wg.Wait()

	return downloaded
}

// downloadPair fetches one result file and its JSON companion.
func (c *Client) downloadPair(ctx context.Context, jobID, fileName, destDir string, timeout, interval time.Duration) ResultPair {
	var pair ResultPair

	filePath, err := c.DownloadFile(ctx, jobID, fileName, destDir, timeout, interval)
	if err != nil {
		pair.Err = err
		return pair
	}
	pair.File = filePath

	stem := strings.TrimSuffix(fileName, filepath.Ext(fileName))
	jsonPath, err := c.DownloadFile(ctx, jobID, stem+".json", destDir, timeout, interval)
	if err != nil {
		pair.Err = err
		return pair
	}
	pair.JSON = jsonPath
	return pair
}

// FileNames returns the keys of a result map in sorted order.
func FileNames(results map[string]ResultPair) []string {
	names := make([]string, 0, len(results))
	for name := range results {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
