package harbor

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"github.com/nijta-api/harbor-cli/internal/inputs"
	"github.com/nijta-api/harbor-cli/internal/jobfile"
)

// maxTransferWorkers bounds how many files are moved concurrently.
const maxTransferWorkers = 5

// transferClient is used for signed-URL PUT/GET transfers. Unlike API
// calls, transfers of large audio files get no fixed timeout; cancellation
// comes from the context.
var transferClient = &http.Client{}

// UploadURL requests a signed URL for uploading fileName to the job.
func (c *Client) UploadURL(ctx context.Context, jobID, fileName, fileType string) (string, error) {
	payload := map[string]string{"fileName": fileName, "fileType": fileType}
	var data struct {
		SignedURL string `json:"signedUrl"`
	}
	if err := c.doJSON(ctx, http.MethodPost, "/api/jobs/"+jobID+"/files/upload-url", payload, &data); err != nil {
		return "", err
	}
	if data.SignedURL == "" {
		return "", fmt.Errorf("server returned an empty signed URL for %s", fileName)
	}
	return data.SignedURL, nil
}

// UploadFile uploads a single local file through a signed URL and returns
// the file name the server stored it under.
func (c *Client) UploadFile(ctx context.Context, jobID, path string) (string, error) {
	fileName := filepath.Base(path)
	mimeType := inputs.MIMEType(fileName)

	signedURL, err := c.UploadURL(ctx, jobID, fileName, mimeType)
	if err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("could not open %s: %w", path, err)
	}
	defer f.Close()

	info, err := f.Stat()
	if err != nil {
		return "", fmt.Errorf("could not stat %s: %w", path, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, signedURL, f)
	if err != nil {
		return "", fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", mimeType)
	req.ContentLength = info.Size()

	resp, err := transferClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("upload of %s failed: %w", fileName, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("upload of %s rejected with status %s", fileName, resp.Status)
	}
	return fileName, nil
}

// UploadResult reports the outcome of one file in a batch upload.
type UploadResult struct {
	Path     string
	FileName string
	Err      error
}

// SubmitFiles uploads the given local files concurrently and returns the
// names of the files that made it to the server, sorted, along with the
// per-file outcomes. A failed file never fails the batch. The progress
// callback, when non-nil, is invoked once per completed file from worker
// goroutines.
func (c *Client) SubmitFiles(ctx context.Context, jobID string, paths []string, onProgress func(UploadResult)) ([]string, []UploadResult) {
	jobs := make(chan string)
	results := make([]UploadResult, 0, len(paths))

	var mu sync.Mutex
	var wg sync.WaitGroup

	workers := maxTransferWorkers
	if len(paths) < workers {
		workers = len(paths)
	}
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for path := range jobs {
				name, err := c.UploadFile(ctx, jobID, path)
				res := UploadResult{Path: path, FileName: name, Err: err}
				mu.Lock()
				results = append(results, res)
				mu.Unlock()
				if onProgress != nil {
					onProgress(res)
				}
			}
		}()
	}

	for _, path := range paths {
		jobs <- path
	}
	close(jobs)
	wg.Wait()

	var uploaded []string
	for _, res := range results {
		if res.Err == nil {
			uploaded = append(uploaded, res.FileName)
		}
	}
	sort.Strings(uploaded)
	return uploaded, results
}

// SubmitJob writes the job descriptor to dir as {job_id}.yaml, uploads it,
// and returns the local path of the descriptor. This is the final step of
// a submission: once the descriptor lands, the server starts processing.
func (c *Client) SubmitJob(ctx context.Context, jobID, dir string, params jobfile.Params) (string, error) {
	path, err := jobfile.Write(dir, jobID, params)
	if err != nil {
		return "", err
	}
	if _, err := c.UploadFile(ctx, jobID, path); err != nil {
		return "", fmt.Errorf("could not upload job descriptor: %w", err)
	}
	return path, nil
}
