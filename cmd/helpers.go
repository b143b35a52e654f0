// cmd/helpers.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/nijta-api/harbor-cli/internal/credentials"
	"github.com/nijta-api/harbor-cli/internal/harbor"
	"github.com/nijta-api/harbor-cli/internal/history"
	"github.com/nijta-api/harbor-cli/internal/platform"
	"github.com/nijta-api/harbor-cli/internal/ui"
)

// newClient builds a Harbor API client from the global flags, resolving
// the token through flag > environment > stored credentials.
func newClient() *harbor.Client {
	token := credentials.Resolve(tokenFlag, platform.CredentialsDir())
	if token == "" {
		Debug("no authorization token configured, requests go out unauthenticated")
	}
	opts := []harbor.ClientOption{
		harbor.WithToken(token),
		harbor.WithLogger(Debug),
	}
	// A zero or negative limit would block every request; keep the
	// client default instead.
	if rateLimit > 0 {
		burst := int(rateLimit)
		if burst < 1 {
			burst = 1
		}
		opts = append(opts, harbor.WithRateLimit(rateLimit, burst))
	}
	return harbor.NewClient(baseURL, opts...)
}

// openHistory opens the local job history store. History is best-effort:
// on failure the workflow continues without it.
func openHistory() *history.Store {
	configDir := platform.ConfigDir()
	if err := os.MkdirAll(configDir, 0755); err != nil {
		Debug("could not create config dir for history: %v", err)
		return nil
	}
	store, err := history.OpenStore(filepath.Join(configDir, "history.db"))
	if err != nil {
		Debug("could not open history store: %v", err)
		return nil
	}
	return store
}

// runUploadBatch uploads paths concurrently behind a progress bar and
// returns the uploaded file names plus the per-file outcomes.
func runUploadBatch(ctx context.Context, client *harbor.Client, jobID string, paths []string) ([]string, []harbor.UploadResult) {
	if len(paths) == 0 {
		return nil, nil
	}

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := ui.NewTransferProgram(ui.NewTransferModel("Submitting files", len(paths)))

	type outcome struct {
		uploaded []string
		results  []harbor.UploadResult
	}
	outc := make(chan outcome, 1)
	go func() {
		uploaded, results := client.SubmitFiles(batchCtx, jobID, paths, func(res harbor.UploadResult) {
			program.Send(ui.TransferResultMsg{Name: filepath.Base(res.Path), Err: res.Err})
		})
		outc <- outcome{uploaded, results}
	}()

	final, err := program.Run()
	if err != nil {
		Debug("progress UI error: %v", err)
	}
	// The UI runs in raw mode, so ctrl+c never reaches the signal
	// handler; propagate the abort to the workers ourselves.
	if m, ok := final.(ui.TransferModel); ok && m.Canceled() {
		cancel()
	}
	out := <-outc
	return out.uploaded, out.results
}

// runDownloadBatch downloads result pairs behind a progress bar.
func runDownloadBatch(ctx context.Context, client *harbor.Client, jobID string, fileNames []string, destDir string, timeout, interval time.Duration) map[string]harbor.ResultPair {
	if len(fileNames) == 0 {
		return nil
	}

	batchCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	program := ui.NewTransferProgram(ui.NewTransferModel("Downloading results", len(fileNames)))

	outc := make(chan map[string]harbor.ResultPair, 1)
	go func() {
		outc <- client.DownloadResults(batchCtx, jobID, fileNames, destDir, timeout, interval,
			func(name string, pair harbor.ResultPair) {
				program.Send(ui.TransferResultMsg{Name: name, Err: pair.Err})
			})
	}()

	final, err := program.Run()
	if err != nil {
		Debug("progress UI error: %v", err)
	}
	if m, ok := final.(ui.TransferModel); ok && m.Canceled() {
		cancel()
	}
	return <-outc
}

// exitErr prints an error to stderr and exits.
func exitErr(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, "❌ "+format+"\n", args...)
	os.Exit(1)
}
