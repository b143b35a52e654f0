// cmd/submit.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nijta-api/harbor-cli/internal/harbor"
	"github.com/nijta-api/harbor-cli/internal/history"
	"github.com/nijta-api/harbor-cli/internal/inputs"
	"github.com/nijta-api/harbor-cli/internal/jobfile"
	"github.com/nijta-api/harbor-cli/internal/ui"
)

var (
	submitInputsDir string
	submitOutputDir string
	submitAgents    []string
	submitPrefix    string
	submitWait      bool
	submitTimeout   time.Duration
	submitInterval  time.Duration
)

// submitCmd represents the submit command
var submitCmd = &cobra.Command{
	Use:   "submit",
	Short: "Create a job and upload audio files for processing",
	Long: `Creates a new job on the Voice Harbor server, uploads every supported
file from the inputs directory through signed URLs, and finally uploads
the YAML job descriptor that tells the service which agents to run.

With --wait, the command then polls the server until the processed
results are available and downloads them to the output directory.`,
	Example: `  # Submit every supported file in ./inputs
  harbor submit --inputs-dir ./inputs

  # Submit and wait for the anonymized results
  harbor submit --inputs-dir ./inputs --wait --output-dir ./results

  # Pick agents and only submit files starting with "call-"
  harbor submit --inputs-dir ./inputs --agents health-generic --prefix call-`,
	Run: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		paths, err := inputs.Scan(submitInputsDir, submitPrefix)
		if err != nil {
			exitErr("Could not scan inputs: %v", err)
		}
		if len(paths) == 0 {
			exitErr("No supported files found in %s", submitInputsDir)
		}
		fmt.Printf("Found %d file(s) to upload.\n", len(paths))

		client := newClient()
		store := openHistory()
		if store != nil {
			defer store.Close()
		}

		spinner := ui.NewSpinner()
		spinner.Start("Creating job...")
		jobID, err := client.CreateJob(ctx)
		if err != nil {
			spinner.Fail("Could not create job")
			exitErr("%v", err)
		}
		spinner.Success(fmt.Sprintf("Job created: %s", color.CyanString(jobID)))

		if store != nil {
			recordHistory(store, jobID, harbor.StatusPending, len(paths))
		}

		uploaded, results := runUploadBatch(ctx, client, jobID, paths)
		for _, res := range results {
			if res.Err != nil {
				fmt.Fprintf(os.Stderr, "⚠️  Failed to upload %s: %v\n", res.Path, res.Err)
			}
		}
		if len(uploaded) == 0 {
			exitErr("No files were uploaded, aborting before job submission")
		}

		params := jobfile.Params{
			Agents: submitAgents,
			Files:  uploaded,
			Prefix: submitPrefix,
		}
		jobFile, err := client.SubmitJob(ctx, jobID, ".", params)
		if err != nil {
			exitErr("Could not submit job descriptor: %v", err)
		}
		fmt.Printf("%s Job descriptor submitted: %s\n", color.GreenString("✓"), jobFile)

		if store != nil {
			recordHistory(store, jobID, harbor.StatusSubmitted, len(uploaded))
			if err := store.RecordFiles(jobID, uploaded); err != nil {
				Debug("could not record files in history: %v", err)
			}
		}

		if !submitWait {
			fmt.Printf("\nFetch the results later with:\n  harbor results %s --job-yaml %s\n", jobID, jobFile)
			CheckForUpdateInBackground()
			return
		}

		if store != nil {
			if err := store.UpdateStatus(jobID, harbor.StatusProcessing); err != nil {
				Debug("could not update history status: %v", err)
			}
		}

		downloaded := runDownloadBatch(ctx, client, jobID, uploaded, submitOutputDir, submitTimeout, submitInterval)
		reportDownloads(store, jobID, downloaded)
		CheckForUpdateInBackground()
	},
}

// recordHistory writes a job snapshot into the local history store.
func recordHistory(store *history.Store, jobID string, status harbor.JobStatus, fileCount int) {
	err := store.RecordSubmission(history.JobRecord{
		JobID:       jobID,
		Agents:      submitAgents,
		Prefix:      submitPrefix,
		Status:      status,
		FileCount:   fileCount,
		SubmittedAt: time.Now(),
	})
	if err != nil {
		Debug("could not record job in history: %v", err)
	}
}

// reportDownloads prints the download summary and syncs the history store.
func reportDownloads(store *history.Store, jobID string, downloaded map[string]harbor.ResultPair) {
	var failed int
	for _, name := range harbor.FileNames(downloaded) {
		pair := downloaded[name]
		if pair.Err != nil {
			failed++
			fmt.Fprintf(os.Stderr, "⚠️  Failed to download results for %s: %v\n", name, pair.Err)
			continue
		}
		fmt.Printf("%s %s → %s (+ %s)\n", color.GreenString("✓"), name, pair.File, pair.JSON)
		if store != nil {
			if err := store.MarkDownloaded(jobID, name, pair.File); err != nil {
				Debug("could not mark download in history: %v", err)
			}
		}
	}

	if failed > 0 {
		exitErr("%d of %d result(s) could not be downloaded", failed, len(downloaded))
	}
	if store != nil {
		if err := store.UpdateStatus(jobID, harbor.StatusComplete); err != nil {
			Debug("could not update history status: %v", err)
		}
	}
	fmt.Printf("\n✅ All results downloaded.\n")
}

func init() {
	rootCmd.AddCommand(submitCmd)

	submitCmd.Flags().StringVar(&submitInputsDir, "inputs-dir", "", "Directory containing files to upload (required)")
	submitCmd.Flags().StringVar(&submitOutputDir, "output-dir", "./results", "Directory to save downloaded results")
	submitCmd.Flags().StringSliceVar(&submitAgents, "agents", jobfile.DefaultAgents, "Agents to run on the uploaded audio")
	submitCmd.Flags().StringVar(&submitPrefix, "prefix", "", "Only submit files whose name starts with this prefix")
	submitCmd.Flags().BoolVar(&submitWait, "wait", false, "Poll for results and download them once ready")
	submitCmd.Flags().DurationVar(&submitTimeout, "timeout", 10*time.Minute, "How long to wait for each result")
	submitCmd.Flags().DurationVar(&submitInterval, "interval", 10*time.Second, "Polling interval while waiting for results")
	submitCmd.MarkFlagRequired("inputs-dir")
}
