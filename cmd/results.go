// cmd/results.go
package cmd

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/nijta-api/harbor-cli/internal/inputs"
	"github.com/nijta-api/harbor-cli/internal/jobfile"
)

var (
	resultsOutputDir string
	resultsJobYAML   string
	resultsInputsDir string
	resultsTimeout   time.Duration
	resultsInterval  time.Duration
)

// resultsCmd represents the results command
var resultsCmd = &cobra.Command{
	Use:   "results <job-id>",
	Short: "Poll for and download the results of a submitted job",
	Long: `Polls the Voice Harbor server until the results of the given job are
finalized, then downloads each processed file together with its JSON
companion into the output directory.

The set of files to fetch comes from the job's YAML descriptor
(--job-yaml) or, alternatively, from re-scanning the original inputs
directory (--inputs-dir).`,
	Example: `  # Download using the descriptor written at submission time
  harbor results 3f2a91 --job-yaml ./3f2a91.yaml

  # Download by re-scanning the inputs that were submitted
  harbor results 3f2a91 --inputs-dir ./inputs --output-dir ./results`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
		jobID := args[0]

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		fileNames, err := resultFileNames()
		if err != nil {
			exitErr("%v", err)
		}
		if len(fileNames) == 0 {
			exitErr("No files to download; pass --job-yaml or --inputs-dir")
		}

		client := newClient()
		store := openHistory()
		if store != nil {
			defer store.Close()
		}

		downloaded := runDownloadBatch(ctx, client, jobID, fileNames, resultsOutputDir, resultsTimeout, resultsInterval)
		reportDownloads(store, jobID, downloaded)
	},
}

// resultFileNames determines which result files to fetch.
func resultFileNames() ([]string, error) {
	if resultsJobYAML != "" {
		params, err := jobfile.Read(resultsJobYAML)
		if err != nil {
			return nil, err
		}
		return params.Files, nil
	}

	paths, err := inputs.Scan(resultsInputsDir, "")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(paths))
	for _, path := range paths {
		names = append(names, filepath.Base(path))
	}
	return names, nil
}

func init() {
	rootCmd.AddCommand(resultsCmd)

	resultsCmd.Flags().StringVar(&resultsOutputDir, "output-dir", "./results", "Directory to save downloaded results")
	resultsCmd.Flags().StringVar(&resultsJobYAML, "job-yaml", "", "Job descriptor listing the files to download")
	resultsCmd.Flags().StringVar(&resultsInputsDir, "inputs-dir", "", "Inputs directory to derive file names from")
	resultsCmd.Flags().DurationVar(&resultsTimeout, "timeout", 10*time.Minute, "How long to wait for each result")
	resultsCmd.Flags().DurationVar(&resultsInterval, "interval", 10*time.Second, "Polling interval while waiting for results")
	resultsCmd.MarkFlagsOneRequired("job-yaml", "inputs-dir")
	resultsCmd.MarkFlagsMutuallyExclusive("job-yaml", "inputs-dir")
}
