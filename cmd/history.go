// cmd/history.go
package cmd

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

var historyLimit int

// historyCmd lists jobs submitted from this machine, from the local store.
// It never talks to the API, so it works offline and without a token.
var historyCmd = &cobra.Command{
	Use:   "history [job-id]",
	Short: "Show jobs submitted from this machine",
	Long: `Lists jobs recorded in the local submission history. With a job ID,
shows the files of that job instead, including audio durations synced
from the content API and where results were saved.`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		store := openHistory()
		if store == nil {
			exitErr("Could not open the local history store")
		}
		defer store.Close()

		if len(args) == 1 {
			files, err := store.Files(args[0])
			if err != nil {
				exitErr("Error reading history: %v", err)
			}
			if len(files) == 0 {
				fmt.Println("🤷 No files recorded for this job.")
				return
			}
			w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
			fmt.Fprintln(w, "FILE\tDURATION\tRESULT")
			fmt.Fprintln(w, "----\t--------\t------")
			for _, f := range files {
				duration := "-"
				if f.AudioDuration > 0 {
					duration = fmt.Sprintf("%.1fs", f.AudioDuration)
				}
				result := f.LocalResult
				if result == "" {
					result = "-"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", f.FileName, duration, result)
			}
			w.Flush()
			return
		}

		jobs, err := store.List(historyLimit)
		if err != nil {
			exitErr("Error reading history: %v", err)
		}
		if len(jobs) == 0 {
			fmt.Println("🤷 No jobs submitted from this machine yet.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "JOB ID\tSTATUS\tAGENTS\tFILES\tSUBMITTED")
		fmt.Fprintln(w, "------\t------\t------\t-----\t---------")
		for _, j := range jobs {
			agents := strings.Join(j.Agents, ", ")
			if agents == "" {
				agents = "-"
			}
			fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
				j.JobID, j.Status, agents, j.FileCount,
				j.SubmittedAt.Local().Format(time.DateTime))
		}
		w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(historyCmd)
	historyCmd.Flags().IntVar(&historyLimit, "limit", 20, "Maximum number of jobs to show")
}
