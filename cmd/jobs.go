// cmd/jobs.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

// jobsCmd groups the job inspection commands
var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "Inspect jobs on the Voice Harbor server",
}

var jobsListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the jobs associated with your token",
	Run: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
		client := newClient()

		jobs, err := client.ListJobs(context.Background())
		if err != nil {
			exitErr("Error fetching jobs: %v", err)
		}
		if len(jobs) == 0 {
			fmt.Println("🤷 No jobs found for this token.")
			return
		}

		// Use a tabwriter for nicely formatted, aligned columns
		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "JOB ID\tSTATUS\tFILES\tCREATED")
		fmt.Fprintln(w, "------\t------\t-----\t-------")
		for _, job := range jobs {
			created := ""
			if !job.CreatedAt.IsZero() {
				created = time.Since(job.CreatedAt).Round(time.Second).String() + " ago"
			}
			fmt.Fprintf(w, "%s\t%s\t%d\t%s\n", job.JobID, job.Status, len(job.Files), created)
		}
		w.Flush()
	},
}

var jobsCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create an empty job and print its id",
	Long: `Creates a job on the server without uploading anything. Useful for
scripted workflows that upload files separately.`,
	Run: func(cmd *cobra.Command, args []string) {
		client := newClient()

		jobID, err := client.CreateJob(context.Background())
		if err != nil {
			exitErr("Error creating job: %v", err)
		}
		fmt.Println(jobID)
	},
}

var jobsContentCmd = &cobra.Command{
	Use:   "content <job-id>",
	Short: "List the audio records of a job",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}
		jobID := args[0]
		client := newClient()

		records, err := client.JobContent(context.Background(), jobID)
		if err != nil {
			exitErr("Error fetching job content: %v", err)
		}
		if len(records) == 0 {
			fmt.Printf("🤷 No content recorded for job %s yet.\n", jobID)
			return
		}

		// Best effort: keep the local duration cache in sync.
		if store := openHistory(); store != nil {
			if err := store.SyncContent(jobID, records); err != nil {
				Debug("could not sync content to history: %v", err)
			}
			store.Close()
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "FILE\tDURATION\tCREATED")
		fmt.Fprintln(w, "----\t--------\t-------")
		var total float64
		for _, rec := range records {
			created := ""
			if !rec.CreatedAt.IsZero() {
				created = rec.CreatedAt.Format("2006-01-02 15:04:05")
			}
			fmt.Fprintf(w, "%s\t%.1fs\t%s\n", rec.FileName, rec.AudioDuration, created)
			total += rec.AudioDuration
		}
		w.Flush()
		fmt.Printf("\nTotal audio: %.1fs across %d file(s)\n", total, len(records))
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd)
	jobsCmd.AddCommand(jobsListCmd)
	jobsCmd.AddCommand(jobsCreateCmd)
	jobsCmd.AddCommand(jobsContentCmd)
}
