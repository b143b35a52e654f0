// cmd/update.go
package cmd

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/nijta-api/harbor-cli/internal/update"
)

var updateCmd = &cobra.Command{
	Use:   "update",
	Short: "Manage harbor CLI updates",
	Long: `Check for and install harbor CLI updates.

Examples:
  harbor update check      # Check for available updates
  harbor update install    # Download and install the latest version
  harbor update status     # Show update status and versions`,
	Run: func(cmd *cobra.Command, args []string) {
		showUpdateStatus()
	},
}

var updateCheckCmd = &cobra.Command{
	Use:   "check",
	Short: "Check for available updates",
	Long:  `Checks GitHub releases for a newer version of the harbor CLI.`,
	Run: func(cmd *cobra.Command, args []string) {
		checkForUpdate()
	},
}

var updateInstallCmd = &cobra.Command{
	Use:   "install",
	Short: "Download and install the latest version",
	Long: `Downloads the latest release from GitHub, verifies its checksum,
backs up the current binary, and installs the new one.`,
	Run: func(cmd *cobra.Command, args []string) {
		installUpdate()
	},
}

var updateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show update status and version information",
	Run: func(cmd *cobra.Command, args []string) {
		showUpdateStatus()
	},
}

func init() {
	rootCmd.AddCommand(updateCmd)
	updateCmd.AddCommand(updateCheckCmd)
	updateCmd.AddCommand(updateInstallCmd)
	updateCmd.AddCommand(updateStatusCmd)
}

func checkForUpdate() {
	fmt.Println("Checking for updates...")

	client := update.NewClient(Version)
	release, err := client.CheckForUpdate()
	if err != nil {
		exitErr("Error checking for updates: %v", err)
	}

	state, _ := update.LoadState()
	state.LastCheck = time.Now()
	if release != nil {
		state.AvailableUpdate = release.TagName
	}
	_ = update.SaveState(state)

	if release == nil {
		fmt.Printf("You are running the latest version (%s)\n", Version)
		return
	}

	fmt.Printf("\nUpdate available: %s -> %s\n", Version, release.TagName)
	fmt.Printf("Release: %s\n", release.Name)
	fmt.Printf("URL: %s\n", release.HTMLURL)
	fmt.Println("\nRun 'harbor update install' to update.")
}

func installUpdate() {
	fmt.Println("Checking for updates...")

	client := update.NewClient(Version)
	release, err := client.CheckForUpdate()
	if err != nil {
		exitErr("Error checking for updates: %v", err)
	}
	if release == nil {
		fmt.Printf("You are running the latest version (%s)\n", Version)
		return
	}

	fmt.Printf("\nUpdate available: %s -> %s\n", Version, release.TagName)
	fmt.Println("Downloading and verifying...")

	pendingPath := update.PendingBinaryPath()
	if err := client.DownloadAndVerify(release, pendingPath); err != nil {
		exitErr("Error downloading update: %v", err)
	}

	fmt.Println("Checksum verified.")
	fmt.Println("Installing update...")

	if err := update.Apply(pendingPath); err != nil {
		exitErr("Error installing update: %v", err)
	}

	state, _ := update.LoadState()
	update.RecordUpdate(state, Version, release.TagName)
	state.LastCheck = time.Now()
	_ = update.SaveState(state)

	fmt.Printf("\nSuccessfully updated to %s\n", release.TagName)
	fmt.Println("Previous version saved at", update.PreviousBinaryPath())
	fmt.Println("\nRun 'harbor version' to verify.")
}

func showUpdateStatus() {
	state, err := update.LoadState()
	if err != nil {
		exitErr("Error loading update state: %v", err)
	}

	fmt.Println("Harbor CLI Update Status")
	fmt.Println("------------------------")
	fmt.Printf("Current version:  %s\n", Version)

	if state.PreviousVersion != "" {
		fmt.Printf("Previous version: %s\n", state.PreviousVersion)
	} else {
		fmt.Printf("Previous version: (none)\n")
	}

	if !state.LastCheck.IsZero() {
		fmt.Printf("Last check:       %s\n", state.LastCheck.Format(time.RFC3339))
	} else {
		fmt.Printf("Last check:       (never)\n")
	}
	if !state.LastUpdate.IsZero() {
		fmt.Printf("Last update:      %s\n", state.LastUpdate.Format(time.RFC3339))
	}

	fmt.Println("\nChecking for updates...")
	client := update.NewClient(Version)
	release, err := client.CheckForUpdate()
	if err != nil {
		fmt.Printf("Update check:     failed (%v)\n", err)
	} else if release == nil {
		fmt.Println("Update check:     up to date")
	} else {
		fmt.Printf("Update available: %s\n", release.TagName)
		fmt.Println("\nRun 'harbor update install' to update.")
	}
}

// CheckForUpdateInBackground runs a rate-limited update check after a
// command finishes. It only prints a hint, never installs.
func CheckForUpdateInBackground() {
	state, err := update.LoadState()
	if err != nil || !update.ShouldCheck(state) {
		return
	}

	client := update.NewClient(Version)
	release, err := client.CheckForUpdate()

	state.LastCheck = time.Now()
	_ = update.SaveState(state)

	if err != nil || release == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "💡 Update available: %s (run 'harbor update install')\n", release.TagName)
}
