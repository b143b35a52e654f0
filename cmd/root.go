// cmd/root.go
package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nijta-api/harbor-cli/internal/platform"
)

// getEnvOrDefault returns the value of an environment variable or a default value
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

var baseURL string
var tokenFlag string
var debugMode bool
var noColor bool
var rateLimit float64

// debugLogFile is the file handle for debug logging
var debugLogFile *os.File
var debugLogMu sync.Mutex
var debugLogInitOnce sync.Once

// initDebugLogFile initializes the debug log file
func initDebugLogFile() {
	logDir := filepath.Join(platform.ConfigDir(), "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return
	}

	logPath := filepath.Join(logDir, "debug.log")
	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return
	}

	debugLogFile = f

	// Write session header
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	fmt.Fprintf(debugLogFile, "\n=== Debug session started: %s ===\n", timestamp)
}

// Debug prints a message if debug mode is enabled and writes to the log file
func Debug(format string, args ...interface{}) {
	if debugMode {
		timestamp := time.Now().Format("2006-01-02 15:04:05.000")
		msg := fmt.Sprintf(format, args...)

		// Print to console
		fmt.Printf("[DEBUG] %s\n", msg)

		// Write to file with timestamp
		debugLogMu.Lock()
		debugLogInitOnce.Do(initDebugLogFile)
		if debugLogFile != nil {
			fmt.Fprintf(debugLogFile, "[%s] %s\n", timestamp, msg)
		}
		debugLogMu.Unlock()
	}
}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "harbor",
	Short: "Harbor is the client for the Nijta Voice Harbor service",
	Long: `A client and CLI for submitting audio-processing jobs to Voice Harbor,
uploading input files over signed URLs and downloading the anonymized
results once the service has finished with them.`,
	Version: Version,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if debugMode {
			// Log the full command that was run
			fullCmd := "harbor"
			if cmd.Name() != "harbor" {
				fullCmd += " " + cmd.Name()
			}
			// Add flags that were set
			cmd.Flags().Visit(func(f *pflag.Flag) {
				if f.Name == "debug" {
					return // Skip the debug flag itself
				}
				if f.Name == "token" || f.Name == "admin-token" {
					fullCmd += " --" + f.Name + "=<redacted>"
					return
				}
				if f.Value.Type() == "bool" {
					fullCmd += " --" + f.Name
				} else {
					fullCmd += " --" + f.Name + "=" + f.Value.String()
				}
			})
			if len(args) > 0 {
				fullCmd += " " + strings.Join(args, " ")
			}
			Debug("command: %s", fullCmd)
		}
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	// A .env next to the working directory can hold HARBOR_TOKEN and
	// HARBOR_BASE_URL; missing files are fine.
	cobra.OnInitialize(func() {
		if err := godotenv.Load(); err != nil {
			Debug("no .env file loaded: %v", err)
		}
	})

	rootCmd.PersistentFlags().StringVar(&baseURL, "base-url", getEnvOrDefault("HARBOR_BASE_URL", "https://api.nijta.com"), "Base URL of the Voice Harbor API")
	rootCmd.PersistentFlags().StringVar(&tokenFlag, "token", "", "Authorization token (falls back to HARBOR_TOKEN, then stored credentials)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "Enable debug output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().Float64Var(&rateLimit, "rate-limit", 10, "Maximum API requests per second (signed-URL requests included)")
}
