// cmd/token.go
package cmd

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/nijta-api/harbor-cli/internal/credentials"
	"github.com/nijta-api/harbor-cli/internal/platform"
)

var adminTokenFlag string

// tokenCmd groups the developer-token admin commands
var tokenCmd = &cobra.Command{
	Use:   "token",
	Short: "Manage Voice Harbor developer tokens (admin)",
}

var tokenCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Mint a developer token and store it as a credential file",
	Long: `Maps your admin token to a new developer (usage) token and stores it in
a timestamped YAML credential file. Subsequent commands pick up the
newest credential automatically when no --token is given.`,
	Run: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}

		adminToken, err := resolveAdminToken()
		if err != nil {
			exitErr("%v", err)
		}

		client := newClient()
		token, err := client.CreateDeveloperToken(context.Background(), adminToken)
		if err != nil {
			exitErr("Error creating developer token: %v", err)
		}

		path, err := credentials.Write(platform.CredentialsDir(), token)
		if err != nil {
			exitErr("Token received but could not be stored: %v", err)
		}
		fmt.Printf("%s Developer token stored at %s\n", color.GreenString("✓"), path)
	},
}

var tokenListCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the developer tokens minted for your admin token",
	Run: func(cmd *cobra.Command, args []string) {
		if noColor {
			color.NoColor = true
		}

		adminToken, err := resolveAdminToken()
		if err != nil {
			exitErr("%v", err)
		}

		client := newClient()
		tokens, err := client.ListDeveloperTokens(context.Background(), adminToken)
		if err != nil {
			exitErr("Error fetching developer tokens: %v", err)
		}
		if len(tokens) == 0 {
			fmt.Println("🤷 No developer tokens found.")
			return
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 3, ' ', 0)
		fmt.Fprintln(w, "TOKEN\tCREATED")
		fmt.Fprintln(w, "-----\t-------")
		for _, tok := range tokens {
			created := ""
			if !tok.CreatedAt.IsZero() {
				created = tok.CreatedAt.Format(time.RFC3339)
			}
			fmt.Fprintf(w, "%s\t%s\n", maskToken(tok.Token), created)
		}
		w.Flush()
	},
}

// resolveAdminToken reads the admin token from the flag, the environment,
// or an interactive no-echo prompt.
func resolveAdminToken() (string, error) {
	if adminTokenFlag != "" {
		return adminTokenFlag, nil
	}
	if env := os.Getenv("HARBOR_ADMIN_TOKEN"); env != "" {
		return env, nil
	}
	if !term.IsTerminal(int(os.Stdin.Fd())) {
		return "", fmt.Errorf("no admin token: pass --admin-token or set HARBOR_ADMIN_TOKEN")
	}

	fmt.Fprint(os.Stderr, "Admin token: ")
	raw, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", fmt.Errorf("could not read admin token: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("empty admin token")
	}
	return token, nil
}

// maskToken keeps the first and last few characters visible.
func maskToken(token string) string {
	if len(token) <= 8 {
		return token
	}
	return token[:4] + "…" + token[len(token)-4:]
}

func init() {
	rootCmd.AddCommand(tokenCmd)
	tokenCmd.AddCommand(tokenCreateCmd)
	tokenCmd.AddCommand(tokenListCmd)

	tokenCmd.PersistentFlags().StringVar(&adminTokenFlag, "admin-token", "", "Admin token (falls back to HARBOR_ADMIN_TOKEN, then an interactive prompt)")
}
