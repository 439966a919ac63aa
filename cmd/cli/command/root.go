package command

// root.go defines the root command for the bookhub CLI.
// Global flags and the authenticated client helper live here.

import (
	"context"
	"fmt"
	"os"
	"time"

	"bookhub/cmd/cli/authentication"
	"bookhub/cmd/cli/command/client"

	"github.com/spf13/cobra"
)

var apiURL string // Global flag for API server URL

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "bookhub",
	Short: "bookhub - BookHub Command Line Interface",
	Long: `bookhub is a tool for users to interact with the BookHub API. It can:
- Register, login and logout
- Keep a list of favorite books
- Rate books and browse ratings

Use "bookhub [command] --help" to see all available commands.`,
	SilenceUsage: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", envOr("BOOKHUB_API", "http://localhost:8080"), "API server URL")
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// GetAuthenticatedClient returns a client carrying the stored access token
func GetAuthenticatedClient() (*client.HTTPClient, error) {
	creds, err := authentication.GetTokens()
	if err != nil {
		return nil, err
	}
	c := client.NewHTTPClient(apiURL)
	c.SetToken(creds.AccessToken)
	return c, nil
}

func commandContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return context.WithTimeout(cmd.Context(), 15*time.Second)
}
