package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
)

// cliOptions are the persistent flags shared by every command.
type cliOptions struct {
	baseURL string
	token   string
	timeout time.Duration
	json    bool
}

func (o *cliOptions) client() *apiClient {
	return newAPIClient(o.baseURL, o.token, o.timeout)
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	rootCmd := &cobra.Command{
		Use:           "smartwealth-cli",
		Short:         "SmartWealth CLI tool",
		Long:          `A command line interface for interacting with the SmartWealth API.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.PersistentFlags().StringVar(&opts.baseURL, "url", envOr("SMARTWEALTH_URL", "http://localhost:8080"), "Base URL of the SmartWealth API")
	rootCmd.PersistentFlags().StringVar(&opts.token, "token", os.Getenv("SMARTWEALTH_TOKEN"), "Bearer token (defaults to $SMARTWEALTH_TOKEN)")
	rootCmd.PersistentFlags().DurationVar(&opts.timeout, "timeout", 30*time.Second, "Request timeout")
	rootCmd.PersistentFlags().BoolVar(&opts.json, "json", false, "Print raw JSON responses")

	rootCmd.AddCommand(
		loginCmd(opts),
		accountsCmd(opts),
		transactionsCmd(opts),
		stocksCmd(opts),
		summaryCmd(opts),
		reportCmd(opts),
		adviceCmd(opts),
		reconcileCmd(opts),
	)

	return rootCmd
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
