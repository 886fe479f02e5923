package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/draftly/internal/api"
	"github.com/jackzampolin/draftly/internal/server/endpoints"
)

var serverURL string

var (
	waitAttempts uint
	waitDelay    time.Duration
)

// getServerURL returns the server URL at runtime (after flag parsing).
func getServerURL() string {
	return serverURL
}

var waitCmd = &cobra.Command{
	Use:   "wait",
	Short: "Block until the server answers /health",
	RunE: func(cmd *cobra.Command, args []string) error {
		client := api.NewClient(getServerURL())
		if err := client.WaitReady(cmd.Context(), waitAttempts, waitDelay); err != nil {
			return fmt.Errorf("server not ready: %w", err)
		}
		fmt.Fprintln(cmd.OutOrStdout(), "ready")
		return nil
	},
}

func init() {
	registry := api.NewRegistry()
	for _, ep := range endpoints.All() {
		registry.Register(ep)
	}
	apiCmd := registry.BuildCommands(getServerURL)

	// Add --server flag to api command (persistent so all subcommands inherit it)
	apiCmd.PersistentFlags().StringVar(
		&serverURL, "server", "http://localhost:4000", "Server URL",
	)

	waitCmd.Flags().UintVar(&waitAttempts, "attempts", 30, "number of health checks before giving up")
	waitCmd.Flags().DurationVar(&waitDelay, "delay", time.Second, "delay between health checks")
	apiCmd.AddCommand(waitCmd)

	rootCmd.AddCommand(apiCmd)
}
