package commands

import (
	"context"
	"fmt"
	"os"

	"teambridge-backend/lib/client"
	"teambridge-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var (
	serverUrl *string
	statePath *string
)

var rootCmd = &cobra.Command{
	Use:   "teambridge-cli",
	Short: "teambridge-cli drives the extraction and migration backend from the terminal.",
}

func init() {
	serverUrl = rootCmd.PersistentFlags().String("server", "http://localhost:8000", "Base URL of the backend.")
	statePath = rootCmd.PersistentFlags().String("state", ".teambridge/state.json", "Path to the local session state file.")
}

func ExecuteContext(ctx context.Context) {
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func proxyClient() *client.Client {
	c, err := client.New(*serverUrl, *statePath)
	if err != nil {
		serviceutil.Fatal("load session state", err)
	}
	return c
}
