package commands

import (
	"context"
	"fmt"
	"time"

	"teambridge-backend/lib/client"
	"teambridge-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

var migrateUser *string

func init() {
	migrateUser = migrateCmd.Flags().String("user", "", "Target user id added as admin to every migrated group.")
	migrateCmd.MarkFlagRequired("user")
	rootCmd.AddCommand(migrateCmd)
}

var migrateCmd = &cobra.Command{
	Use:   "migrate [organization ids...]",
	Short: "Migrates the selected organizations (all of them when none are given).",
	Run: func(cmd *cobra.Command, args []string) {
		c := proxyClient()
		ctx := cmd.Context()

		type outcome struct {
			result client.MigrationResult
			err    error
		}
		done := make(chan outcome, 1)
		go func() {
			result, err := c.Migrate(ctx, *migrateUser, args)
			done <- outcome{result, err}
		}()

		ticker := time.NewTicker(time.Second)
		defer ticker.Stop()
		for {
			select {
			case out := <-done:
				if out.err != nil {
					serviceutil.Fatal("migrate", out.err)
				}
				printResult(out.result)
				return
			case <-ticker.C:
				printProgress(ctx, c)
			}
		}
	},
}

func printProgress(ctx context.Context, c *client.Client) {
	progress, err := c.MigrationStatus(ctx)
	if err != nil {
		return
	}
	fmt.Printf("\r[%d/%d] %-60s", progress.Current, progress.Total, progress.Message)
}

func printResult(result client.MigrationResult) {
	fmt.Println()
	fmt.Printf("migrated %d organizations, %d teams, %d members\n",
		result.Organizations, result.Teams, result.Members)
	if len(result.Errors) == 0 {
		return
	}
	fmt.Printf("completed with %d errors:\n", len(result.Errors))
	for _, e := range result.Errors {
		fmt.Println("  -", e)
	}
}
