package commands

import (
	"fmt"
	"os"

	"teambridge-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(checkTaskCmd)
	rootCmd.AddCommand(submitDataCmd)
}

var checkTaskCmd = &cobra.Command{
	Use:   "check-task",
	Short: "Polls the delegated extraction task and resolves the session when it finished.",
	Run: func(cmd *cobra.Command, args []string) {
		c := proxyClient()

		status, err := c.CheckTaskCompletion(cmd.Context())
		if err != nil {
			serviceutil.Fatal("check task", err)
		}

		fmt.Println("task:", status.TaskId)
		fmt.Println("status:", status.Status)
		if status.Message != "" {
			fmt.Println(status.Message)
		}
		if status.Resolved {
			fmt.Println("extraction resolved, 'preview' and 'migrate' are ready")
		}
	},
}

var submitDataCmd = &cobra.Command{
	Use:   "submit-data <path/to/output.json>",
	Short: "Resolves the session by submitting a delegated task's output manually.",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		c := proxyClient()

		raw, err := os.ReadFile(args[0])
		if err != nil {
			serviceutil.Fatal("read data file", err)
		}
		if err := c.SubmitExtractedData(cmd.Context(), string(raw)); err != nil {
			serviceutil.Fatal("submit data", err)
		}
		fmt.Println("extraction data accepted")
	},
}
