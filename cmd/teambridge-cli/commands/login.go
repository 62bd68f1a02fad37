package commands

import (
	"fmt"

	"teambridge-backend/lib/serviceutil"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(validateCmd)
}

var loginCmd = &cobra.Command{
	Use:   "login <email> <password>",
	Short: "Authenticates against the source site and stores the session token locally.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c := proxyClient()

		auth, err := c.Authenticate(cmd.Context(), args[0], args[1])
		if err != nil {
			serviceutil.Fatal("authenticate", err)
		}

		fmt.Println("logged in, session saved to", *statePath)
		if auth.TaskId != "" {
			fmt.Println("extraction task submitted:", auth.TaskId)
			fmt.Println("follow it at:", auth.TaskUrl)
			fmt.Println("run 'teambridge-cli check-task' once it finishes")
		}
	},
}

var validateCmd = &cobra.Command{
	Use:   "validate <email> <password>",
	Short: "Checks credentials against the source site without keeping a session.",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		c := proxyClient()

		result, err := c.ValidateCredentials(cmd.Context(), args[0], args[1])
		if err != nil {
			serviceutil.Fatal("validate", err)
		}
		if result.Valid {
			fmt.Println("valid:", result.Message)
			return
		}
		fmt.Println("invalid:", result.Message)
	},
}
