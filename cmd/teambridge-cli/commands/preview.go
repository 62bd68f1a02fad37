package commands

import (
	"fmt"
	"os"

	"teambridge-backend/lib/serviceutil"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(previewCmd)
}

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Shows what a migration of the current session would produce.",
	Run: func(cmd *cobra.Command, args []string) {
		c := proxyClient()

		preview, err := c.GetMigrationPreview(cmd.Context())
		if err != nil {
			serviceutil.Fatal("fetch preview", err)
		}

		t := table.NewWriter()
		t.SetOutputMirror(os.Stdout)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"Organization", "Team", "Players", "Staff"})

		for _, org := range preview.Organizations {
			if org.Error != "" {
				t.AppendRow(table.Row{org.Name, "(unavailable: " + org.Error + ")", "-", "-"})
				continue
			}
			if len(org.Teams) == 0 {
				t.AppendRow(table.Row{org.Name, "(no teams)", 0, 0})
				continue
			}
			for _, team := range org.Teams {
				t.AppendRow(table.Row{org.Name, team.Name, team.PlayerCount, team.StaffCount})
			}
		}
		t.AppendFooter(table.Row{
			fmt.Sprintf("%d organizations", preview.Summary.OrganizationCount),
			fmt.Sprintf("%d teams", preview.Summary.TeamCount),
			preview.Summary.PlayerCount,
			preview.Summary.StaffCount,
		})
		t.Render()
	},
}
