package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
)

var listJSON bool

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List scheduled items and workspace totals",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		items := services.Mirrors.Snapshots()

		if listJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			return enc.Encode(items)
		}

		if len(items) == 0 {
			fmt.Println(dimStyle.Render("No items in the workspace."))
			return nil
		}

		for _, item := range items {
			fmt.Println(renderItemLine(item))
		}

		totals := services.Stats.Totals()
		fmt.Println()
		fmt.Printf("%d items, %d scheduled, %d completed, %d pending, %d assigned\n",
			totals.Items, totals.Scheduled, totals.Completed, totals.Pending, totals.Assigned)
		return nil
	},
}

func renderItemLine(item scheduling.ScheduledItem) string {
	line := fmt.Sprintf("%-12s %s", item.ID, item.Name)

	if item.Task == nil {
		return line + dimStyle.Render("  (unscheduled)")
	}

	dates := fmt.Sprintf("  %s to %s (%dd)",
		item.Task.StartDate.Format("2006-01-02"),
		item.Task.EndDate.Format("2006-01-02"),
		item.Task.DurationDays)
	line += dimStyle.Render(dates)

	if item.Task.Status == scheduling.StatusCompleted {
		line += "  " + successStyle.Render("done")
	} else {
		line += "  " + infoStyle.Render(fmt.Sprintf("%d%%", item.Task.ProgressPercent))
	}

	if item.Crew != nil {
		line += "  " + item.Crew.Name
	} else if item.CrewMemberID != "" {
		line += "  " + item.CrewMemberID
	}
	return line
}

func init() {
	listCmd.Flags().BoolVar(&listJSON, "json", false, "Output as JSON")
	RootCmd.AddCommand(listCmd)
}
