package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var durationPreview bool

var durationCmd = &cobra.Command{
	Use:   "duration <item-id> <days>",
	Short: "Change a scheduled task's duration",
	Long: `Sets the task duration in days. The end date is derived from the
start date, inclusive of both endpoints, and the duration is clamped
to the 1-365 day range. With --preview the change is shown but not saved.`,
	Args: cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		var days int
		if _, err := fmt.Sscanf(args[1], "%d", &days); err != nil {
			return fmt.Errorf("invalid day count %q", args[1])
		}

		editor, err := services.Duration.Editor(args[0])
		if err != nil {
			return fmt.Errorf("failed to open duration editor: %w", err)
		}

		editor.SetDuration(days)
		end := editor.PreviewEnd()
		fmt.Printf("Duration %d days, ends %s\n", editor.Duration(), end.Format("2006-01-02"))

		if durationPreview {
			return nil
		}
		if err := editor.Save(cmd.Context()); err != nil {
			return fmt.Errorf("failed to save duration: %w", err)
		}
		fmt.Println(successStyle.Render("Saved"))
		return nil
	},
}

func init() {
	durationCmd.Flags().BoolVar(&durationPreview, "preview", false, "Show the resulting dates without saving")
	RootCmd.AddCommand(durationCmd)
}
