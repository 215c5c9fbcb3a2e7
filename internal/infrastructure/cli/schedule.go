package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var scheduleStart string
var scheduleDuration int

var scheduleCmd = &cobra.Command{
	Use:   "schedule <item-id>",
	Short: "Place an item on the calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		start := time.Now().UTC().Truncate(24 * time.Hour)
		if scheduleStart != "" {
			start, err = time.Parse("2006-01-02", scheduleStart)
			if err != nil {
				return fmt.Errorf("invalid --start date (want YYYY-MM-DD): %w", err)
			}
		}

		task, err := services.Schedule.Schedule(cmd.Context(), args[0], start, scheduleDuration)
		if err != nil {
			return fmt.Errorf("failed to schedule item: %w", err)
		}

		fmt.Printf("Scheduled %s: %s to %s (%d days)\n",
			args[0],
			task.StartDate.Format("2006-01-02"),
			task.EndDate.Format("2006-01-02"),
			task.DurationDays)
		return nil
	},
}

var unscheduleCmd = &cobra.Command{
	Use:   "unschedule <item-id>",
	Short: "Remove an item from the calendar",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		if err := services.Schedule.Unschedule(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to unschedule item: %w", err)
		}
		fmt.Printf("Unscheduled %s\n", args[0])
		return nil
	},
}

func init() {
	scheduleCmd.Flags().StringVar(&scheduleStart, "start", "", "Start date (YYYY-MM-DD), defaults to today")
	scheduleCmd.Flags().IntVar(&scheduleDuration, "days", 1, "Duration in days (1-365)")
	RootCmd.AddCommand(scheduleCmd)
	RootCmd.AddCommand(unscheduleCmd)
}
