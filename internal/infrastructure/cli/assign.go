package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var assignCmd = &cobra.Command{
	Use:   "assign <item-id> <member-id>",
	Short: "Assign a crew member to an item",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		if err := services.Assignment.Assign(cmd.Context(), args[0], args[1]); err != nil {
			return fmt.Errorf("failed to assign crew: %w", err)
		}
		fmt.Printf("Assigned %s to %s\n", args[1], args[0])
		return nil
	},
}

var unassignCmd = &cobra.Command{
	Use:   "unassign <item-id>",
	Short: "Clear the crew assignment on an item",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		if err := services.Assignment.Unassign(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to unassign crew: %w", err)
		}
		fmt.Printf("Cleared assignment on %s\n", args[0])
		return nil
	},
}

func init() {
	RootCmd.AddCommand(assignCmd)
	RootCmd.AddCommand(unassignCmd)
}
