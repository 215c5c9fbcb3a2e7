package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/atelier/pkg/domain/scheduling"
)

var (
	completeAssign     string
	completeNoPayroll  bool
	completeGeneratePR bool
)

var completeCmd = &cobra.Command{
	Use:   "complete <item-id>",
	Short: "Mark a scheduled item's task as completed",
	Long: `Completes the task on a scheduled item. Completion may require a
decision first: items without a crew assignment prompt for one, and
fixed-salary crew prompt for payroll confirmation. Use the flags to
resolve those prompts non-interactively.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		itemID := args[0]

		prompt, err := services.Schedule.Complete(cmd.Context(), itemID)
		if err != nil {
			return fmt.Errorf("failed to complete item: %w", err)
		}
		if prompt == nil {
			fmt.Println(successStyle.Render("Completed " + itemID))
			return nil
		}

		switch prompt.Gate {
		case scheduling.GateNeedsAssignmentPrompt:
			if completeAssign != "" {
				if err := services.Schedule.ResolveAssignAndComplete(cmd.Context(), itemID, completeAssign); err != nil {
					return fmt.Errorf("failed to assign and complete: %w", err)
				}
				fmt.Println(successStyle.Render("Assigned " + completeAssign + " and completed " + itemID))
				return nil
			}
			if completeNoPayroll {
				if err := services.Schedule.ResolveCompleteWithoutPayroll(cmd.Context(), itemID); err != nil {
					return fmt.Errorf("failed to complete item: %w", err)
				}
				fmt.Println(successStyle.Render("Completed " + itemID + " without crew"))
				return nil
			}
			fmt.Println(warningStyle.Render("No crew assigned."), "Re-run with --assign <member-id> or --no-payroll to complete without crew.")
			return nil

		case scheduling.GateNeedsPayrollConfirmation:
			if completeGeneratePR || completeNoPayroll {
				if err := services.Schedule.ResolvePayrollConfirmation(cmd.Context(), itemID, completeGeneratePR); err != nil {
					return fmt.Errorf("failed to complete item: %w", err)
				}
				fmt.Println(successStyle.Render("Completed " + itemID))
				return nil
			}
			name := ""
			if prompt.Member != nil {
				name = prompt.Member.Name
			}
			fmt.Println(warningStyle.Render("Payroll confirmation needed for "+name+"."), "Re-run with --generate-payroll or --no-payroll.")
			return nil

		default:
			return fmt.Errorf("unhandled completion gate %q", prompt.Gate)
		}
	},
}

var reopenCmd = &cobra.Command{
	Use:   "reopen <item-id>",
	Short: "Reopen a completed task",
	Long:  "Moves the task back to pending and removes any payroll generated for its completion.",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		if err := services.Schedule.Reopen(cmd.Context(), args[0]); err != nil {
			return fmt.Errorf("failed to reopen item: %w", err)
		}
		fmt.Printf("Reopened %s\n", args[0])
		return nil
	},
}

func init() {
	completeCmd.Flags().StringVar(&completeAssign, "assign", "", "Assign this crew member, then complete")
	completeCmd.Flags().BoolVar(&completeNoPayroll, "no-payroll", false, "Complete without generating payroll")
	completeCmd.Flags().BoolVar(&completeGeneratePR, "generate-payroll", false, "Confirm payroll generation for fixed-salary crew")
	RootCmd.AddCommand(completeCmd)
	RootCmd.AddCommand(reopenCmd)
}
