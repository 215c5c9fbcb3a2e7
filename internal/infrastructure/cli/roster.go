package cli

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/atelier/pkg/domain/crew"
)

var rosterCmd = &cobra.Command{
	Use:   "roster",
	Short: "Manage the crew roster",
}

var rosterListCmd = &cobra.Command{
	Use:   "list",
	Short: "List crew members",
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		members, err := services.Repo.LoadRoster()
		if err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}
		if len(members) == 0 {
			fmt.Println(dimStyle.Render("Roster is empty."))
			return nil
		}

		for _, m := range members {
			line := fmt.Sprintf("%-12s %-20s %s", m.ID, m.Name, m.Type)
			switch m.CompensationMode() {
			case crew.CompensationFixed:
				line += dimStyle.Render(fmt.Sprintf("  fixed %s%.2f", services.Config.Currency, m.FixedSalary))
			case crew.CompensationVariable:
				line += dimStyle.Render(fmt.Sprintf("  variable %s%.2f", services.Config.Currency, m.VariableSalary))
			default:
				line += dimStyle.Render("  unpaid")
			}
			fmt.Println(line)
		}
		return nil
	},
}

var (
	rosterAddType     string
	rosterAddFixed    float64
	rosterAddVariable float64
)

var rosterAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a crew member",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		members, err := services.Repo.LoadRoster()
		if err != nil {
			return fmt.Errorf("failed to load roster: %w", err)
		}

		member := crew.Member{
			ID:             uuid.NewString(),
			Name:           args[0],
			Type:           rosterAddType,
			FixedSalary:    rosterAddFixed,
			VariableSalary: rosterAddVariable,
		}
		members = append(members, member)

		if err := services.Repo.SaveRoster(members); err != nil {
			return fmt.Errorf("failed to save roster: %w", err)
		}
		fmt.Printf("Added %s (%s)\n", member.Name, member.ID)
		return nil
	},
}

func init() {
	rosterAddCmd.Flags().StringVar(&rosterAddType, "type", "photographer", "Crew member type")
	rosterAddCmd.Flags().Float64Var(&rosterAddFixed, "fixed", 0, "Fixed salary per completed task")
	rosterAddCmd.Flags().Float64Var(&rosterAddVariable, "variable", 0, "Variable salary per completed task")
	rosterCmd.AddCommand(rosterListCmd)
	rosterCmd.AddCommand(rosterAddCmd)
	RootCmd.AddCommand(rosterCmd)
}
