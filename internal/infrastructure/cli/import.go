package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import items from a JSON file",
	Long: `Validates the file against the items schema and merges its items
into the workspace by id. Existing items with matching ids are replaced.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		services, err := loadServicesForCurrentDir()
		if err != nil {
			return err
		}
		defer services.Close()

		imported, err := services.Repo.ImportItems(args[0])
		if err != nil {
			return fmt.Errorf("import failed: %w", err)
		}

		for _, item := range imported {
			services.Mirrors.Mirror(item)
		}
		fmt.Printf("Imported %d items\n", len(imported))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(importCmd)
}
