package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/atelier/pkg/storage"
)

var initStudioName string

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize a new atelier workspace",
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, _ := os.Getwd()
		repo := storage.NewFilesystemRepository(cwd)

		if repo.IsInitialized() {
			return fmt.Errorf("workspace already initialized at %s", cwd)
		}
		if err := repo.Initialize(); err != nil {
			return fmt.Errorf("failed to initialize workspace: %w", err)
		}

		if initStudioName != "" {
			cfg, err := repo.LoadConfig()
			if err != nil {
				return err
			}
			cfg.StudioName = initStudioName
			if err := repo.SaveConfig(cfg); err != nil {
				return err
			}
		}

		fmt.Println(successStyle.Render("Initialized atelier workspace in " + storage.AtelierDir))
		return nil
	},
}

func init() {
	initCmd.Flags().StringVar(&initStudioName, "studio", "", "Studio name for the workspace config")
	RootCmd.AddCommand(initCmd)
}
