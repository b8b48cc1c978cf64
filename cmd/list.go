package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/signalnine/shockbench/internal/trial"
)

func newListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the trial catalogue",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, s := range trial.Default(cfg.Defaults.Tolerance).All() {
				ranks := ""
				if s.Distributed() {
					ranks = fmt.Sprintf(", %d ranks", s.Ranks)
				}
				fmt.Printf("  - %s [%s%s]: %s\n", s.Name, s.Category, ranks, s.Description)
			}
			return nil
		},
	}
}
