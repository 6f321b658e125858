package cmd

import (
	"fmt"

	"github.com/brogergvhs/xkcd/internal/config"

	"github.com/spf13/cobra"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective config and manage config profiles",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, used, err := config.LoadMerged(globalOptions())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		_, _ = fmt.Fprintf(w, "Loaded config from:\n  %s\n\n", used)
		cfg.Print(w)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(configCmd)
}
