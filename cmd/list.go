package cmd

import (
	"github.com/spf13/cobra"
)

const listLongDescription = `List the source files a check would analyze.

Uses the same path patterns, extensions and exclude rules as the check
itself, without running the analyzer.`

// listCmd represents the list command.
var listCmd = newListCmd()

func newListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list [paths...]",
		Short: "List source files selected for analysis",
		Long:  listLongDescription,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			wf, err := resolveWorkflow(cmd, cfg)
			if err != nil {
				return err
			}

			return wf.List(listArgs(args, cfg))
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(listCmd)
}
