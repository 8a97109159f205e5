package cmd

import (
	"github.com/spf13/cobra"

	"github.com/mouse-blink/typecov/internal/domain"
	m "github.com/mouse-blink/typecov/internal/model"
)

// viewCmd represents the view command.
var viewCmd = newViewCmd()

func newViewCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "view <report>",
		Short: "View a previously written JSON or YAML report",
		Long:  "View a report written with --json or --yaml, using the same output as a live check.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}

			wf, err := resolveWorkflow(cmd, cfg)
			if err != nil {
				return err
			}

			return wf.View(domain.ViewArgs{
				Report:       m.Path(args[0]),
				HideComplete: cfg.HideComplete,
			})
		},
	}

	return cmd
}

func init() {
	rootCmd.AddCommand(viewCmd)
}
