package cli

import (
	"github.com/spf13/cobra"

	"rmd-knitter/internal/tui"
)

func newTUICmd(g *globalFlags) *cobra.Command {
	var dir, doc string
	cmd := &cobra.Command{
		Use:   "tui",
		Short: "Start the terminal console",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.newApp(cmd)
			if err != nil {
				return err
			}
			if err := selectInputs(app, dir, doc); err != nil {
				return err
			}
			return tui.Run(cmd.Context(), app)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "working directory")
	cmd.Flags().StringVar(&doc, "doc", "", "R Markdown document")
	return cmd
}
