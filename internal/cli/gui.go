package cli

import (
	"github.com/spf13/cobra"
)

func newGUICmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "gui",
		Short: "Start the desktop application",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd, g)
		},
	}
}

func runGUI(cmd *cobra.Command, g *globalFlags) error {
	app, err := g.newApp(cmd)
	if err != nil {
		return err
	}
	return app.Run()
}
