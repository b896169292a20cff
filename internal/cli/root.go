package cli

import (
	"io/fs"
	"strings"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"rmd-knitter/internal/bootstrap"
	"rmd-knitter/internal/config"
	"rmd-knitter/internal/domain"
	"rmd-knitter/internal/toolchain"
)

// globalFlags holds the persistent flags shared by every command.
type globalFlags struct {
	configPath  string
	catalogPath string
	assets      fs.FS
}

// NewRootCmd builds the knitter command tree. Without a subcommand the desktop shell starts.
func NewRootCmd(assets fs.FS) *cobra.Command {
	g := &globalFlags{assets: assets}
	root := &cobra.Command{
		Use:           "rmd-knitter",
		Short:         "Knit R Markdown documents to HTML with Rscript and Pandoc",
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGUI(cmd, g)
		},
	}
	root.PersistentFlags().StringVar(&g.configPath, "config", "", "settings file (default ~/.rmd-knitter/config.yaml)")
	root.PersistentFlags().StringVar(&g.catalogPath, "candidates", "", "candidate catalog override (default ~/.rmd-knitter/candidates.yaml)")

	root.AddCommand(newGUICmd(g))
	root.AddCommand(newTUICmd(g))
	root.AddCommand(newRenderCmd(g))
	root.AddCommand(newDetectCmd(g))
	root.AddCommand(newDoctorCmd(g))
	root.AddCommand(newConfigCmd(g))

	return root
}

func (g *globalFlags) settingsPath() string {
	if path := strings.TrimSpace(g.configPath); path != "" {
		return path
	}
	return config.DefaultSettingsPath()
}

func (g *globalFlags) candidatesPath() string {
	if path := strings.TrimSpace(g.catalogPath); path != "" {
		return path
	}
	return config.DefaultCatalogPath()
}

// newApp starts an application session with the command's logger.
func (g *globalFlags) newApp(cmd *cobra.Command) (*bootstrap.App, error) {
	return bootstrap.New(bootstrap.Options{
		SettingsPath: g.settingsPath(),
		CatalogPath:  g.candidatesPath(),
		Logger:       pslog.Ctx(cmd.Context()),
		Assets:       g.assets,
		OS:           toolchain.CurrentOS(),
	})
}

// selectInputs applies optional working directory and document flags in that order.
func selectInputs(app *bootstrap.App, dir, doc string) error {
	if strings.TrimSpace(dir) != "" {
		if err := app.SelectWorkingDirectory(dir); err != nil {
			return err
		}
	}
	if strings.TrimSpace(doc) != "" {
		if err := app.SelectDocument(doc); err != nil {
			return err
		}
	}
	return nil
}

// warnAdvisory logs the one-time configuration advisory, if any.
func warnAdvisory(cmd *cobra.Command, app *bootstrap.App) {
	if advisory := app.Advisory(); advisory != "" {
		pslog.Ctx(cmd.Context()).Warn(strings.ReplaceAll(advisory, "\n", " "), "err", domain.ErrConfigurationMissing)
	}
}
