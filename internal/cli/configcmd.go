package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"rmd-knitter/internal/config"
)

func newConfigCmd(g *globalFlags) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change the configured tool paths",
	}
	cmd.AddCommand(newConfigShowCmd(g))
	cmd.AddCommand(newConfigSetCmd(g))
	return cmd
}

func newConfigShowCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the settings file",
		RunE: func(cmd *cobra.Command, args []string) error {
			store := config.NewYAMLStore(g.settingsPath())
			settings, err := store.Load()
			if config.IsNotExist(err) {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s has not been written yet\n", store.Path())
				settings = config.DefaultSettings()
			} else if err != nil {
				return err
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "# %s\n", store.Path())
			}

			data, err := config.Encode(settings)
			if err != nil {
				return err
			}
			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}

func newConfigSetCmd(g *globalFlags) *cobra.Command {
	var converter, engine string
	cmd := &cobra.Command{
		Use:   "set",
		Short: "Set one or both tool paths",
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := cmd.Flags()
			if !flags.Changed("converter") && !flags.Changed("script-engine") {
				return fmt.Errorf("nothing to set: pass --converter and/or --script-engine")
			}

			store := config.NewYAMLStore(g.settingsPath())
			settings, err := store.Load()
			if config.IsNotExist(err) {
				settings = config.DefaultSettings()
			} else if err != nil {
				return err
			}
			if flags.Changed("converter") {
				settings.Paths.Converter = strings.TrimSpace(converter)
			}
			if flags.Changed("script-engine") {
				settings.Paths.ScriptEngine = strings.TrimSpace(engine)
			}

			if err := store.Save(settings); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			pslog.Ctx(cmd.Context()).Info("settings saved", "path", store.Path(),
				"converter", settings.Paths.Converter, "script_engine", settings.Paths.ScriptEngine)
			return nil
		},
	}
	cmd.Flags().StringVar(&converter, "converter", "", "Pandoc directory (empty clears it)")
	cmd.Flags().StringVar(&engine, "script-engine", "", "Rscript executable (empty clears it)")
	return cmd
}
