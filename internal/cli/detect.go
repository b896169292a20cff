package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"
	"pkt.systems/pslog"

	"rmd-knitter/internal/config"
	"rmd-knitter/internal/domain"
	"rmd-knitter/internal/toolchain"
)

func newDetectCmd(g *globalFlags) *cobra.Command {
	var all, save bool
	var osName string
	cmd := &cobra.Command{
		Use:   "detect",
		Short: "Search the known locations for Rscript and Pandoc",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := pslog.Ctx(cmd.Context())
			catalog, err := toolchain.LoadCatalog(g.candidatesPath())
			if err != nil {
				return err
			}
			osKind := toolchain.CurrentOS()
			if osName != "" {
				osKind = domain.OSKind(osName)
			}
			resolver := toolchain.NewResolver(catalog, logger)

			out := cmd.OutOrStdout()
			if all {
				printCandidates(out, resolver.Inspect(osKind))
				return nil
			}

			paths := resolver.Detect(osKind)
			printPaths(out, paths)
			if !save {
				return nil
			}
			store := config.NewYAMLStore(g.settingsPath())
			if err := store.Save(domain.Settings{Paths: paths}); err != nil {
				return fmt.Errorf("save settings: %w", err)
			}
			logger.Info("settings saved", "path", store.Path())
			return nil
		},
	}
	cmd.Flags().BoolVar(&all, "all", false, "list every candidate and whether it exists")
	cmd.Flags().BoolVar(&save, "save", false, "write the detected paths to the settings file")
	cmd.Flags().StringVar(&osName, "os", "", "candidate list to search (windows, darwin, linux)")
	return cmd
}

func printPaths(out io.Writer, paths domain.ResolvedPaths) {
	fmt.Fprintf(out, "converter:     %s\n", displayPath(paths.Converter))
	fmt.Fprintf(out, "script_engine: %s\n", displayPath(paths.ScriptEngine))
}

func printCandidates(out io.Writer, options []domain.CandidateOption) {
	for _, option := range options {
		mark := " "
		if option.Selected {
			mark = "*"
		}
		state := "missing"
		if option.Exists {
			state = option.Path
		}
		fmt.Fprintf(out, "%s %-13s %s -> %s\n", mark, option.Category, option.Pattern, state)
	}
}

func displayPath(path string) string {
	if path == "" {
		return "(not found)"
	}
	return path
}
