package cli

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"rmd-knitter/internal/domain"
)

// ErrDiagnosticsFailed is returned when at least one check fails.
var ErrDiagnosticsFailed = errors.New("diagnostics reported failures")

func newDoctorCmd(g *globalFlags) *cobra.Command {
	var dir, doc string
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Check the configured toolchain and selected inputs",
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.newApp(cmd)
			if err != nil {
				return err
			}
			if err := selectInputs(app, dir, doc); err != nil {
				return err
			}
			report, err := app.RefreshDiagnostics()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				if err := enc.Encode(report); err != nil {
					return err
				}
			} else {
				for _, item := range report.Items {
					fmt.Fprintf(out, "[%s] %s: %s\n", item.Status, item.Name, item.Message)
					if item.Status == domain.DiagnosticStatusFail && item.Hint != "" {
						fmt.Fprintf(out, "       hint: %s\n", item.Hint)
					}
				}
			}
			if failed := report.Failed(); len(failed) > 0 {
				return fmt.Errorf("%w: %d of %d checks", ErrDiagnosticsFailed, len(failed), len(report.Items))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "working directory to check")
	cmd.Flags().StringVar(&doc, "doc", "", "document to check")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the report as JSON")
	return cmd
}
