package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/spf13/cobra"

	"rmd-knitter/internal/domain"
	"rmd-knitter/internal/jobs"
	"rmd-knitter/internal/tui"
)

// ErrRenderFailed is returned when the renderer exits unsuccessfully.
var ErrRenderFailed = errors.New("render failed")

// knitter is the part of the session the headless render loop drives.
type knitter interface {
	StartRender() (domain.Render, error)
	PollOutput() []jobs.Event
}

func newRenderCmd(g *globalFlags) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "render <document.Rmd>",
		Short: "Knit a document without a UI and stream the renderer output",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			app, err := g.newApp(cmd)
			if err != nil {
				return err
			}
			warnAdvisory(cmd, app)
			if err := selectInputs(app, dir, args[0]); err != nil {
				return err
			}
			return knit(cmd.Context(), app, cmd.OutOrStdout(), tui.PollInterval)
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "working directory (default: the document's folder)")
	return cmd
}

// knit starts one render and polls its output until the completion event arrives.
func knit(ctx context.Context, k knitter, out io.Writer, interval time.Duration) error {
	if _, err := k.StartRender(); err != nil {
		return err
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			for _, event := range k.PollOutput() {
				fmt.Fprint(out, event.Display())
				if event.Kind != jobs.EventKindCompleted {
					continue
				}
				if event.Success {
					return nil
				}
				return ErrRenderFailed
			}
		}
	}
}
