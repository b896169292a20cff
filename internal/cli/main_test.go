package cli

import (
	"bytes"
	"errors"
	"fmt"
	"strings"
	"testing"

	"pkt.systems/pslog"

	"rmd-knitter/internal/domain"
	"rmd-knitter/internal/jobs"
	"rmd-knitter/internal/render"
)

func TestReportFailure(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{name: "precondition", err: domain.ErrPreconditionUnmet, want: "render not started"},
		{name: "in-progress", err: fmt.Errorf("start render: %w", jobs.ErrRenderInProgress), want: "render not started"},
		{name: "launch", err: fmt.Errorf("start render: %w", &render.PipelineError{Stage: "launching", Message: "cannot start"}), want: "render not started"},
		{name: "render-failed", err: ErrRenderFailed, want: "rmd-knitter command failed"},
		{name: "other", err: errors.New("boom"), want: "rmd-knitter command failed"},
	}
	for _, tc := range tests {
		var buf bytes.Buffer
		logger := pslog.NewWithOptions(&buf, pslog.Options{
			Mode:     pslog.ModeStructured,
			NoColor:  true,
			MinLevel: pslog.DebugLevel,
		})
		reportFailure(logger, tc.err)
		if !strings.Contains(buf.String(), tc.want) {
			t.Fatalf("%s: log = %q, want %q", tc.name, buf.String(), tc.want)
		}
	}
}
