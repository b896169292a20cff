package cli

import (
	"context"
	"io/fs"
	"log"
	"os"

	"go.uber.org/automaxprocs/maxprocs"
	"pkt.systems/pslog"

	"rmd-knitter/internal/bootstrap"
)

// Main configures logging and runs the command tree, returning the process exit code.
func Main(ctx context.Context, assets fs.FS, args []string) int {
	logger := pslog.LoggerFromEnv(
		pslog.WithEnvWriter(os.Stderr),
		pslog.WithEnvOptions(pslog.Options{Mode: pslog.ModeConsole}),
	)
	ctx = pslog.ContextWithLogger(ctx, logger)
	log.SetOutput(pslog.LogLogger(logger).Writer())
	log.SetFlags(0)

	_, _ = maxprocs.Set(maxprocs.Logger(func(format string, args ...interface{}) {
		logger.Debug("maxprocs", "msg", format, "args", args)
	}))

	root := NewRootCmd(assets)
	root.SetArgs(args)
	if err := root.ExecuteContext(ctx); err != nil {
		reportFailure(logger, err)
		return 1
	}
	return 0
}

// reportFailure logs input and launch problems as warnings and everything else as errors.
func reportFailure(logger pslog.Logger, err error) {
	if bootstrap.IsUserError(err) {
		logger.With("err", err).Warn("render not started")
		return
	}
	logger.With("err", err).Error("rmd-knitter command failed")
}
