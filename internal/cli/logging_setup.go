package cli

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/rshade/cypherdash/internal/config"
	"github.com/rshade/cypherdash/internal/logging"
)

// setupLogging configures logging based on config file, environment, and CLI flags.
// Interactive commands never log to stderr: without a log file their logs are discarded.
func setupLogging(cmd *cobra.Command) logging.LogPathResult {
	loggingCfg := config.GetLoggingConfig()
	tui := hasAnnotation(cmd, annotationTUI)

	debug, _ := cmd.Flags().GetBool(flagDebug)
	if debug {
		loggingCfg.Level = "debug"
		if !tui {
			loggingCfg.Format = logging.FormatConsole
			loggingCfg.File = ""
		}
	}

	logCfg := loggingCfg.ToLoggingConfig()
	if tui && logCfg.File == "" {
		logCfg.Output = io.Discard
	}

	result := logging.NewLoggerWithPath(logCfg)
	logger = logging.ComponentLogger(result.Logger, "cli")

	if result.UsingFile {
		logging.PrintLogPathMessage(cmd.ErrOrStderr(), result.FilePath)
	} else if result.FallbackUsed {
		logging.PrintFallbackWarning(cmd.ErrOrStderr(), result.FallbackReason)
	}

	ctx := cmd.Context()
	traceID := logging.GetOrGenerateTraceID(ctx)
	ctx = logging.ContextWithTraceID(ctx, traceID)
	logger = logger.With().Str("trace_id", traceID).Logger()
	ctx = logger.WithContext(ctx)
	cmd.SetContext(ctx)

	logger.Info().Ctx(ctx).Str("command", cmd.CommandPath()).Msg("command started")

	return result
}

// cleanupLogging closes the log file handle, if any.
func cleanupLogging(_ *cobra.Command, logResult *logging.LogPathResult) error {
	if logResult != nil {
		return logResult.Close()
	}
	return nil
}
